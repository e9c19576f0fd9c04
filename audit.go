package authgate

import "github.com/narinote/authgate/internal/audit"

// AuditEvent is one recorded authentication event.
type AuditEvent = audit.Event

// AuditSink receives audit events from the async dispatcher. Sinks must
// tolerate concurrent calls and should never block for long; a slow sink
// causes drops, not request latency.
type AuditSink = audit.Sink

// Ready-made sinks for tests and simple deployments.
type (
	NoOpAuditSink    = audit.NoOpSink
	ChannelAuditSink = audit.ChannelSink
)

// Sink constructors, re-exported for host applications.
var (
	NewJSONAuditSink    = audit.NewJSONWriterSink
	NewChannelAuditSink = audit.NewChannelSink
)

// Audit event types emitted by the engine.
const (
	AuditSignUp     = "signup"
	AuditSignIn     = "signin"
	AuditSignOut    = "signout"
	AuditSignOutAll = "signout_all"
	AuditVerify     = "verify"
)
