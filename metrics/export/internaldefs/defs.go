package internaldefs

import (
	authgate "github.com/narinote/authgate"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// HistogramDef names one engine latency histogram for exporters.
type HistogramDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter. Both exporters iterate
// this slice so the two surfaces can never disagree on names.
var CounterDefs = []CounterDef{
	{ID: authgate.MetricSignUpSuccess, Name: "authgate_signup_success_total", Help: "Successful sign-ups."},
	{ID: authgate.MetricSignUpDuplicate, Name: "authgate_signup_duplicate_total", Help: "Sign-up attempts rejected as duplicate email."},
	{ID: authgate.MetricSignUpRejected, Name: "authgate_signup_rejected_total", Help: "Sign-up attempts rejected by validation or password policy."},
	{ID: authgate.MetricLoginSuccess, Name: "authgate_login_success_total", Help: "Successful sign-ins."},
	{ID: authgate.MetricLoginFailure, Name: "authgate_login_failure_total", Help: "Failed sign-ins."},
	{ID: authgate.MetricLoginRateLimited, Name: "authgate_login_rate_limited_total", Help: "Rate-limited sign-in attempts."},
	{ID: authgate.MetricTokenIssued, Name: "authgate_token_issued_total", Help: "Issued tokens."},
	{ID: authgate.MetricTokenRejected, Name: "authgate_token_rejected_total", Help: "Tokens rejected during validation."},
	{ID: authgate.MetricSessionOpened, Name: "authgate_session_opened_total", Help: "Opened session ledger rows."},
	{ID: authgate.MetricSessionClosed, Name: "authgate_session_closed_total", Help: "Closed session ledger rows."},
	{ID: authgate.MetricLogout, Name: "authgate_logout_total", Help: "Single-session sign-out operations."},
	{ID: authgate.MetricLogoutAll, Name: "authgate_logout_all_total", Help: "Sign-out-everywhere operations."},
}

// HistogramDefs enumerates every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authgate.MetricVerifyLatency, Name: "authgate_verify_latency_seconds", Help: "Token validation latency."},
}

// HistogramBounds are the bucket upper bounds in seconds, matching the
// engine's internal nanosecond bounds. The final +Inf bucket is implied.
var HistogramBounds = []float64{
	0.000005,
	0.000025,
	0.0001,
	0.0005,
	0.0025,
	0.01,
	0.05,
}

// HistogramBoundSuffix gives each bucket a name-safe suffix for
// backends without native histogram support.
var HistogramBoundSuffix = []string{
	"5us",
	"25us",
	"100us",
	"500us",
	"2500us",
	"10ms",
	"50ms",
	"inf",
}

// AuditDroppedName is the counter exposing dispatcher backpressure.
const AuditDroppedName = "authgate_audit_dropped_total"

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count. Snapshots omit all-zero histograms, so raw may be nil.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
