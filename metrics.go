package authgate

import "github.com/narinote/authgate/internal/metrics"

// MetricID identifies one engine counter or histogram.
type MetricID = metrics.MetricID

// MetricsSnapshot is a point-in-time copy of engine metrics.
type MetricsSnapshot = metrics.Snapshot

// Counter and histogram identifiers exposed by MetricsSnapshot and the
// exporters under metrics/export.
const (
	MetricSignUpSuccess    = metrics.MetricSignUpSuccess
	MetricSignUpDuplicate  = metrics.MetricSignUpDuplicate
	MetricSignUpRejected   = metrics.MetricSignUpRejected
	MetricLoginSuccess     = metrics.MetricLoginSuccess
	MetricLoginFailure     = metrics.MetricLoginFailure
	MetricLoginRateLimited = metrics.MetricLoginRateLimited
	MetricTokenIssued      = metrics.MetricTokenIssued
	MetricTokenRejected    = metrics.MetricTokenRejected
	MetricSessionOpened    = metrics.MetricSessionOpened
	MetricSessionClosed    = metrics.MetricSessionClosed
	MetricLogout           = metrics.MetricLogout
	MetricLogoutAll        = metrics.MetricLogoutAll
	MetricVerifyLatency    = metrics.MetricVerifyLatency
)
