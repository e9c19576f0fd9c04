package authgate

import "context"

type contextKey int

const clientIPKey contextKey = iota

// WithClientIP attaches the caller's IP to the context so the engine
// can feed per-IP throttling and audit records. The middleware does
// this automatically; direct engine callers may set it themselves.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext returns the IP recorded by WithClientIP, or "".
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}
