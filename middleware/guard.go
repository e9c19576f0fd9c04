package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	authgate "github.com/narinote/authgate"
)

type principalContextKey struct{}

// PrincipalFromContext returns the principal attached by a guard, if
// the request carried a valid credential.
func PrincipalFromContext(ctx context.Context) (*authgate.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*authgate.Principal)
	return p, ok
}

// Guard returns middleware enforcing the given access tier. Credentials
// are read from the auth cookie first, then from a Bearer header; the
// cookie wins when both are present, even if it is invalid.
//
// Rejections are a uniform 401 with no detail about why the credential
// failed. A ledger outage under ledger-checked validation is the one
// exception and returns 503.
func Guard(engine *authgate.Engine, tier authgate.AccessTier) func(http.Handler) http.Handler {
	return guardWithMode(engine, tier, nil)
}

// GuardWithMode is Guard with a per-route validation mode override.
func GuardWithMode(engine *authgate.Engine, tier authgate.AccessTier, mode authgate.ValidationMode) func(http.Handler) http.Handler {
	return guardWithMode(engine, tier, &mode)
}

// RequireAuth guards a route with [authgate.TierRequired].
func RequireAuth(engine *authgate.Engine) func(http.Handler) http.Handler {
	return Guard(engine, authgate.TierRequired)
}

// OptionalAuth guards a route with [authgate.TierOptional]. The request
// always proceeds; a principal is attached only when the credential
// verified.
func OptionalAuth(engine *authgate.Engine) func(http.Handler) http.Handler {
	return Guard(engine, authgate.TierOptional)
}

func guardWithMode(engine *authgate.Engine, tier authgate.AccessTier, mode *authgate.ValidationMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tier == authgate.TierAnonymous {
				next.ServeHTTP(w, r)
				return
			}

			if engine == nil {
				writeUnauthorized(w)
				return
			}

			ctx := authgate.WithClientIP(r.Context(), clientIP(r))

			token, found := ExtractToken(r)
			if !found {
				if tier == authgate.TierOptional {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				writeUnauthorized(w)
				return
			}

			var (
				principal *authgate.Principal
				err       error
			)
			if mode != nil {
				principal, err = engine.AuthenticateWithMode(ctx, token, *mode)
			} else {
				principal, err = engine.Authenticate(ctx, token)
			}
			if err != nil {
				if errors.Is(err, authgate.ErrLedgerUnavailable) {
					http.Error(w, `{"error":"service unavailable"}`, http.StatusServiceUnavailable)
					return
				}
				// Expired, forged, and malformed credentials are all the
				// same outcome here. Optional routes continue without a
				// principal; required routes stop with one generic body.
				if tier == authgate.TierOptional {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				writeUnauthorized(w)
				return
			}

			ctx = context.WithValue(ctx, principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken pulls the credential from a request: the auth cookie
// when present and non-empty, otherwise the Authorization header's
// Bearer value. An empty cookie is the same as no cookie, so a cleared
// cookie cannot shadow a header.
func ExtractToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(AuthCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
