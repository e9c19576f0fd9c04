package middleware

import (
	"net/http"
	"time"

	authgate "github.com/narinote/authgate"
)

// AuthCookieName is the cookie carrying the auth token. Hosts that need
// a different name may reassign it once at startup, before any guard or
// cookie helper runs.
var AuthCookieName = "authToken"

// BuildAuthCookie returns the auth cookie for env with the given token
// and lifetime. HttpOnly and Path=/ always; development relaxes to
// Secure=false with SameSite=Lax so plain-HTTP local setups work, any
// other environment gets Secure with SameSite=Strict.
//
// A non-positive maxAge produces an expired, empty cookie with the same
// attribute set, which is how sign-out clears the credential.
func BuildAuthCookie(env, token string, maxAge time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}

	if env == authgate.EnvDevelopment {
		cookie.Secure = false
		cookie.SameSite = http.SameSiteLaxMode
	}

	if maxAge <= 0 {
		cookie.Value = ""
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		return cookie
	}

	cookie.MaxAge = int(maxAge / time.Second)
	cookie.Expires = time.Now().Add(maxAge)
	return cookie
}

// SetAuthCookie writes the auth cookie for a freshly issued token,
// aligning the cookie lifetime with the engine's token TTL.
func SetAuthCookie(w http.ResponseWriter, engine *authgate.Engine, env, token string) {
	http.SetCookie(w, BuildAuthCookie(env, token, engine.TokenTTL()))
}

// ClearAuthCookie expires the auth cookie. Attributes must match the
// ones used at set time or browsers keep the original cookie.
func ClearAuthCookie(w http.ResponseWriter, env string) {
	http.SetCookie(w, BuildAuthCookie(env, "", 0))
}
