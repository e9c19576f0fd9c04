package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid is the single failure surface of Verify. Structural,
// cryptographic, and claim-mismatch failures all collapse into it so
// callers cannot hand an attacker a signal to iterate on.
var ErrTokenInvalid = errors.New("invalid token")

// Config holds token codec settings. Secret is the shared HMAC-SHA256
// key: issuance and verification use the same value, so rotating it
// invalidates every outstanding token and forces re-authentication.
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims is the typed claim set carried by every issued token. The
// session key binds the token to its ledger row; downstream code reads
// typed fields, never string-keyed lookups.
type Claims struct {
	SessionKey string `json:"sessionKey"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as the numeric user identifier.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

// Manager signs and verifies compact identity tokens. Safe for
// concurrent use after construction.
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager validates cfg and returns a Manager. A missing secret,
// issuer, or audience is a configuration fault and fails fast.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("issuer required")
	}
	if cfg.Audience == "" {
		return nil, errors.New("audience required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}

	return &Manager{config: cfg, now: time.Now}, nil
}

// TTL returns the configured token lifetime.
func (j *Manager) TTL() time.Duration {
	return j.config.TTL
}

// Issue builds and signs a token asserting userID bound to sessionKey.
// Claims: sub, jti (random UUID), sessionKey, iss, aud, iat, exp.
func (j *Manager) Issue(userID int64, sessionKey string) (string, error) {
	if userID <= 0 {
		return "", errors.New("invalid user id")
	}
	if sessionKey == "" {
		return "", errors.New("session key required")
	}

	now := j.now()
	claims := Claims{
		SessionKey: sessionKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			Issuer:    j.config.Issuer,
			Audience:  jwt.ClaimStrings{j.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.config.Secret)
}

// Verify parses tokenStr and checks signature, issuer, audience, and
// expiry with zero clock-skew tolerance: a token is invalid the instant
// it expires. Every failure returns ErrTokenInvalid.
func (j *Manager) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.config.Issuer),
		jwt.WithAudience(j.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.config.Secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.SessionKey == "" || claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// ExtractUserID verifies tokenStr and returns the subject as a numeric
// user identifier.
func (j *Manager) ExtractUserID(tokenStr string) (int64, error) {
	claims, err := j.Verify(tokenStr)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}

// ExtractSessionKey verifies tokenStr and returns the bound session key.
func (j *Manager) ExtractSessionKey(tokenStr string) (string, error) {
	claims, err := j.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.SessionKey, nil
}
