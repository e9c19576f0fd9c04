package authgate

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned whenever a credential fails validation.
	// Missing, malformed, expired, and revoked tokens are indistinguishable
	// through this error on purpose.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is the single sign-in failure for both unknown
	// identifiers and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned by SignUp when the identifier is already
	// registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrLoginRateLimited is returned when sign-in attempts for an
	// identifier or IP exceed the configured window.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrLedgerUnavailable indicates a Redis transport failure, as opposed
	// to an absent session row.
	ErrLedgerUnavailable = errors.New("session ledger unavailable")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ValidationError reports a sign-up field that failed validation. Unlike
// sign-in failures these are specific: the caller is the legitimate
// owner of the data being validated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
