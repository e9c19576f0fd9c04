package authgate

import "context"

// UserRecord is the engine's view of a stored account. PasswordHash is
// the PHC-encoded Argon2id hash; the engine never sees plaintext
// passwords outside the sign-up and sign-in calls themselves.
type UserRecord struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
}

// CreateUserInput carries the fields persisted for a new account.
type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
}

// UserStore is the persistence boundary the host application implements.
// Lookups return (nil, nil) when no account matches; an error means the
// backend itself failed.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	Create(ctx context.Context, input CreateUserInput) (*UserRecord, error)
}

// SignUpRequest is the input to Engine.SignUp.
type SignUpRequest struct {
	Email    string
	Name     string
	Password string
}

// AuthResult is returned by SignUp and SignIn: the issued token, the
// session it is bound to, and the unix expiry shared by both.
type AuthResult struct {
	UserID     int64
	Token      string
	SessionKey string
	ExpiresAt  int64
}

// Principal is the authenticated identity attached to a request after
// credential validation succeeds.
type Principal struct {
	UserID     int64
	SessionKey string
}

// ValidationMode selects how deep Authenticate checks a token.
type ValidationMode int

const (
	// ModeSignatureOnly validates signature and claims without touching
	// the ledger. Fast, but blind to revocation until expiry.
	ModeSignatureOnly ValidationMode = iota
	// ModeLedger additionally requires the bound session row to be live,
	// making sign-out take effect immediately.
	ModeLedger
)

// AccessTier declares how strictly a route requires authentication. The
// zero value is TierRequired so an undeclared route fails closed.
type AccessTier int

const (
	// TierRequired rejects requests without a valid credential.
	TierRequired AccessTier = iota
	// TierOptional attaches a principal when a valid credential is
	// present and proceeds anonymously otherwise, including when the
	// presented credential is invalid or expired.
	TierOptional
	// TierAnonymous skips credential processing entirely.
	TierAnonymous
)

func (t AccessTier) String() string {
	switch t {
	case TierRequired:
		return "required"
	case TierOptional:
		return "optional"
	case TierAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}
