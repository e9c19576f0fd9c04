package authgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/narinote/authgate/internal/audit"
	"github.com/narinote/authgate/internal/metrics"
	"github.com/narinote/authgate/internal/rate"
	"github.com/narinote/authgate/jwt"
	"github.com/narinote/authgate/password"
	"github.com/narinote/authgate/session"
)

// Engine is the authentication core: credential issuance, token
// validation, and session revocation behind one façade. Build it with
// the Builder; a built Engine is immutable and safe for concurrent use.
type Engine struct {
	config     Config
	userStore  UserStore
	hasher     *password.Argon2
	dummyHash  string
	jwtManager *jwt.Manager
	ledger     *session.Ledger
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	audit      *audit.Dispatcher
	logger     *slog.Logger
}

// SignUp registers a new account and signs it in: one call yields a
// stored user, an open session, and a token bound to that session.
// Field failures return *ValidationError; a taken email returns
// ErrEmailTaken.
func (e *Engine) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	email := normalizeEmail(req.Email)
	if err := validateSignUp(email, req.Name, req.Password, e.config.Password.MinLength); err != nil {
		e.metrics.Inc(metrics.MetricSignUpRejected)
		e.emitAudit(ctx, AuditSignUp, 0, "", false, err)
		return nil, err
	}

	if verdict := password.Evaluate(req.Password); !verdict.OK {
		e.metrics.Inc(metrics.MetricSignUpRejected)
		err := &ValidationError{Field: "password", Message: verdict.Reason}
		e.emitAudit(ctx, AuditSignUp, 0, "", false, err)
		return nil, err
	}

	existing, err := e.userStore.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if existing != nil {
		e.metrics.Inc(metrics.MetricSignUpDuplicate)
		e.emitAudit(ctx, AuditSignUp, 0, "", false, ErrEmailTaken)
		return nil, ErrEmailTaken
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("password hash: %w", err)
	}

	user, err := e.userStore.Create(ctx, CreateUserInput{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("user create: %w", err)
	}

	result, err := e.issueFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(metrics.MetricSignUpSuccess)
	e.emitAudit(ctx, AuditSignUp, user.ID, result.SessionKey, true, nil)
	e.logger.InfoContext(ctx, "user signed up", slog.Int64("user_id", user.ID))

	return result, nil
}

// SignIn verifies an email+password pair and opens a fresh session.
// Unknown identifiers and wrong passwords are indistinguishable: both
// return ErrInvalidCredentials after comparable work. Repeated failures
// trip the rate limiter.
func (e *Engine) SignIn(ctx context.Context, email, pass string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	ip := ClientIPFromContext(ctx)

	if err := e.limiter.Check(ctx, email, ip); err != nil {
		return nil, e.mapLimiterErr(ctx, email, err)
	}

	user, err := e.userStore.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	if user == nil {
		// Burn a verification against the dummy hash so absent accounts
		// cost the same as wrong passwords.
		_, _ = e.hasher.Verify(pass, e.dummyHash)
		return nil, e.failSignIn(ctx, email, ip, 0)
	}

	ok, err := e.hasher.Verify(pass, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("password verify: %w", err)
	}
	if !ok {
		return nil, e.failSignIn(ctx, email, ip, user.ID)
	}

	if err := e.limiter.Reset(ctx, email, ip); err != nil {
		e.logger.WarnContext(ctx, "rate limit reset failed", slog.String("error", err.Error()))
	}

	result, err := e.issueFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(metrics.MetricLoginSuccess)
	e.emitAudit(ctx, AuditSignIn, user.ID, result.SessionKey, true, nil)
	e.logger.InfoContext(ctx, "user signed in", slog.Int64("user_id", user.ID))

	return result, nil
}

// Authenticate validates a token under the engine's configured
// validation mode and returns the principal it asserts.
func (e *Engine) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	return e.AuthenticateWithMode(ctx, token, e.config.ValidationMode)
}

// AuthenticateWithMode validates a token under an explicit mode,
// letting sensitive routes demand a ledger check while the rest of the
// application stays on signature-only validation. Every failure is
// ErrUnauthorized except ledger transport faults, which surface as
// ErrLedgerUnavailable so callers can return 503 instead of 401.
func (e *Engine) AuthenticateWithMode(ctx context.Context, token string, mode ValidationMode) (*Principal, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		e.metrics.Observe(metrics.MetricVerifyLatency, time.Since(start))
	}()

	claims, err := e.jwtManager.Verify(token)
	if err != nil {
		e.metrics.Inc(metrics.MetricTokenRejected)
		e.emitAudit(ctx, AuditVerify, 0, "", false, ErrUnauthorized)
		return nil, ErrUnauthorized
	}

	userID, err := claims.UserID()
	if err != nil {
		e.metrics.Inc(metrics.MetricTokenRejected)
		return nil, ErrUnauthorized
	}

	if mode == ModeLedger {
		row, err := e.ledger.FindByKey(ctx, claims.SessionKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
		if row == nil || row.UserID != userID {
			e.metrics.Inc(metrics.MetricTokenRejected)
			e.emitAudit(ctx, AuditVerify, userID, claims.SessionKey, false, ErrUnauthorized)
			return nil, ErrUnauthorized
		}
	}

	return &Principal{UserID: userID, SessionKey: claims.SessionKey}, nil
}

// SignOut revokes the session bound to the presented token. The token
// must still verify; revoking an already-closed session succeeds.
func (e *Engine) SignOut(ctx context.Context, token string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	claims, err := e.jwtManager.Verify(token)
	if err != nil {
		return ErrUnauthorized
	}

	userID, err := claims.UserID()
	if err != nil {
		return ErrUnauthorized
	}

	if err := e.ledger.Close(ctx, claims.SessionKey); err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	e.metrics.Inc(metrics.MetricLogout)
	e.metrics.Inc(metrics.MetricSessionClosed)
	e.emitAudit(ctx, AuditSignOut, userID, claims.SessionKey, true, nil)

	return nil
}

// SignOutAll revokes every live session of the token's user, including
// the one presenting the token. Returns how many sessions were closed.
func (e *Engine) SignOutAll(ctx context.Context, token string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}

	claims, err := e.jwtManager.Verify(token)
	if err != nil {
		return 0, ErrUnauthorized
	}

	userID, err := claims.UserID()
	if err != nil {
		return 0, ErrUnauthorized
	}

	closed, err := e.ledger.CloseAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	e.metrics.Inc(metrics.MetricLogoutAll)
	for i := 0; i < closed; i++ {
		e.metrics.Inc(metrics.MetricSessionClosed)
	}
	e.emitAudit(ctx, AuditSignOutAll, userID, claims.SessionKey, true, nil)

	return closed, nil
}

// SessionInfo describes one live session in introspection results.
type SessionInfo struct {
	ID        int64
	CreatedAt int64
	ExpiresAt int64
	Current   bool
}

// Sessions lists the live sessions of the token's user. Session keys
// are not included; only the presenting session is marked Current.
func (e *Engine) Sessions(ctx context.Context, token string) ([]SessionInfo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUnauthorized
	}

	rows, err := e.ledger.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	infos := make([]SessionInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, SessionInfo{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			ExpiresAt: row.ExpiresAt,
			Current:   row.Key == claims.SessionKey,
		})
	}

	return infos, nil
}

// TokenTTL returns the configured token lifetime, used by the cookie
// middleware to align cookie Max-Age with token expiry.
func (e *Engine) TokenTTL() time.Duration {
	if e == nil {
		return 0
	}
	return e.jwtManager.TTL()
}

// MetricsSnapshot returns a point-in-time copy of engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports audit events discarded due to backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close drains and stops the audit dispatcher. The engine must not be
// used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// issueFor opens a ledger row and signs a token bound to it.
func (e *Engine) issueFor(ctx context.Context, userID int64) (*AuthResult, error) {
	row, err := e.ledger.Open(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	e.metrics.Inc(metrics.MetricSessionOpened)

	token, err := e.jwtManager.Issue(userID, row.Key)
	if err != nil {
		// Do not leave an orphaned row behind a token that never existed.
		_ = e.ledger.Close(ctx, row.Key)
		return nil, fmt.Errorf("token issue: %w", err)
	}
	e.metrics.Inc(metrics.MetricTokenIssued)

	return &AuthResult{
		UserID:     userID,
		Token:      token,
		SessionKey: row.Key,
		ExpiresAt:  row.CreatedAt + int64(e.jwtManager.TTL()/time.Second),
	}, nil
}

func (e *Engine) failSignIn(ctx context.Context, email, ip string, userID int64) error {
	if err := e.limiter.Increment(ctx, email, ip); err != nil {
		return e.mapLimiterErr(ctx, email, err)
	}

	e.metrics.Inc(metrics.MetricLoginFailure)
	e.emitAudit(ctx, AuditSignIn, userID, "", false, ErrInvalidCredentials)

	return ErrInvalidCredentials
}

func (e *Engine) mapLimiterErr(ctx context.Context, email string, err error) error {
	if errors.Is(err, rate.ErrRateLimited) {
		e.metrics.Inc(metrics.MetricLoginRateLimited)
		e.emitAudit(ctx, AuditSignIn, 0, "", false, ErrLoginRateLimited)
		return ErrLoginRateLimited
	}
	return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, userID int64, sessionKey string, success bool, failure error) {
	if e.audit == nil {
		return
	}

	event := audit.Event{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		UserID:     userID,
		SessionKey: sessionKey,
		IP:         ClientIPFromContext(ctx),
		Success:    success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}

	e.audit.Emit(ctx, event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignUp(email, name, pass string, minPassLen int) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Field: "email", Message: "email is not a valid address"}
	}
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(pass) < minPassLen {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPassLen)}
	}
	return nil
}
