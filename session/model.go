package session

// Session is one ledger row: a server-side record of an authenticated
// sign-in. The Key is the random handle carried inside issued tokens;
// the row is the source of truth for revocation.
//
// Timestamps are unix seconds. A row whose ExpiresAt has passed is
// treated as absent even if Redis has not evicted it yet.
type Session struct {
	ID        int64
	UserID    int64
	Key       string
	CreatedAt int64
	ExpiresAt int64
}

// Expired reports whether the row has passed its expiry at the given
// unix time.
func (s *Session) Expired(now int64) bool {
	return s.ExpiresAt <= now
}
