package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/narinote/authgate/internal"
)

// ErrRedisUnavailable wraps every Redis transport failure so callers
// can distinguish infrastructure faults from absent rows.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrKeyCollision is returned when a fresh session key already exists
// in the ledger. With 256-bit random keys this indicates a broken
// entropy source, not bad luck.
var ErrKeyCollision = errors.New("session key collision")

const openMaxAttempts = 3

// closeSessionScript deletes a row and removes its key from the owner's
// index in one round trip. Returns 1 if the row existed.
const closeSessionScript = `
local existed = redis.call("EXISTS", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
if existed == 1 then
  redis.call("DEL", KEYS[1])
end
return existed
`

var closeSessionLua = redis.NewScript(closeSessionScript)

// Ledger is the Redis-backed session store. One row per sign-in, keyed
// by the random session key, plus a per-user set indexing the keys of
// that user's live sessions.
type Ledger struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewLedger returns a Ledger writing under the given key prefix. Rows
// live for ttl from creation; the duration must be positive.
func NewLedger(client redis.UniversalClient, prefix string, ttl time.Duration) (*Ledger, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if prefix == "" {
		return nil, errors.New("key prefix required")
	}
	if ttl <= 0 {
		return nil, errors.New("invalid session TTL")
	}

	return &Ledger{redis: client, prefix: prefix, ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured row lifetime.
func (l *Ledger) TTL() time.Duration {
	return l.ttl
}

func (l *Ledger) sessionKey(key string) string {
	return l.prefix + ":sess:" + key
}

func (l *Ledger) userIndexKey(userID int64) string {
	return fmt.Sprintf("%s:user:%d", l.prefix, userID)
}

// Open creates a fresh ledger row for userID and returns it. Keys are
// 256-bit random values; SETNX guards against the theoretical collision
// and a fresh key is drawn on conflict.
func (l *Ledger) Open(ctx context.Context, userID int64) (*Session, error) {
	if userID <= 0 {
		return nil, errors.New("invalid user id")
	}

	now := l.now()

	for attempt := 0; attempt < openMaxAttempts; attempt++ {
		key, err := internal.NewSessionKey()
		if err != nil {
			return nil, err
		}
		rowID, err := internal.NewRowID()
		if err != nil {
			return nil, err
		}

		row := &Session{
			ID:        rowID,
			UserID:    userID,
			Key:       key,
			CreatedAt: now.Unix(),
			ExpiresAt: now.Add(l.ttl).Unix(),
		}

		blob, err := Encode(row)
		if err != nil {
			return nil, err
		}

		ok, err := l.redis.SetNX(ctx, l.sessionKey(key), blob, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if !ok {
			continue
		}

		pipe := l.redis.Pipeline()
		pipe.SAdd(ctx, l.userIndexKey(userID), key)
		pipe.Expire(ctx, l.userIndexKey(userID), l.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}

		return row, nil
	}

	return nil, ErrKeyCollision
}

// FindByKey looks up a row by its session key. Missing, corrupt, and
// expired rows all return (nil, nil); only transport failures are
// errors. An expired row still present in Redis is deleted on sight.
func (l *Ledger) FindByKey(ctx context.Context, key string) (*Session, error) {
	if err := internal.ValidateSessionKey(key); err != nil {
		return nil, nil
	}

	blob, err := l.redis.Get(ctx, l.sessionKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	row, err := Decode(blob)
	if err != nil {
		return nil, nil
	}

	if row.Expired(l.now().Unix()) {
		_ = l.Close(ctx, key)
		return nil, nil
	}

	return row, nil
}

// FindByUser returns the live rows for userID, oldest first is not
// guaranteed. Index entries whose rows have expired or vanished are
// pruned as a side effect.
func (l *Ledger) FindByUser(ctx context.Context, userID int64) ([]*Session, error) {
	keys, err := l.redis.SMembers(ctx, l.userIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var (
		rows  []*Session
		stale []interface{}
	)

	for _, key := range keys {
		row, err := l.FindByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if row == nil {
			stale = append(stale, key)
			continue
		}
		rows = append(rows, row)
	}

	if len(stale) > 0 {
		if err := l.redis.SRem(ctx, l.userIndexKey(userID), stale...).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return rows, nil
}

// Close deletes the row for key. Closing an absent row is a no-op, so
// repeated sign-outs and concurrent revocations are safe.
func (l *Ledger) Close(ctx context.Context, key string) error {
	if err := internal.ValidateSessionKey(key); err != nil {
		return nil
	}

	blob, err := l.redis.Get(ctx, l.sessionKey(key)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	indexKey := ""
	if row, derr := Decode(blob); derr == nil {
		indexKey = l.userIndexKey(row.UserID)
	} else {
		// Corrupt row: delete it without an index to clean.
		if err := l.redis.Del(ctx, l.sessionKey(key)).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return nil
	}

	if err := closeSessionLua.Run(ctx, l.redis, []string{l.sessionKey(key), indexKey}, key).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// CloseAll revokes every live session of userID and returns how many
// rows were deleted.
func (l *Ledger) CloseAll(ctx context.Context, userID int64) (int, error) {
	keys, err := l.redis.SMembers(ctx, l.userIndexKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	closed := 0
	for _, key := range keys {
		exists, err := l.redis.Exists(ctx, l.sessionKey(key)).Result()
		if err != nil {
			return closed, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if exists == 1 {
			if err := l.redis.Del(ctx, l.sessionKey(key)).Err(); err != nil {
				return closed, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
			closed++
		}
	}

	if err := l.redis.Del(ctx, l.userIndexKey(userID)).Err(); err != nil {
		return closed, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return closed, nil
}
