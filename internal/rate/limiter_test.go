package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, cfg), mr
}

func TestIncrementTripsOverBudget(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxAttempts: 3, Cooldown: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Increment(ctx, "user@example.com", ""); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}

	if err := l.Increment(ctx, "user@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Errorf("over-budget increment = %v, want ErrRateLimited", err)
	}
	if err := l.Check(ctx, "user@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Errorf("check after exhaustion = %v, want ErrRateLimited", err)
	}
}

func TestIPThrottleIndependentOfIdentifier(t *testing.T) {
	l, _ := newTestLimiter(t, Config{EnableIPThrottle: true, MaxAttempts: 2, Cooldown: time.Minute})
	ctx := context.Background()

	// Different identifiers, same IP: the IP budget is shared.
	for i := 0; i < 2; i++ {
		if err := l.Increment(ctx, "a@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	if err := l.Increment(ctx, "b@example.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("shared IP over budget = %v, want ErrRateLimited", err)
	}

	// A different IP is unaffected.
	if err := l.Check(ctx, "c@example.com", "10.0.0.2"); err != nil {
		t.Errorf("fresh IP check = %v, want nil", err)
	}
}

func TestResetClearsCounters(t *testing.T) {
	l, _ := newTestLimiter(t, Config{EnableIPThrottle: true, MaxAttempts: 2, Cooldown: time.Minute})
	ctx := context.Background()

	l.Increment(ctx, "user@example.com", "10.0.0.1")
	l.Increment(ctx, "user@example.com", "10.0.0.1")

	if err := l.Reset(ctx, "user@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	n, err := l.Attempts(ctx, "user@example.com")
	if err != nil || n != 0 {
		t.Errorf("Attempts after reset = (%d, %v), want (0, nil)", n, err)
	}
	if err := l.Check(ctx, "user@example.com", "10.0.0.1"); err != nil {
		t.Errorf("Check after reset = %v, want nil", err)
	}
}

func TestWindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxAttempts: 1, Cooldown: time.Minute})
	ctx := context.Background()

	l.Increment(ctx, "user@example.com", "")
	if err := l.Increment(ctx, "user@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := l.Check(ctx, "user@example.com", ""); err != nil {
		t.Errorf("Check after window = %v, want nil", err)
	}
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var l *Limiter
	ctx := context.Background()

	if err := l.Check(ctx, "x", "y"); err != nil {
		t.Errorf("nil Check = %v", err)
	}
	if err := l.Increment(ctx, "x", "y"); err != nil {
		t.Errorf("nil Increment = %v", err)
	}
	if err := l.Reset(ctx, "x", "y"); err != nil {
		t.Errorf("nil Reset = %v", err)
	}
}

func TestRedisDownWrapsTransportError(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxAttempts: 2, Cooldown: time.Minute})
	ctx := context.Background()

	mr.Close()

	err := l.Increment(ctx, "user@example.com", "")
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Errorf("err = %v, want ErrRedisUnavailable", err)
	}
}
