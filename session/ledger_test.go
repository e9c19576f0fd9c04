package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/narinote/authgate/internal"
)

func newTestLedger(t *testing.T) (*Ledger, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l, err := NewLedger(client, "ag", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	return l, mr
}

func TestOpenAndFindByKey(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	row, err := l.Open(ctx, 7)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if row.UserID != 7 {
		t.Errorf("user id = %d, want 7", row.UserID)
	}
	if row.ID <= 0 {
		t.Errorf("row id = %d, want positive", row.ID)
	}
	if row.ExpiresAt != row.CreatedAt+int64(24*time.Hour/time.Second) {
		t.Errorf("expiry %d not 24h after creation %d", row.ExpiresAt, row.CreatedAt)
	}

	got, err := l.FindByKey(ctx, row.Key)
	if err != nil {
		t.Fatalf("FindByKey: %v", err)
	}
	if got == nil {
		t.Fatal("FindByKey returned nil for live row")
	}
	if got.ID != row.ID || got.UserID != row.UserID || got.Key != row.Key {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, row)
	}
}

func TestConcurrentOpensProduceDistinctRows(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	const opens = 8
	rows := make(chan *Session, opens)
	var wg sync.WaitGroup
	for i := 0; i < opens; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			row, err := l.Open(ctx, 1)
			if err != nil {
				t.Errorf("Open: %v", err)
				return
			}
			rows <- row
		}()
	}
	wg.Wait()
	close(rows)

	keys := make(map[string]bool)
	ids := make(map[int64]bool)
	for row := range rows {
		if keys[row.Key] {
			t.Errorf("duplicate session key %q", row.Key)
		}
		if ids[row.ID] {
			t.Errorf("duplicate row id %d", row.ID)
		}
		keys[row.Key] = true
		ids[row.ID] = true
	}

	live, err := l.FindByUser(ctx, 1)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if len(live) != opens {
		t.Errorf("FindByUser returned %d rows, want %d", len(live), opens)
	}
}

func TestFindByKeyMissingAndMalformed(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	key, _ := newKeyForTest(t)
	got, err := l.FindByKey(ctx, key)
	if err != nil || got != nil {
		t.Errorf("FindByKey missing = (%v, %v), want (nil, nil)", got, err)
	}

	// Not a valid key shape; must not reach Redis as an error.
	got, err = l.FindByKey(ctx, "short")
	if err != nil || got != nil {
		t.Errorf("FindByKey malformed = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestFindByKeyExpiredRowIsAbsent(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()

	row, err := l.Open(ctx, 3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Row still in Redis but logically expired.
	l.now = func() time.Time { return time.Unix(row.ExpiresAt+1, 0) }

	got, err := l.FindByKey(ctx, row.Key)
	if err != nil {
		t.Fatalf("FindByKey: %v", err)
	}
	if got != nil {
		t.Error("expired row returned as live")
	}
	if mr.Exists("ag:sess:" + row.Key) {
		t.Error("expired row not deleted on sight")
	}
}

func TestFindByUserPrunesStaleIndex(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	a, _ := l.Open(ctx, 9)
	b, _ := l.Open(ctx, 9)

	if err := l.Close(ctx, a.Key); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows, err := l.FindByUser(ctx, 9)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if len(rows) != 1 || rows[0].Key != b.Key {
		t.Errorf("FindByUser = %d rows, want only the surviving one", len(rows))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()

	row, _ := l.Open(ctx, 5)

	if err := l.Close(ctx, row.Key); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if mr.Exists("ag:sess:" + row.Key) {
		t.Error("row survives Close")
	}
	if err := l.Close(ctx, row.Key); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}

	got, err := l.FindByKey(ctx, row.Key)
	if err != nil || got != nil {
		t.Errorf("FindByKey after Close = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestCloseAll(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	l.Open(ctx, 11)
	l.Open(ctx, 11)
	l.Open(ctx, 11)
	other, _ := l.Open(ctx, 12)

	n, err := l.CloseAll(ctx, 11)
	if err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	if n != 3 {
		t.Errorf("CloseAll closed %d, want 3", n)
	}

	rows, err := l.FindByUser(ctx, 11)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("user 11 still has %d sessions", len(rows))
	}

	// Unrelated user untouched.
	got, err := l.FindByKey(ctx, other.Key)
	if err != nil || got == nil {
		t.Error("CloseAll touched another user's session")
	}
}

func TestRedisDownSurfacesTransportError(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()

	row, _ := l.Open(ctx, 2)
	mr.Close()

	if _, err := l.FindByKey(ctx, row.Key); err == nil {
		t.Error("FindByKey with Redis down should error")
	}
	if _, err := l.Open(ctx, 2); err == nil {
		t.Error("Open with Redis down should error")
	}
}

func TestEncodeDecodeRejectsCorruptBlobs(t *testing.T) {
	key, _ := newKeyForTest(t)
	row := &Session{ID: 1, UserID: 2, Key: key, CreatedAt: 100, ExpiresAt: 200}

	blob, err := Encode(row)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if _, err := Decode(blob[:len(blob)-1]); err == nil {
		t.Error("truncated blob decoded")
	}

	bad := append([]byte(nil), blob...)
	bad[0] = 99
	if _, err := Decode(bad); err == nil {
		t.Error("unknown version decoded")
	}

	if _, err := Decode(append(blob, 0)); err == nil {
		t.Error("trailing bytes decoded")
	}
}

func newKeyForTest(t *testing.T) (string, error) {
	t.Helper()
	return internal.NewSessionKey()
}
