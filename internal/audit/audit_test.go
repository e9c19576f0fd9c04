package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)

	d.Emit(context.Background(), Event{
		ID:        "evt-1",
		Timestamp: time.Now(),
		EventType: "signin",
		UserID:    42,
		Success:   true,
	})
	d.Close()

	select {
	case got := <-sink.Events():
		if got.ID != "evt-1" || got.UserID != 42 {
			t.Errorf("unexpected event %+v", got)
		}
	default:
		t.Fatal("event not delivered")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	slow := sinkFunc(func(ctx context.Context, e Event) {
		<-block
	})

	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, slow)

	// Saturate: one in flight, one buffered, the rest dropped.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{ID: "e"})
	}

	if d.Dropped() == 0 {
		t.Error("expected drops under backpressure")
	}

	close(block)
	d.Close()
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("disabled dispatcher should be nil")
	}

	// All operations are nil-safe.
	d.Emit(context.Background(), Event{})
	d.Close()
	if d.Dropped() != 0 {
		t.Error("nil Dropped != 0")
	}
}

func TestCloseDrainsBufferedEvents(t *testing.T) {
	sink := NewChannelSink(16)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{ID: "e"})
	}
	d.Close()

	delivered := 0
	for {
		select {
		case <-sink.Events():
			delivered++
			continue
		default:
		}
		break
	}
	if delivered != 5 {
		t.Errorf("delivered = %d, want 5", delivered)
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{ID: "a", EventType: "signin", Success: true})
	sink.Emit(context.Background(), Event{ID: "b", EventType: "signout", Success: true})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	var first Event
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first.ID != "a" || first.EventType != "signin" {
		t.Errorf("unexpected first event %+v", first)
	}
}

type sinkFunc func(ctx context.Context, e Event)

func (f sinkFunc) Emit(ctx context.Context, e Event) { f(ctx, e) }
