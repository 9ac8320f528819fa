package bus

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"wxbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPublishSubscribe_PreservesOrder(t *testing.T) {
	b := New(10, testLogger())
	defer b.Close()

	for i, id := range []string{"a", "b", "c"} {
		b.Publish(domain.InboundEvent{ID: id, Timestamp: time.Now().Add(time.Duration(i))})
	}

	for _, want := range []string{"a", "b", "c"} {
		select {
		case got := <-b.Subscribe():
			if got.ID != want {
				t.Fatalf("expected event %q, got %q", want, got.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %q", want)
		}
	}
}

func TestPublish_AfterCloseIsNoop(t *testing.T) {
	b := New(1, testLogger())
	b.Close()

	// Must not panic on a closed channel.
	b.Publish(domain.InboundEvent{ID: "late"})
}

func TestClose_Idempotent(t *testing.T) {
	b := New(1, testLogger())
	b.Close()
	b.Close()
}
