package sched

import (
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddRejectsBadSpec(t *testing.T) {
	r := NewRunner(testLogger())
	if err := r.Add("not a cron spec", "digest", func() {}); err == nil {
		t.Fatal("expected error for malformed spec")
	}
}

func TestAddAcceptsDailySpec(t *testing.T) {
	r := NewRunner(testLogger())
	if err := r.Add("30 8 * * *", "digest", func() {}); err != nil {
		t.Fatalf("Add: %v", err)
	}
}
