package news

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wxbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const feedBody = `{"code":200,"msg":"ok","data":[
	{"title":"首条新闻","source":"测试社"},
	{"title":"第二条新闻","source":""}
]}`

func TestFetchFormatsDigest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, testLogger()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(got, "1. 首条新闻（测试社）") {
		t.Errorf("digest missing sourced headline: %q", got)
	}
	if !strings.Contains(got, "2. 第二条新闻") || strings.Contains(got, "2. 第二条新闻（") {
		t.Errorf("sourceless headline formatted wrong: %q", got)
	}
}

func TestFetchRejectsEmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":500,"msg":"no news","data":[]}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, testLogger()).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for empty feed")
	}
}

func TestFetchRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, testLogger()).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for 502")
	}
}

type sendRecorder struct {
	domain.Gateway
	sent map[string]string
}

func (s *sendRecorder) SendText(_ context.Context, content, receiver, _ string) error {
	s.sent[receiver] = content
	return nil
}

func TestReportSendsToAllReceivers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	gw := &sendRecorder{sent: map[string]string{}}
	NewClient(srv.URL, testLogger()).Report(context.Background(), gw, []string{"room1@chatroom", "wxid_boss"})

	if len(gw.sent) != 2 {
		t.Fatalf("sent to %d receivers, want 2", len(gw.sent))
	}
	for rcv, msg := range gw.sent {
		if !strings.Contains(msg, "首条新闻") {
			t.Errorf("receiver %s got %q", rcv, msg)
		}
	}
}
