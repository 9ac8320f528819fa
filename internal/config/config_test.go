package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalYAML = `
gateway:
  addr: ws://127.0.0.1:9001/ws
groups:
  - "G1@chatroom"
groupExpiry:
  "G1@chatroom": "20991231"
`

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gateway.Addr != "ws://127.0.0.1:9001/ws" {
		t.Errorf("gateway.addr = %q", cfg.Gateway.Addr)
	}
	if len(cfg.Groups) != 1 || cfg.Groups[0] != "G1@chatroom" {
		t.Errorf("groups = %v", cfg.Groups)
	}
	if cfg.Expiry["G1@chatroom"] != "20991231" {
		t.Errorf("expiry = %v", cfg.Expiry)
	}
	// Defaults survive partial config.
	if cfg.Providers.ChatGPT.APIBase == "" {
		t.Error("expected chatgpt apiBase default")
	}
}

func TestLoad_RejectsBadExpiryDate(t *testing.T) {
	_, err := Load(writeConfig(t, `
gateway:
  addr: ws://127.0.0.1:9001/ws
groupExpiry:
  "G1": "2099-12-31"
`))
	if err == nil {
		t.Fatal("expected validation error for non-YYYYMMDD date")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("WXBOT_TEST_KEY", "sk-123")

	got := ExpandEnvVars("apiKey: ${WXBOT_TEST_KEY}")
	if got != "apiKey: sk-123" {
		t.Errorf("got %q", got)
	}

	got = ExpandEnvVars("addr: ${WXBOT_MISSING:-ws://fallback}")
	if got != "addr: ws://fallback" {
		t.Errorf("got %q", got)
	}
}

func TestProviderValidity(t *testing.T) {
	c := ChatGPTConfig{APIKey: "k", APIBase: "b", Model: "m", Prompt: "p"}
	if !c.Valid() {
		t.Error("fully populated chatgpt config should be valid")
	}
	c.APIKey = ""
	if c.Valid() {
		t.Error("missing apiKey must invalidate")
	}

	// Proxy is the one optional field.
	x := XinghuoConfig{AppID: "a", APIKey: "k", APISecret: "s", APIURL: "u", Domain: "d"}
	if !x.Valid() {
		t.Error("xinghuo config without proxy should still be valid")
	}
}

func TestGetSetByPath(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.Addr = "ws://a"

	v, err := GetByPath(cfg, "gateway.addr")
	if err != nil {
		t.Fatal(err)
	}
	if v != "ws://a" {
		t.Errorf("got %v", v)
	}

	if err := SetByPath(cfg, "gateway.pullTimeoutSeconds", "45"); err != nil {
		t.Fatal(err)
	}
	if cfg.Gateway.PullTimeout != 45 {
		t.Errorf("pullTimeout = %d", cfg.Gateway.PullTimeout)
	}
}

func TestSanitize_MasksSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Providers.ChatGPT.APIKey = "sk-verysecretapikey0000"
	cfg.OCR.SecretKey = "short"

	s := Sanitize(cfg)
	if s.Providers.ChatGPT.APIKey == cfg.Providers.ChatGPT.APIKey {
		t.Error("api key not masked")
	}
	if s.OCR.SecretKey != "***" {
		t.Errorf("short secret should be fully masked, got %q", s.OCR.SecretKey)
	}
	// Original untouched.
	if cfg.Providers.ChatGPT.APIKey != "sk-verysecretapikey0000" {
		t.Error("sanitize must not mutate the original")
	}
}

func TestManagerReload(t *testing.T) {
	path := writeConfig(t, minimalYAML)
	m, err := NewManager(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(`
gateway:
  addr: ws://127.0.0.1:9001/ws
groups:
  - "G1@chatroom"
  - "G2@chatroom"
`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := m.Reload(); err != nil {
		t.Fatal(err)
	}
	if len(m.Current().Groups) != 2 {
		t.Errorf("groups after reload = %v", m.Current().Groups)
	}

	// A broken file keeps the previous snapshot.
	if err := os.WriteFile(path, []byte(": not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if len(m.Current().Groups) != 2 {
		t.Error("failed reload must not replace the snapshot")
	}
}
