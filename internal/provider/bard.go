package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"wxbot/internal/browser"
	"wxbot/internal/config"
)

// Bard answers through the Gemini web page using browser automation. No API
// credentials: a logged-in Chrome profile carries the session.
type Bard struct {
	bridge *browser.Bridge
	sel    browser.SelectorSet
	logger *slog.Logger
}

func NewBard(cfg config.BardConfig, logger *slog.Logger) *Bard {
	return &Bard{
		bridge: browser.NewBridge(browser.BridgeConfig{
			ProfileDir: cfg.ProfileDir,
			Headless:   true,
			Logger:     logger,
		}),
		sel: browser.SelectorSet{
			URL:      cfg.ChatURL,
			Input:    ".ql-editor",
			Submit:   ".send-button",
			Response: ".response-content",
			Loading:  ".loading-indicator",
		},
		logger: logger,
	}
}

func (p *Bard) Name() string { return "bard" }

func (p *Bard) Answer(ctx context.Context, question, conversationKey string) (string, error) {
	p.logger.Info("bard: asking", "len", len(question))
	answer, err := p.bridge.Ask(ctx, p.sel, question)
	if err != nil {
		return "", fmt.Errorf("bard: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("bard: empty answer")
	}
	return answer, nil
}
