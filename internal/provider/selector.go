package provider

import (
	"errors"
	"fmt"
	"log/slog"

	"wxbot/internal/config"
	"wxbot/internal/domain"
)

// ErrNoProvider means no candidate passed its validity check. The responder
// keeps running without conversational replies.
var ErrNoProvider = errors.New("no conversational provider configured")

// Candidate pairs a backend name with its validity predicate and constructor.
// Construction is deferred so an invalid candidate never gets built.
type Candidate struct {
	Name  string
	Valid func() bool
	Build func() domain.ChatProvider
}

// Candidates returns every configured backend in selection priority order.
func Candidates(cfg config.ProvidersConfig, logger *slog.Logger) []Candidate {
	return []Candidate{
		{
			Name:  "tigerbot",
			Valid: cfg.TigerBot.Valid,
			Build: func() domain.ChatProvider { return NewTigerBot(cfg.TigerBot, logger) },
		},
		{
			Name:  "chatgpt",
			Valid: cfg.ChatGPT.Valid,
			Build: func() domain.ChatProvider { return NewChatGPT(cfg.ChatGPT, logger) },
		},
		{
			Name:  "xinghuo",
			Valid: cfg.Xinghuo.Valid,
			Build: func() domain.ChatProvider { return NewXinghuo(cfg.Xinghuo, logger) },
		},
		{
			Name:  "chatglm",
			Valid: cfg.ChatGLM.Valid,
			Build: func() domain.ChatProvider { return NewChatGLM(cfg.ChatGLM, logger) },
		},
		{
			Name:  "bard",
			Valid: cfg.Bard.Valid,
			Build: func() domain.ChatProvider { return NewBard(cfg.Bard, logger) },
		},
		{
			Name:  "zhipu",
			Valid: cfg.Zhipu.Valid,
			Build: func() domain.ChatProvider { return NewZhipu(cfg.Zhipu, logger) },
		},
	}
}

// Select picks the active backend: the override by name if it is valid,
// otherwise the first valid candidate in priority order. Called once at
// startup; never re-evaluated per message.
func Select(candidates []Candidate, override string, logger *slog.Logger) (domain.ChatProvider, error) {
	if override != "" {
		for _, c := range candidates {
			if c.Name != override {
				continue
			}
			if c.Valid() {
				logger.Info("provider selected by override", "provider", c.Name)
				return c.Build(), nil
			}
			logger.Warn("override provider not configured, falling back to priority scan",
				"provider", override)
			break
		}
	}

	for _, c := range candidates {
		if c.Valid() {
			logger.Info("provider selected", "provider", c.Name)
			return c.Build(), nil
		}
	}

	logger.Warn("no valid provider candidate; conversational replies disabled")
	return nil, ErrNoProvider
}

// SelectFromConfig is the startup entry point: builds the candidate list from
// config and runs the scan.
func SelectFromConfig(cfg config.ProvidersConfig, logger *slog.Logger) (domain.ChatProvider, error) {
	p, err := Select(Candidates(cfg, logger), cfg.Active, logger)
	if err != nil {
		return nil, fmt.Errorf("select provider: %w", err)
	}
	return p, nil
}
