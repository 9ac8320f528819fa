package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"wxbot/internal/config"
)

const tigerbotAPIBase = "https://api.tigerbot.com/bot-service/ai_service/gpt"

// TigerBot answers through the TigerBot chat API. Single-shot: the service
// takes one query per call, so no history is kept.
type TigerBot struct {
	cfg    config.TigerBotConfig
	client *http.Client
	logger *slog.Logger
}

func NewTigerBot(cfg config.TigerBotConfig, logger *slog.Logger) *TigerBot {
	return &TigerBot{
		cfg:    cfg,
		client: newHTTPClient(defaultHTTPTimeout, cfg.Proxy),
		logger: logger,
	}
}

func (p *TigerBot) Name() string { return "tigerbot" }

func (p *TigerBot) Answer(ctx context.Context, question, conversationKey string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"text":         question,
		"modelVersion": p.cfg.Model,
	})
	if err != nil {
		return "", fmt.Errorf("tigerbot: encode request: %w", err)
	}

	resp, err := doWithRetry(ctx, p.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tigerbotAPIBase, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
		return req, nil
	}, p.logger)
	if err != nil {
		return "", fmt.Errorf("tigerbot: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("tigerbot: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tigerbot: HTTP %d: %s", resp.StatusCode, data)
	}

	var out struct {
		Code string `json:"code"`
		Data struct {
			Result []string `json:"result"`
		} `json:"data"`
		Message string `json:"msg"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("tigerbot: decode response: %w", err)
	}
	if len(out.Data.Result) == 0 {
		return "", fmt.Errorf("tigerbot: empty result (code %s, msg %s)", out.Code, out.Message)
	}
	return out.Data.Result[0], nil
}
