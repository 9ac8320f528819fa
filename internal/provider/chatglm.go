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

// ChatGLM answers through a self-hosted ChatGLM endpoint exposing the
// OpenAI-compatible chat completion surface.
type ChatGLM struct {
	cfg     config.ChatGLMConfig
	client  *http.Client
	history *history
	logger  *slog.Logger
}

func NewChatGLM(cfg config.ChatGLMConfig, logger *slog.Logger) *ChatGLM {
	return &ChatGLM{
		cfg:     cfg,
		client:  newHTTPClient(defaultHTTPTimeout, cfg.Proxy),
		history: newHistory(),
		logger:  logger,
	}
}

func (p *ChatGLM) Name() string { return "chatglm" }

func (p *ChatGLM) Answer(ctx context.Context, question, conversationKey string) (string, error) {
	body, err := json.Marshal(gptRequest{
		Model:    p.cfg.Model,
		Messages: p.history.messages(conversationKey, "", question),
	})
	if err != nil {
		return "", fmt.Errorf("chatglm: encode request: %w", err)
	}

	resp, err := doWithRetry(ctx, p.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			p.cfg.APIBase+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
		return req, nil
	}, p.logger)
	if err != nil {
		return "", fmt.Errorf("chatglm: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("chatglm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chatglm: HTTP %d: %s", resp.StatusCode, data)
	}

	var out gptResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("chatglm: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chatglm: empty choices")
	}

	answer := out.Choices[0].Message.Content
	p.history.record(conversationKey, question, answer)
	return answer, nil
}
