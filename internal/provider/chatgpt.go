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

// ChatGPT answers through an OpenAI-compatible chat completion API.
type ChatGPT struct {
	cfg     config.ChatGPTConfig
	client  *http.Client
	history *history
	logger  *slog.Logger
}

func NewChatGPT(cfg config.ChatGPTConfig, logger *slog.Logger) *ChatGPT {
	return &ChatGPT{
		cfg:     cfg,
		client:  newHTTPClient(defaultHTTPTimeout, cfg.Proxy),
		history: newHistory(),
		logger:  logger,
	}
}

func (p *ChatGPT) Name() string { return "chatgpt" }

type gptRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type gptResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *ChatGPT) Answer(ctx context.Context, question, conversationKey string) (string, error) {
	body, err := json.Marshal(gptRequest{
		Model:    p.cfg.Model,
		Messages: p.history.messages(conversationKey, p.cfg.Prompt, question),
	})
	if err != nil {
		return "", fmt.Errorf("chatgpt: encode request: %w", err)
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
		return "", fmt.Errorf("chatgpt: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("chatgpt: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chatgpt: HTTP %d: %s", resp.StatusCode, data)
	}

	var out gptResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("chatgpt: decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("chatgpt: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chatgpt: empty choices")
	}

	answer := out.Choices[0].Message.Content
	p.history.record(conversationKey, question, answer)
	return answer, nil
}
