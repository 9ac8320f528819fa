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

const zhipuAPIBase = "https://open.bigmodel.cn/api/paas/v4"

// Zhipu answers through the hosted Zhipu AI open platform.
type Zhipu struct {
	cfg     config.ZhipuConfig
	client  *http.Client
	history *history
	logger  *slog.Logger
}

func NewZhipu(cfg config.ZhipuConfig, logger *slog.Logger) *Zhipu {
	return &Zhipu{
		cfg:     cfg,
		client:  newHTTPClient(defaultHTTPTimeout, cfg.Proxy),
		history: newHistory(),
		logger:  logger,
	}
}

func (p *Zhipu) Name() string { return "zhipu" }

func (p *Zhipu) Answer(ctx context.Context, question, conversationKey string) (string, error) {
	body, err := json.Marshal(gptRequest{
		Model:    p.cfg.Model,
		Messages: p.history.messages(conversationKey, "", question),
	})
	if err != nil {
		return "", fmt.Errorf("zhipu: encode request: %w", err)
	}

	resp, err := doWithRetry(ctx, p.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			zhipuAPIBase+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
		return req, nil
	}, p.logger)
	if err != nil {
		return "", fmt.Errorf("zhipu: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("zhipu: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zhipu: HTTP %d: %s", resp.StatusCode, data)
	}

	var out gptResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("zhipu: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("zhipu: empty choices")
	}

	answer := out.Choices[0].Message.Content
	p.history.record(conversationKey, question, answer)
	return answer, nil
}
