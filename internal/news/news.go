// Package news fetches the daily headline digest and delivers it to the
// configured receivers.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"wxbot/internal/domain"
)

const fetchTimeout = 30 * time.Second

type Client struct {
	apiBase string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(apiBase string, logger *slog.Logger) *Client {
	return &Client{
		apiBase: apiBase,
		http:    &http.Client{Timeout: fetchTimeout},
		logger:  logger,
	}
}

type digestResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Title  string `json:"title"`
		Source string `json:"source"`
	} `json:"data"`
}

// Fetch pulls today's headlines and formats them as one message. Returns an
// error when the feed is unreachable or empty.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase, nil)
	if err != nil {
		return "", fmt.Errorf("build news request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("news feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read news response: %w", err)
	}

	var digest digestResponse
	if err := json.Unmarshal(body, &digest); err != nil {
		return "", fmt.Errorf("decode news response: %w", err)
	}
	if len(digest.Data) == 0 {
		return "", fmt.Errorf("news feed empty (code %d, msg %q)", digest.Code, digest.Msg)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📰 %s 新闻早报\n", time.Now().Format("2006-01-02"))
	for i, item := range digest.Data {
		fmt.Fprintf(&sb, "%d. %s", i+1, item.Title)
		if item.Source != "" {
			fmt.Fprintf(&sb, "（%s）", item.Source)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// Report fetches the digest and sends it to every receiver. Failed sends are
// logged and the remaining receivers still get theirs.
func (c *Client) Report(ctx context.Context, gw domain.Gateway, receivers []string) {
	if len(receivers) == 0 {
		return
	}
	digest, err := c.Fetch(ctx)
	if err != nil {
		c.logger.Error("news digest skipped", "err", err)
		return
	}
	for _, rcv := range receivers {
		if err := gw.SendText(ctx, digest, rcv, ""); err != nil {
			c.logger.Error("news digest send failed", "receiver", rcv, "err", err)
		}
	}
}
