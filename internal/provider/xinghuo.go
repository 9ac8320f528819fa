package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"wxbot/internal/config"
)

// Xinghuo answers through the iFlytek Spark websocket protocol: one
// HMAC-signed connection per question, streamed answer chunks reassembled
// until the final frame.
type Xinghuo struct {
	cfg     config.XinghuoConfig
	history *history
	logger  *slog.Logger
}

func NewXinghuo(cfg config.XinghuoConfig, logger *slog.Logger) *Xinghuo {
	return &Xinghuo{
		cfg:     cfg,
		history: newHistory(),
		logger:  logger,
	}
}

func (p *Xinghuo) Name() string { return "xinghuo" }

type sparkFrame struct {
	Header struct {
		Code    int    `json:"code"`
		Message string `json:"message,omitempty"`
		Status  int    `json:"status"`
	} `json:"header"`
	Payload struct {
		Choices struct {
			Status int `json:"status"`
			Text   []struct {
				Content string `json:"content"`
			} `json:"text"`
		} `json:"choices"`
	} `json:"payload"`
}

func (p *Xinghuo) Answer(ctx context.Context, question, conversationKey string) (string, error) {
	authURL, err := p.signURL(time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("xinghuo: sign url: %w", err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, authURL, nil)
	if err != nil {
		return "", fmt.Errorf("xinghuo: dial: %w", err)
	}
	defer conn.Close()

	msgs := p.history.messages(conversationKey, "", question)
	text := make([]map[string]string, 0, len(msgs))
	for _, m := range msgs {
		text = append(text, map[string]string{"role": m.Role, "content": m.Content})
	}

	req := map[string]any{
		"header": map[string]any{"app_id": p.cfg.AppID, "uid": conversationKey},
		"parameter": map[string]any{
			"chat": map[string]any{"domain": p.cfg.Domain, "temperature": 0.5, "max_tokens": 2048},
		},
		"payload": map[string]any{
			"message": map[string]any{"text": text},
		},
	}
	if err := conn.WriteJSON(req); err != nil {
		return "", fmt.Errorf("xinghuo: send: %w", err)
	}

	var sb strings.Builder
	for {
		if deadline, ok := ctx.Deadline(); ok {
			conn.SetReadDeadline(deadline)
		} else {
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		}
		var f sparkFrame
		if err := conn.ReadJSON(&f); err != nil {
			return "", fmt.Errorf("xinghuo: read: %w", err)
		}
		if f.Header.Code != 0 {
			return "", fmt.Errorf("xinghuo: code %d: %s", f.Header.Code, f.Header.Message)
		}
		for _, t := range f.Payload.Choices.Text {
			sb.WriteString(t.Content)
		}
		if f.Payload.Choices.Status == 2 {
			break
		}
	}

	answer := sb.String()
	if answer == "" {
		return "", fmt.Errorf("xinghuo: empty answer")
	}
	p.history.record(conversationKey, question, answer)
	return answer, nil
}

// signURL builds the HMAC-SHA256 authenticated websocket URL the Spark
// endpoint requires.
func (p *Xinghuo) signURL(now time.Time) (string, error) {
	u, err := url.Parse(p.cfg.APIURL)
	if err != nil {
		return "", err
	}

	date := now.Format("Mon, 02 Jan 2006 15:04:05 GMT")
	origin := fmt.Sprintf("host: %s\ndate: %s\nGET %s HTTP/1.1", u.Host, date, u.Path)

	mac := hmac.New(sha256.New, []byte(p.cfg.APISecret))
	mac.Write([]byte(origin))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	authOrigin := fmt.Sprintf(
		`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		p.cfg.APIKey, signature)
	authorization := base64.StdEncoding.EncodeToString([]byte(authOrigin))

	q := url.Values{}
	q.Set("authorization", authorization)
	q.Set("date", date)
	q.Set("host", u.Host)
	return p.cfg.APIURL + "?" + q.Encode(), nil
}
