// Package gateway implements the client side of the messaging bridge: a
// websocket connection that streams inbound events and answers command
// requests (send, download, contact queries, friend acceptance).
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"wxbot/internal/domain"
)

const (
	dialTimeout    = 10 * time.Second
	requestTimeout = 30 * time.Second
	writeTimeout   = 10 * time.Second
	maxBackoff     = 30 * time.Second
)

// frame is the wire envelope shared by events, requests, and responses.
type frame struct {
	Kind    string          `json:"kind"` // "event" | "request" | "response"
	ReqID   string          `json:"reqId,omitempty"`
	Method  string          `json:"method,omitempty"`
	Error   string          `json:"error,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// eventPayload is the gateway's JSON encoding of one inbound message.
type eventPayload struct {
	ID        string   `json:"id"`
	RoomID    string   `json:"roomId,omitempty"`
	Sender    string   `json:"sender"`
	Type      int      `json:"type"`
	Content   string   `json:"content"`
	AtList    []string `json:"atList,omitempty"`
	Extra     string   `json:"extra,omitempty"`
	FromSelf  bool     `json:"fromSelf,omitempty"`
	Timestamp int64    `json:"ts"`
}

// Client implements domain.Gateway over a single websocket connection.
type Client struct {
	addr   string
	logger *slog.Logger

	connMu sync.Mutex // guards conn and selfID
	conn   *websocket.Conn
	selfID string

	pendingMu sync.Mutex
	pending   map[string]chan frame

	busMu sync.Mutex
	bus   domain.EventBus
}

type Config struct {
	Addr   string
	Logger *slog.Logger
}

func New(cfg Config) *Client {
	return &Client{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		pending: make(map[string]chan frame),
	}
}

// Connect dials the bridge and resolves the bot's own id. Must succeed before
// Run or any command is used.
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.addr, nil)
	if err != nil {
		return fmt.Errorf("dial gateway %s: %w", c.addr, err)
	}
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	go c.readLoop(conn)

	var self struct {
		ID string `json:"id"`
	}
	if err := c.request(ctx, "selfInfo", nil, &self); err != nil {
		conn.Close()
		return fmt.Errorf("query self id: %w", err)
	}
	c.connMu.Lock()
	c.selfID = self.ID
	c.connMu.Unlock()
	c.logger.Info("gateway connected", "addr", c.addr, "self", self.ID)
	return nil
}

// Run keeps the connection alive for the life of ctx, redialing with backoff
// after a drop. Inbound events land on the bus in arrival order.
func (c *Client) Run(ctx context.Context, bus domain.EventBus) error {
	c.busMu.Lock()
	c.bus = bus
	c.busMu.Unlock()

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			c.close()
			return ctx.Err()
		default:
		}

		c.connMu.Lock()
		alive := c.conn != nil
		c.connMu.Unlock()

		if !alive {
			c.logger.Warn("gateway connection lost, redialing", "backoff", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if err := c.Connect(ctx); err != nil {
				c.logger.Error("gateway redial failed", "err", err)
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			backoff = time.Second
		}

		select {
		case <-ctx.Done():
			c.close()
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		c.connMu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.connMu.Unlock()
		c.failPending("connection closed")
	}()

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			c.logger.Warn("gateway read error", "err", err)
			return
		}
		switch f.Kind {
		case "event":
			c.handleEvent(f)
		case "response":
			c.handleResponse(f)
		default:
			c.logger.Debug("unknown frame kind", "kind", f.Kind)
		}
	}
}

func (c *Client) handleEvent(f frame) {
	var p eventPayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		c.logger.Error("malformed event payload", "err", err)
		return
	}
	ev := domain.InboundEvent{
		ID:            p.ID,
		GroupID:       p.RoomID,
		SenderID:      p.Sender,
		Type:          domain.EventType(p.Type),
		Content:       p.Content,
		MentionedIDs:  p.AtList,
		AttachmentRef: p.Extra,
		SelfSent:      p.FromSelf,
		Timestamp:     time.Unix(p.Timestamp, 0),
	}
	c.busMu.Lock()
	bus := c.bus
	c.busMu.Unlock()
	if bus != nil {
		bus.Publish(ev)
	}
}

func (c *Client) handleResponse(f frame) {
	c.pendingMu.Lock()
	ch, ok := c.pending[f.ReqID]
	if ok {
		delete(c.pending, f.ReqID)
	}
	c.pendingMu.Unlock()
	if ok {
		ch <- f
	}
}

func (c *Client) failPending(reason string) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		ch <- frame{Kind: "response", ReqID: id, Error: reason}
		delete(c.pending, id)
	}
}

// request sends one command frame and decodes the correlated response payload
// into out (which may be nil).
func (c *Client) request(ctx context.Context, method string, payload any, out any) error {
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		return fmt.Errorf("gateway not connected")
	}

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", method, err)
		}
		raw = data
	}

	reqID := uuid.NewString()
	ch := make(chan frame, 1)
	c.pendingMu.Lock()
	c.pending[reqID] = ch
	c.pendingMu.Unlock()

	c.connMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := conn.WriteJSON(frame{Kind: "request", ReqID: reqID, Method: method, Payload: raw})
	c.connMu.Unlock()
	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, reqID)
		c.pendingMu.Unlock()
		return fmt.Errorf("send %s: %w", method, err)
	}

	timer := time.NewTimer(requestTimeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, reqID)
		c.pendingMu.Unlock()
		return ctx.Err()
	case <-timer.C:
		c.pendingMu.Lock()
		delete(c.pending, reqID)
		c.pendingMu.Unlock()
		return fmt.Errorf("%s: gateway did not respond within %s", method, requestTimeout)
	case resp := <-ch:
		if resp.Error != "" {
			return fmt.Errorf("%s: %s", method, resp.Error)
		}
		if out != nil && len(resp.Payload) > 0 {
			if err := json.Unmarshal(resp.Payload, out); err != nil {
				return fmt.Errorf("decode %s response: %w", method, err)
			}
		}
		return nil
	}
}

func (c *Client) close() {
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()
}

// --- domain.Gateway ---

func (c *Client) SelfID() string {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.selfID
}

func (c *Client) SendText(ctx context.Context, content, receiver, atIDs string) error {
	return c.request(ctx, "sendText", map[string]string{
		"content":  content,
		"receiver": receiver,
		"atList":   atIDs,
	}, nil)
}

func (c *Client) SendImage(ctx context.Context, path, receiver string) error {
	return c.request(ctx, "sendImage", map[string]string{
		"path":     path,
		"receiver": receiver,
	}, nil)
}

func (c *Client) DownloadAttachment(ctx context.Context, eventID, ref, destDir string) (string, error) {
	var out struct {
		Path string `json:"path"`
	}
	err := c.request(ctx, "downloadAttachment", map[string]string{
		"eventId": eventID,
		"ref":     ref,
		"destDir": destDir,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Path, nil
}

func (c *Client) AcceptFriendRequest(ctx context.Context, encryptedUsername, ticket string, scene int) error {
	return c.request(ctx, "acceptFriend", map[string]any{
		"encryptUsername": encryptedUsername,
		"ticket":          ticket,
		"scene":           scene,
	}, nil)
}

func (c *Client) QueryContacts(ctx context.Context) ([]domain.Contact, error) {
	var out struct {
		Contacts []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"contacts"`
	}
	if err := c.request(ctx, "queryContacts", nil, &out); err != nil {
		return nil, err
	}
	contacts := make([]domain.Contact, 0, len(out.Contacts))
	for _, entry := range out.Contacts {
		contacts = append(contacts, domain.Contact{ID: entry.ID, Name: entry.Name})
	}
	return contacts, nil
}

func (c *Client) GroupAlias(ctx context.Context, id, groupID string) (string, error) {
	var out struct {
		Alias string `json:"alias"`
	}
	err := c.request(ctx, "groupAlias", map[string]string{
		"id":    id,
		"group": groupID,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Alias, nil
}
