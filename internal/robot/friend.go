package robot

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"

	"wxbot/internal/domain"
)

// friendRequest is the typed payload of an incoming friend-request notice.
type friendRequest struct {
	EncryptUsername string `xml:"encryptusername,attr"`
	Ticket          string `xml:"ticket,attr"`
	Scene           int    `xml:"scene,attr"`
}

func parseFriendRequest(content string) (friendRequest, error) {
	var req friendRequest
	if err := xml.Unmarshal([]byte(content), &req); err != nil {
		return req, fmt.Errorf("decode friend request: %w", err)
	}
	if req.EncryptUsername == "" || req.Ticket == "" {
		return req, fmt.Errorf("friend request missing credentials")
	}
	return req, nil
}

// acceptFriend auto-approves an incoming friend request.
func (r *Robot) acceptFriend(ctx context.Context, ev *domain.InboundEvent) {
	req, err := parseFriendRequest(ev.Content)
	if err != nil {
		r.logger.Error("friend request rejected", "event", ev.ID, "err", err)
		return
	}
	if err := r.gw.AcceptFriendRequest(ctx, req.EncryptUsername, req.Ticket, req.Scene); err != nil {
		r.logger.Error("accept friend request failed", "event", ev.ID, "err", err)
		return
	}
	r.logger.Info("friend request accepted", "event", ev.ID)
}

// newFriendNotice matches the system notice emitted once a friend request has
// gone through.
var newFriendNotice = regexp.MustCompile(`你已添加了(.*)，现在可以开始聊天了。`)

// greetNewFriend records the new contact and sends the welcome message.
func (r *Robot) greetNewFriend(ctx context.Context, ev *domain.InboundEvent) {
	m := newFriendNotice.FindStringSubmatch(ev.Content)
	if m == nil {
		return
	}
	name := m[1]
	r.contacts.Upsert(ev.SenderID, name)

	greeting := fmt.Sprintf("Hi %s，我自动通过了你的好友请求。", name)
	if err := r.ReplyText(ctx, greeting, ev.SenderID); err != nil {
		r.logger.Error("welcome message failed", "event", ev.ID, "err", err)
	}
}
