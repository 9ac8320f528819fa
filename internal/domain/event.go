package domain

import "time"

// EventType mirrors the gateway's numeric message type codes.
type EventType int

const (
	EventText          EventType = 1
	EventFriendRequest EventType = 37
	EventSystemNotice  EventType = 10000
)

// InboundEvent is one received message. The gateway creates it; everything
// downstream treats it as read-only.
type InboundEvent struct {
	ID            string
	GroupID       string // set iff the event came from a group
	SenderID      string
	Type          EventType
	Content       string
	MentionedIDs  []string // participant ids explicitly @-ed in the message
	AttachmentRef string   // gateway-side path of attached media, if any
	SelfSent      bool     // true when the bot's own account sent the message
	Timestamp     time.Time
}

// FromGroup reports whether the event originated in a group chat.
func (e *InboundEvent) FromGroup() bool { return e.GroupID != "" }

// Mentions reports whether the given participant id was @-ed.
func (e *InboundEvent) Mentions(id string) bool {
	for _, m := range e.MentionedIDs {
		if m == id {
			return true
		}
	}
	return false
}

// Receiver returns the conversation the event belongs to: the group for group
// events, the sender otherwise.
func (e *InboundEvent) Receiver() string {
	if e.FromGroup() {
		return e.GroupID
	}
	return e.SenderID
}
