package domain

import "context"

// AtEveryone is the special mention target that expands to a single
// @所有人 marker instead of per-name tokens.
const AtEveryone = "notify@all"

// Contact is one entry from the gateway's contact store.
type Contact struct {
	ID   string
	Name string
}

// Gateway is the messaging transport/automation layer. It delivers inbound
// events and performs all outbound operations on the bot's behalf.
type Gateway interface {
	// SelfID returns the bot account's own participant id.
	SelfID() string
	// SendText delivers a text message. atIDs lists participant ids to @
	// (comma-joined by callers that pass several), or AtEveryone.
	SendText(ctx context.Context, content, receiver, atIDs string) error
	// SendImage delivers a local image file to a group or user.
	SendImage(ctx context.Context, path, receiver string) error
	// DownloadAttachment fetches the media behind ref into destDir and
	// returns the local file path.
	DownloadAttachment(ctx context.Context, eventID, ref, destDir string) (string, error)
	// AcceptFriendRequest confirms a pending friend request.
	AcceptFriendRequest(ctx context.Context, encryptedUsername, ticket string, scene int) error
	// QueryContacts returns the full contact store.
	QueryContacts(ctx context.Context) ([]Contact, error)
	// GroupAlias returns the display name of a participant within a group.
	GroupAlias(ctx context.Context, id, groupID string) (string, error)
}

// EventBus carries inbound events from the gateway reader to the single
// dispatch worker. Ordering is preserved: one producer, one consumer.
type EventBus interface {
	Publish(ev InboundEvent)
	Subscribe() <-chan InboundEvent
	Close()
}
