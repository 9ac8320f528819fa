// Package responder holds the non-conversational reply paths: the exact-match
// static tables, the expiry countdown, and the image OCR handler.
package responder

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"
)

// Replier is the outbound surface responders use. The robot implements it
// with display-name @-formatting.
type Replier interface {
	ReplyText(ctx context.Context, content, receiver string, atIDs ...string) error
	ReplyImage(ctx context.Context, path, receiver string) error
}

// Static answers exact-match triggers: media lookups, the redemption-code
// list, the price reply, and the per-group expiry countdown.
type Static struct {
	imageDir  string
	expiryFor func(groupID string) (string, bool)
	replier   Replier
	logger    *slog.Logger

	now func() time.Time // test seam
}

type StaticConfig struct {
	ImageDir  string
	ExpiryFor func(groupID string) (string, bool)
	Replier   Replier
	Logger    *slog.Logger
}

func NewStatic(cfg StaticConfig) *Static {
	return &Static{
		imageDir:  cfg.ImageDir,
		expiryFor: cfg.ExpiryFor,
		replier:   cfg.Replier,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// Respond handles one group event. Returns true when a trigger matched and a
// reply was attempted.
func (s *Static) Respond(ctx context.Context, content, groupID, senderID string) (bool, error) {
	if rel, ok := mediaTable[content]; ok {
		if err := s.replier.ReplyImage(ctx, filepath.Join(s.imageDir, rel), groupID); err != nil {
			return true, err
		}
		return true, nil
	}

	switch content {
	case triggerCodes:
		return true, s.replier.ReplyText(ctx, codesReply, groupID, senderID)

	case triggerExpiry:
		date, ok := s.expiryFor(groupID)
		if !ok {
			s.logger.Warn("expiry queried for group without configured date", "group", groupID)
			if err := s.replier.ReplyText(ctx, noExpiryReply, groupID, senderID); err != nil {
				return true, err
			}
			return true, ErrNoExpiry
		}
		msg, err := remainTime(date, s.now())
		if err != nil {
			return true, err
		}
		return true, s.replier.ReplyText(ctx, msg, groupID, senderID)

	case triggerPrice:
		return true, s.replier.ReplyText(ctx, priceReply, groupID, senderID)
	}

	return false, nil
}
