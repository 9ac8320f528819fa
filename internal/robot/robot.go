// Package robot is the classification and dispatch core: it routes inbound
// events to the static, image, idiom, and conversational handlers, and owns
// the outbound @-formatting.
package robot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"wxbot/internal/config"
	"wxbot/internal/contacts"
	"wxbot/internal/domain"
	"wxbot/internal/metrics"
	"wxbot/internal/responder"
)

// reloadCommand is the self-issued text that triggers a config reload.
const reloadCommand = "^更新$"

type Robot struct {
	cfg      *config.Manager
	gw       domain.Gateway
	contacts *contacts.Directory
	chat     domain.ChatProvider // nil when no candidate was valid
	static   *responder.Static
	image    *responder.ImageIntent
	logger   *slog.Logger
}

type Config struct {
	Manager   *config.Manager
	Gateway   domain.Gateway
	Contacts  *contacts.Directory
	Chat      domain.ChatProvider
	Extractor domain.TextExtractor
	Logger    *slog.Logger
}

func New(cfg Config) *Robot {
	r := &Robot{
		cfg:      cfg.Manager,
		gw:       cfg.Gateway,
		contacts: cfg.Contacts,
		chat:     cfg.Chat,
		logger:   cfg.Logger,
	}
	current := cfg.Manager.Current()
	r.static = responder.NewStatic(responder.StaticConfig{
		ImageDir: current.General.DataDir,
		ExpiryFor: func(groupID string) (string, bool) {
			date, ok := r.cfg.Current().Expiry[groupID]
			return date, ok
		},
		Replier: r,
		Logger:  cfg.Logger,
	})
	r.image = responder.NewImageIntent(responder.ImageIntentConfig{
		Gateway:     cfg.Gateway,
		Extractor:   cfg.Extractor,
		DownloadDir: current.Gateway.DownloadDir,
		Replier:     r,
		Logger:      cfg.Logger,
	})
	return r
}

// monitored reports whether the group is in the configured response list.
func (r *Robot) monitored(groupID string) bool {
	for _, g := range r.cfg.Current().Groups {
		if g == groupID {
			return true
		}
	}
	return false
}

// ReplyText sends content to receiver, @-ing the given participants. Each
// mentioned id becomes an "@displayName" token; the tokens are joined with
// spaces and separated from the body by a blank line. domain.AtEveryone
// yields the single @所有人 marker instead.
func (r *Robot) ReplyText(ctx context.Context, content, receiver string, atIDs ...string) error {
	if len(atIDs) == 0 {
		r.logger.Info("send", "to", receiver, "len", len(content))
		metrics.SendsTotal.Inc()
		return r.gw.SendText(ctx, content, receiver, "")
	}

	var tokens []string
	if len(atIDs) == 1 && atIDs[0] == domain.AtEveryone {
		tokens = []string{"@所有人"}
	} else {
		for _, id := range atIDs {
			tokens = append(tokens, "@"+r.displayName(ctx, id, receiver))
		}
	}

	body := strings.Join(tokens, " ") + "\n\n" + content
	r.logger.Info("send", "to", receiver, "at", atIDs, "len", len(content))
	metrics.SendsTotal.Inc()
	return r.gw.SendText(ctx, body, receiver, strings.Join(atIDs, ","))
}

// ReplyImage sends a local image file to receiver.
func (r *Robot) ReplyImage(ctx context.Context, path, receiver string) error {
	r.logger.Info("send image", "to", receiver, "path", path)
	metrics.SendsTotal.Inc()
	return r.gw.SendImage(ctx, path, receiver)
}

// displayName prefers the in-group alias, falling back to the directory.
func (r *Robot) displayName(ctx context.Context, id, groupID string) string {
	if alias, err := r.gw.GroupAlias(ctx, id, groupID); err == nil && alias != "" {
		return alias
	}
	return r.contacts.Name(id)
}

// reload re-reads the configuration file on the self-issued command.
func (r *Robot) reload() {
	if err := r.cfg.Reload(); err != nil {
		r.logger.Error("reload command failed", "err", err)
		return
	}
	r.logger.Info("configuration updated")
}

func (r *Robot) String() string {
	name := "none"
	if r.chat != nil {
		name = r.chat.Name()
	}
	return fmt.Sprintf("robot(self=%s, provider=%s, contacts=%d)",
		r.gw.SelfID(), name, r.contacts.Len())
}
