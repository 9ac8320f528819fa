package robot

import (
	"context"
	"errors"

	"wxbot/internal/chengyu"
	"wxbot/internal/domain"
	"wxbot/internal/metrics"
	"wxbot/internal/responder"
)

// idioms answers the #/? idiom chain and lookup triggers.
func (r *Robot) idioms(content string) (string, bool) {
	return chengyu.Handle(content)
}

// ProcessEvent classifies one inbound event and runs the matching handlers.
// It never panics out: handler errors are logged and end routing for that
// event, the next event is unaffected.
func (r *Robot) ProcessEvent(ctx context.Context, ev *domain.InboundEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.HandlerPanics.Inc()
			r.logger.Error("handler panicked", "event", ev.ID, "panic", rec)
		}
	}()

	if ev.FromGroup() {
		r.processGroup(ctx, ev)
		return
	}
	r.processDirect(ctx, ev)
}

func (r *Robot) processGroup(ctx context.Context, ev *domain.InboundEvent) {
	if !r.monitored(ev.GroupID) {
		metrics.EventsDropped.Inc()
		r.logger.Debug("group not monitored, discarding", "group", ev.GroupID)
		return
	}

	if _, err := r.image.Handle(ctx, ev); err != nil {
		r.logger.Error("image handler failed", "event", ev.ID, "err", err)
		return
	}
	if _, err := r.static.Respond(ctx, ev.Content, ev.GroupID, ev.SenderID); err != nil {
		if errors.Is(err, responder.ErrNoExpiry) {
			// fallback reply already went out
			return
		}
		r.logger.Error("static handler failed", "event", ev.ID, "err", err)
		return
	}

	if ev.Mentions(r.gw.SelfID()) {
		r.chitchat(ctx, ev)
		return
	}

	if reply, ok := r.idioms(ev.Content); ok {
		if err := r.ReplyText(ctx, reply, ev.GroupID); err != nil {
			r.logger.Error("idiom reply failed", "event", ev.ID, "err", err)
		}
		return
	}
}

func (r *Robot) processDirect(ctx context.Context, ev *domain.InboundEvent) {
	switch ev.Type {
	case domain.EventFriendRequest:
		r.acceptFriend(ctx, ev)

	case domain.EventSystemNotice:
		r.greetNewFriend(ctx, ev)

	case domain.EventText:
		if ev.SelfSent {
			if ev.Content == reloadCommand {
				r.reload()
			}
			return
		}
		r.chitchat(ctx, ev)

	default:
		r.logger.Debug("unhandled event type", "type", ev.Type, "event", ev.ID)
	}
}
