package robot

import (
	"context"
	"regexp"
	"time"

	"wxbot/internal/domain"
	"wxbot/internal/metrics"
)

// deterrentReply is what an @-mention gets while the conversational backend
// is switched off.
const deterrentReply = "我是机器人，请不要@我"

// atToken strips "@somebody" fragments (terminated by a normal space or the
// U+2005 the client inserts after a mention) before the question reaches the
// backend.
var atToken = regexp.MustCompile(`@[^\s\x{2005}]*[\s\x{2005}]?`)

// chitchat answers a conversational message. With the backend disabled it
// sends a fixed deterrent in groups and stays silent in direct chats; with it
// enabled the configured provider answers, keyed per group or per sender so
// histories stay separate.
func (r *Robot) chitchat(ctx context.Context, ev *domain.InboundEvent) {
	if !r.cfg.Current().Chitchat.EnableBackend || r.chat == nil {
		if ev.FromGroup() {
			if err := r.ReplyText(ctx, deterrentReply, ev.GroupID, ev.SenderID); err != nil {
				r.logger.Error("deterrent reply failed", "event", ev.ID, "err", err)
			}
		}
		return
	}

	question := atToken.ReplaceAllString(ev.Content, "")
	key := ev.SenderID
	if ev.FromGroup() {
		key = ev.GroupID
	}

	start := time.Now()
	answer, err := r.chat.Answer(ctx, question, key)
	metrics.ProviderLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderErrors.Inc()
		r.logger.Error("provider answer failed", "provider", r.chat.Name(), "err", err)
		return
	}
	if answer == "" {
		return
	}

	if ev.FromGroup() {
		if err := r.ReplyText(ctx, answer, ev.GroupID, ev.SenderID); err != nil {
			r.logger.Error("chitchat reply failed", "event", ev.ID, "err", err)
		}
		return
	}
	if err := r.ReplyText(ctx, answer, ev.SenderID); err != nil {
		r.logger.Error("chitchat reply failed", "event", ev.ID, "err", err)
	}
}
