package robot

import (
	"context"

	"wxbot/internal/domain"
	"wxbot/internal/metrics"
)

// Dispatch drains the bus with a single worker so events are handled in
// arrival order. It returns when the context is cancelled or the bus closes.
func (r *Robot) Dispatch(ctx context.Context, bus domain.EventBus) {
	r.logger.Info("dispatch loop started", "self", r.gw.SelfID())
	events := bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("dispatch loop stopping", "reason", ctx.Err())
			return
		case ev, ok := <-events:
			if !ok {
				r.logger.Info("event stream closed, dispatch loop stopping")
				return
			}
			metrics.EventsTotal.Inc()
			metrics.QueueDepth.Set(int64(len(events)))
			r.ProcessEvent(ctx, &ev)
			metrics.EventsHandled.Inc()
		}
	}
}
