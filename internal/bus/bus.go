package bus

import (
	"log/slog"
	"sync"
	"time"

	"wxbot/internal/domain"
	"wxbot/internal/metrics"
)

const publishTimeout = 10 * time.Second

// InMemoryBus is a Go-channel based event queue between the gateway reader
// and the dispatch worker. A single buffered channel with one consumer keeps
// events in arrival order.
type InMemoryBus struct {
	inbound chan domain.InboundEvent
	mu      sync.RWMutex
	closed  bool
	logger  *slog.Logger
}

// New creates a bus with the given buffer size.
func New(bufferSize int, logger *slog.Logger) *InMemoryBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &InMemoryBus{
		inbound: make(chan domain.InboundEvent, bufferSize),
		logger:  logger,
	}
}

// Publish enqueues an event. Blocks up to 10 seconds when the bus is full
// instead of dropping.
func (b *InMemoryBus) Publish(ev domain.InboundEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Warn("attempted to publish to closed bus")
		return
	}

	select {
	case b.inbound <- ev:
		metrics.QueueDepth.Set(int64(len(b.inbound)))
	default:
		b.logger.Warn("inbound bus full, waiting...", "sender", ev.SenderID, "group", ev.GroupID)
		timer := time.NewTimer(publishTimeout)
		defer timer.Stop()
		select {
		case b.inbound <- ev:
			metrics.QueueDepth.Set(int64(len(b.inbound)))
			b.logger.Info("event delivered after wait", "id", ev.ID)
		case <-timer.C:
			b.logger.Error("event dropped: bus full for 10s",
				"id", ev.ID,
				"sender", ev.SenderID,
			)
		}
	}
}

func (b *InMemoryBus) Subscribe() <-chan domain.InboundEvent {
	return b.inbound
}

func (b *InMemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.inbound)
	}
}
