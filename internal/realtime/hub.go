// Package realtime fans committed events out to in-process subscribers.
// Channels are named after the resource ("order:<id>", "courier:<id>");
// authorization happens at subscription time in the transport layer, so the
// hub itself only moves events.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"kapgel/internal/core/ports"

	"go.uber.org/zap"
)

// DefaultBuffer is the per-subscriber event buffer. A subscriber that falls
// this far behind starts losing events rather than slowing publishers down.
const DefaultBuffer = 16

// Subscription is one listener on a channel. Events arrive on C until
// Cancel is called; Cancel is idempotent.
type Subscription struct {
	C      <-chan ports.Event
	cancel func()
	once   sync.Once
}

// Cancel detaches the subscription and closes C.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Hub is an in-memory event fan-out. Publish never blocks: events for slow
// subscribers are dropped and counted. Safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[chan ports.Event]struct{}
	logger   *zap.Logger
	dropped  atomic.Uint64
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[chan ports.Event]struct{}),
		logger:   logger,
	}
}

// Subscribe attaches a listener to the named channel.
func (h *Hub) Subscribe(channel string) *Subscription {
	ch := make(chan ports.Event, DefaultBuffer)

	h.mu.Lock()
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[chan ports.Event]struct{})
		h.channels[channel] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	return &Subscription{
		C: ch,
		cancel: func() {
			h.mu.Lock()
			if subs, ok := h.channels[channel]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.channels, channel)
				}
			}
			h.mu.Unlock()
			close(ch)
		},
	}
}

// Publish delivers the event to every current subscriber of the channel.
// Subscribers whose buffers are full are skipped.
func (h *Hub) Publish(_ context.Context, channel string, event ports.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.channels[channel] {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
			h.logger.Debug("dropping realtime event for slow subscriber",
				zap.String("channel", channel), zap.String("kind", event.Kind))
		}
	}
}

// Dropped returns how many events were lost to slow subscribers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// MultiPublisher fans one Publish out to several publishers, typically the
// local hub plus the Redis mirror.
type MultiPublisher []ports.EventPublisher

// Publish forwards the event to every wrapped publisher.
func (m MultiPublisher) Publish(ctx context.Context, channel string, event ports.Event) {
	for _, p := range m {
		p.Publish(ctx, channel, event)
	}
}
