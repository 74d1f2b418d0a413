package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
)

// MemoryEventBus delivers events within one process. It backs single
// instance deployments that run without Redis.
type MemoryEventBus struct {
	mu          sync.Mutex
	subscribers map[string]map[chan *entities.ContentEvent]struct{}
	closed      bool
}

var _ providers.EventBus = (*MemoryEventBus)(nil)

// NewMemoryEventBus creates an in-process event bus.
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{subscribers: make(map[string]map[chan *entities.ContentEvent]struct{})}
}

// Publish hands the event to every current subscriber of channel. Full
// subscriber buffers drop the event.
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.ContentEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[channel] {
		select {
		case ch <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber channel full, dropping event")
		}
	}
	return nil
}

// Subscribe registers a subscriber that lives until ctx is cancelled.
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ContentEvent, error) {
	ch := make(chan *entities.ContentEvent, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, nil
	}
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.ContentEvent]struct{})
	}
	b.subscribers[channel][ch] = struct{}{}
	b.mu.Unlock()

	context.AfterFunc(ctx, func() { b.remove(channel, ch) })
	return ch, nil
}

func (b *MemoryEventBus) remove(channel string, ch chan *entities.ContentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[channel][ch]; !ok {
		return
	}
	delete(b.subscribers[channel], ch)
	close(ch)
	if len(b.subscribers[channel]) == 0 {
		delete(b.subscribers, channel)
	}
}

// Unsubscribe closes every subscriber of channel.
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)
	return nil
}

// Close closes every subscriber; later subscriptions are closed at once.
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for channel, subs := range b.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(b.subscribers, channel)
	}
	b.closed = true
	return nil
}
