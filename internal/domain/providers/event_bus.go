package providers

import (
	"context"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ContentEvent) error

	// Subscribe subscribes to events on a channel. The returned channel is
	// closed when ctx is cancelled or the bus is closed.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ContentEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelContentUpdates carries every CMS content change.
	EventChannelContentUpdates = "content:updates"

	// EventChannelCollectionPrefix prefixes per-collection channels.
	EventChannelCollectionPrefix = "content:"
)

// GetCollectionChannel returns the channel name for a CMS collection.
func GetCollectionChannel(collection string) string {
	return EventChannelCollectionPrefix + collection
}
