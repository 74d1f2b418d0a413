package entities

import (
	"time"

	"github.com/google/uuid"
)

// ContentEventType is the kind of change the CMS reported.
type ContentEventType string

const (
	ContentEventCreated ContentEventType = "created"
	ContentEventUpdated ContentEventType = "updated"
	ContentEventDeleted ContentEventType = "deleted"
)

// ContentEvent announces that an item of a CMS collection changed.
type ContentEvent struct {
	ID         string           `json:"id"`
	Collection string           `json:"collection"`
	ItemID     string           `json:"item_id,omitempty"`
	EventType  ContentEventType `json:"event_type"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewContentEvent creates a content event stamped with the current time.
func NewContentEvent(collection, itemID string, eventType ContentEventType) *ContentEvent {
	return &ContentEvent{
		ID:         uuid.NewString(),
		Collection: collection,
		ItemID:     itemID,
		EventType:  eventType,
		Timestamp:  time.Now().UTC(),
	}
}
