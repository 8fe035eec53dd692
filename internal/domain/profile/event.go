package profile

import "github.com/google/uuid"

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventChosen  EventType = "chosen"
	EventDeleted EventType = "deleted"
)

// Event is emitted after a remote write has been confirmed.
type Event struct {
	EventType EventType `json:"event_type"`
	OwnerID   uuid.UUID `json:"owner_id"`
	ProfileID uuid.UUID `json:"profile_id"`
}
