package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrdersImported EventType = "orders_imported"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// OrdersImportedPayload payload.
type OrdersImportedPayload struct {
	BatchID   string `json:"batch_id"`
	Source    string `json:"source"`
	Received  int    `json:"received"`
	Persisted int    `json:"persisted"`
	Eligible  int    `json:"eligible"`
	Rejected  int    `json:"rejected"`
}
