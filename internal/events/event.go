package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies what happened to a profile
type Type string

const (
	// TypeProfileCreated is emitted when a sync creates a profile
	TypeProfileCreated Type = "profile.created"
	// TypeProfileSynced is emitted when a sync changes an existing profile
	TypeProfileSynced Type = "profile.synced"
	// TypeProfileEdited is emitted when a user edit is applied
	TypeProfileEdited Type = "profile.edited"
)

// Event is a profile change notification. It names the changed fields but
// never carries their values.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	UserID     string    `json:"user_id"`
	Fields     []string  `json:"fields"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent creates a new event
func NewEvent(eventType Type, userID string, fields []string, occurredAt time.Time) *Event {
	if fields == nil {
		fields = []string{}
	}
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		Fields:     fields,
		OccurredAt: occurredAt,
	}
}

// RoutingKey is the topic key the event is published under
func (e *Event) RoutingKey() string {
	return string(e.Type)
}
