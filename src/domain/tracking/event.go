package tracking

import (
	"errors"
	"time"

	"github.com/bapt252/commitment-tracking/src/domain/shared"
)

// EventType defines the category of a tracked interaction.
type EventType string

const (
	EventTypeMatchProposed EventType = "match_proposed"
	EventTypeMatchViewed   EventType = "match_viewed"
	EventTypeMatchAccepted EventType = "match_accepted"
	EventTypeMatchRejected EventType = "match_rejected"
	EventTypeFeedback      EventType = "feedback"
	EventTypeInteraction   EventType = "interaction"
	EventTypeCompleted     EventType = "completed"
	EventTypeAbandoned     EventType = "abandoned"
)

// Valid reports whether t is one of the closed set of event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeMatchProposed, EventTypeMatchViewed, EventTypeMatchAccepted,
		EventTypeMatchRejected, EventTypeFeedback, EventTypeInteraction,
		EventTypeCompleted, EventTypeAbandoned:
		return true
	}
	return false
}

// Event is one captured interaction. An Event is never mutated after creation;
// it leaves the queue only on confirmed delivery.
type Event struct {
	// ID is globally unique for the lifetime of the SDK instance.
	ID string `json:"event_id"`

	Type      EventType        `json:"event_type"`
	UserID    shared.UserID    `json:"user_id"`
	SessionID shared.SessionID `json:"session_id"`

	// Timestamp is the server-intended time; ClientTimestamp is the local
	// capture time. Both are stamped at creation.
	Timestamp       time.Time `json:"timestamp"`
	ClientTimestamp time.Time `json:"client_timestamp"`

	// Payload carries the type-specific fields (match id, score, reasons, ...).
	Payload map[string]any `json:"payload,omitempty"`

	// Platform is the immutable environment snapshot taken at SDK construction.
	Platform PlatformInfo `json:"platform"`
}

// NewEvent builds a validated event. The caller supplies the unique id and the
// capture time so the constructor stays deterministic.
func NewEvent(id string, typ EventType, userID shared.UserID, sessionID shared.SessionID, payload map[string]any, platform PlatformInfo, at time.Time) (*Event, error) {
	if id == "" {
		return nil, errors.New("event id is required")
	}
	if !typ.Valid() {
		return nil, ErrInvalidEvent
	}
	if err := userID.Validate(); err != nil {
		return nil, err
	}
	if err := sessionID.Validate(); err != nil {
		return nil, err
	}
	if at.IsZero() {
		return nil, errors.New("timestamp cannot be zero")
	}
	return &Event{
		ID:              id,
		Type:            typ,
		UserID:          userID,
		SessionID:       sessionID,
		Timestamp:       at,
		ClientTimestamp: at,
		Payload:         payload,
		Platform:        platform,
	}, nil
}

// Validate ensures the event is well-formed.
func (e *Event) Validate() error {
	if e.ID == "" {
		return errors.New("event id is required")
	}
	if !e.Type.Valid() {
		return ErrInvalidEvent
	}
	if err := e.UserID.Validate(); err != nil {
		return err
	}
	if err := e.SessionID.Validate(); err != nil {
		return err
	}
	if e.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	return nil
}
