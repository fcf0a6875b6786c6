package tracking

import (
	"errors"
	"time"

	"github.com/bapt252/commitment-tracking/src/domain/shared"
)

// Session groups related events under a rotating opaque token. Rotation
// produces a fresh token with no causal link to the previous one.
type Session struct {
	ID           shared.SessionID
	StartedAt    time.Time
	LastActivity time.Time
}

// NewSession creates an active session around an already-generated token.
func NewSession(id shared.SessionID, startedAt time.Time) (*Session, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if startedAt.IsZero() {
		return nil, errors.New("start time is required")
	}
	return &Session{
		ID:           id,
		StartedAt:    startedAt,
		LastActivity: startedAt,
	}, nil
}

// Touch records activity, deferring expiry.
func (s *Session) Touch(now time.Time) {
	if now.After(s.LastActivity) {
		s.LastActivity = now
	}
}

// Expired reports whether continuous inactivity has exceeded the timeout.
func (s *Session) Expired(timeout time.Duration, now time.Time) bool {
	return now.Sub(s.LastActivity) >= timeout
}
