package shared

import (
	"errors"
	"strings"
)

// ID types keep domain entities distinct while remaining simple strings at runtime.
type (
	UserID          string
	SessionID       string
	MatchID         string
	ConsentCategory string
)

// ConsentAnalytics gates event collection as a whole. Granting it is a
// precondition for every track call.
const ConsentAnalytics ConsentCategory = "analytics"

// Validate ensures IDs are not blank and normalized.
func (id UserID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return errors.New("user id is required")
	}
	return nil
}

func (id SessionID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return errors.New("session id is required")
	}
	return nil
}

func (id MatchID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return errors.New("match id is required")
	}
	return nil
}

func (c ConsentCategory) Validate() error {
	if strings.TrimSpace(string(c)) == "" {
		return errors.New("consent category is required")
	}
	return nil
}
