package tracking

import (
	"testing"
	"time"

	"github.com/bapt252/commitment-tracking/src/domain/shared"
)

func TestNewSession(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if _, err := NewSession("", start); err == nil {
		t.Error("blank id should be rejected")
	}
	if _, err := NewSession("sess-1", time.Time{}); err == nil {
		t.Error("zero start should be rejected")
	}

	s, err := NewSession("sess-1", start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LastActivity != start {
		t.Error("last activity should begin at start time")
	}
}

func TestSessionExpiry(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	timeout := 30 * time.Minute
	s, _ := NewSession(shared.SessionID("sess-1"), start)

	if s.Expired(timeout, start.Add(29*time.Minute)) {
		t.Error("session expired before timeout elapsed")
	}
	if !s.Expired(timeout, start.Add(31*time.Minute)) {
		t.Error("session should expire after timeout")
	}

	// Activity defers expiry.
	s.Touch(start.Add(20 * time.Minute))
	if s.Expired(timeout, start.Add(31*time.Minute)) {
		t.Error("touch should have deferred expiry")
	}

	// Touch never moves activity backwards.
	s.Touch(start.Add(5 * time.Minute))
	if s.LastActivity != start.Add(20*time.Minute) {
		t.Error("touch moved last activity backwards")
	}
}
