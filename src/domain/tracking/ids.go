package tracking

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDSource generates unique event ids. IDs produced within the same
// millisecond stay strictly ordered.
type IDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDSource creates a monotonic ULID source.
func NewIDSource() *IDSource {
	return &IDSource{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// New generates an id with the given timestamp.
func (s *IDSource) New(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Now generates an id with the current timestamp.
func (s *IDSource) Now() string {
	return s.New(time.Now())
}
