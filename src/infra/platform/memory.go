package platform

import (
	"context"
	"sync"

	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// MemoryStorage is an in-memory Storage. Setting Err makes every operation
// fail, which exercises the fail-closed consent path in tests.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]string
	Err  error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	v, ok := s.data[key]
	if !ok {
		return "", tracking.ErrKeyNotFound
	}
	return v, nil
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.data[key] = value
	return nil
}

// RecordingTransport captures outgoing payloads instead of sending them.
type RecordingTransport struct {
	mu sync.Mutex

	// BestEffortAvailable mimics hosts that lack the fire-and-forget
	// primitive when false.
	BestEffortAvailable bool

	// ReliableErr makes every reliable send fail.
	ReliableErr error

	// ReliableGate, when non-nil, blocks every reliable send until the
	// channel is closed. Tests use it to hold a delivery in flight.
	ReliableGate chan struct{}

	bestEffort [][]byte
	reliable   [][]byte
}

func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{BestEffortAvailable: true}
}

func (t *RecordingTransport) SendBestEffort(url string, body []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.BestEffortAvailable {
		return false
	}
	t.bestEffort = append(t.bestEffort, append([]byte(nil), body...))
	return true
}

func (t *RecordingTransport) SendReliable(ctx context.Context, url string, body []byte) error {
	t.mu.Lock()
	gate := t.ReliableGate
	t.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ReliableErr != nil {
		return t.ReliableErr
	}
	t.reliable = append(t.reliable, append([]byte(nil), body...))
	return nil
}

// BestEffortSends returns the payloads handed to the best-effort primitive.
func (t *RecordingTransport) BestEffortSends() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.bestEffort))
	copy(out, t.bestEffort)
	return out
}

// ReliableSends returns the payloads delivered reliably.
func (t *RecordingTransport) ReliableSends() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.reliable))
	copy(out, t.reliable)
	return out
}

// Memory implements the full Platform capability set in memory. It backs the
// test suites and any embedded host that does not need real networking.
type Memory struct {
	DurableStorage *MemoryStorage
	VisitStorage   *MemoryStorage
	Net            *RecordingTransport
	Env            tracking.EnvironmentInfo
}

func NewMemory() *Memory {
	return &Memory{
		DurableStorage: NewMemoryStorage(),
		VisitStorage:   NewMemoryStorage(),
		Net:            NewRecordingTransport(),
	}
}

func (m *Memory) Storage() tracking.Storage { return m.DurableStorage }
func (m *Memory) SessionStorage() tracking.Storage { return m.VisitStorage }
func (m *Memory) Transport() tracking.Transport { return m.Net }
func (m *Memory) Environment() tracking.EnvironmentInfo { return m.Env }

var _ tracking.Platform = (*Memory)(nil)
