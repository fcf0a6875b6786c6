package tracker

import (
	"sync"

	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// eventQueue is the ordered buffer of events awaiting delivery. Insertion
// order is capture order. Events leave only through Detach; a failed batch
// returns through RequeueFront ahead of anything enqueued meanwhile.
type eventQueue struct {
	mu     sync.Mutex
	events []*tracking.Event
}

func newEventQueue() *eventQueue {
	return &eventQueue{}
}

// Append adds an event at the tail and returns the new length.
func (q *eventQueue) Append(e *tracking.Event) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, e)
	return len(q.events)
}

// Len returns the number of pending events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Detach atomically takes the current contents and resets the live queue, so
// events enqueued while a flush is in flight join the next batch instead.
func (q *eventQueue) Detach() []*tracking.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.events
	q.events = nil
	return batch
}

// RequeueFront restores an undelivered batch ahead of later-captured events,
// preserving its internal order.
func (q *eventQueue) RequeueFront(batch []*tracking.Event) {
	if len(batch) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(batch[:len(batch):len(batch)], q.events...)
}

// Snapshot copies the pending events for inspection in tests.
func (q *eventQueue) Snapshot() []*tracking.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*tracking.Event, len(q.events))
	copy(out, q.events)
	return out
}
