package tracker

import (
	"testing"
	"time"

	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

func makeEvent(t *testing.T, ids *tracking.IDSource, typ tracking.EventType) *tracking.Event {
	t.Helper()
	event, err := tracking.NewEvent(ids.Now(), typ, "user-1", "sess-1", nil, tracking.PlatformInfo{}, time.Now())
	if err != nil {
		t.Fatalf("makeEvent: %v", err)
	}
	return event
}

func TestQueueDetachResetsLiveQueue(t *testing.T) {
	ids := tracking.NewIDSource()
	q := newEventQueue()
	a := makeEvent(t, ids, tracking.EventTypeMatchProposed)
	b := makeEvent(t, ids, tracking.EventTypeMatchViewed)
	q.Append(a)
	q.Append(b)

	batch := q.Detach()
	if len(batch) != 2 || batch[0] != a || batch[1] != b {
		t.Fatalf("detach lost order: %v", batch)
	}
	if q.Len() != 0 {
		t.Fatal("live queue should be empty after detach")
	}
}

func TestQueueRequeueFrontPreservesGlobalOrder(t *testing.T) {
	ids := tracking.NewIDSource()
	q := newEventQueue()
	a := makeEvent(t, ids, tracking.EventTypeMatchProposed)
	b := makeEvent(t, ids, tracking.EventTypeMatchViewed)
	q.Append(a)
	q.Append(b)

	batch := q.Detach()

	// Captured while the batch was in flight.
	c := makeEvent(t, ids, tracking.EventTypeInteraction)
	q.Append(c)

	q.RequeueFront(batch)

	got := q.Snapshot()
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("failed batch must sit ahead of later events, got %v", got)
	}
}

func TestQueueRequeueFrontEmptyBatch(t *testing.T) {
	q := newEventQueue()
	q.RequeueFront(nil)
	if q.Len() != 0 {
		t.Fatal("requeueing nothing should not grow the queue")
	}
}
