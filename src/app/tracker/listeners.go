package tracker

import (
	"sync"

	"go.uber.org/zap"

	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// ListenerFunc receives SDK notifications. Callbacks run on the SDK's
// goroutines; keep them fast.
type ListenerFunc func(tracking.Notification)

// listenerRegistry holds per-kind subscriptions. A panicking listener is
// logged and kept registered; it never affects other listeners or SDK state.
type listenerRegistry struct {
	log *zap.Logger

	mu        sync.Mutex
	nextID    int
	listeners map[tracking.NotificationKind]map[int]ListenerFunc
}

func newListenerRegistry(log *zap.Logger) *listenerRegistry {
	return &listenerRegistry{
		log:       log,
		listeners: make(map[tracking.NotificationKind]map[int]ListenerFunc),
	}
}

// On registers fn for a notification kind and returns its unsubscribe
// function. Unsubscribing twice is harmless.
func (r *listenerRegistry) On(kind tracking.NotificationKind, fn ListenerFunc) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	if r.listeners[kind] == nil {
		r.listeners[kind] = make(map[int]ListenerFunc)
	}
	r.listeners[kind][id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners[kind], id)
	}
}

// Emit invokes every listener registered for the notification's kind.
func (r *listenerRegistry) Emit(n tracking.Notification) {
	r.mu.Lock()
	fns := make([]ListenerFunc, 0, len(r.listeners[n.Kind()]))
	for _, fn := range r.listeners[n.Kind()] {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		r.invoke(fn, n)
	}
}

func (r *listenerRegistry) invoke(fn ListenerFunc, n tracking.Notification) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("listener panicked", zap.String("kind", string(n.Kind())), zap.Any("panic", rec))
		}
	}()
	fn(n)
}
