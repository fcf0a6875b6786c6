// Package tracker implements the client-side event tracking SDK: consent
// gating, session rotation, event batching and delivery to the collector.
//
// The host application constructs an explicit *Tracker and passes it by
// reference; there is no package-level singleton. All failure is communicated
// through boolean returns and notifications, never through panics into host
// code.
package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bapt252/commitment-tracking/src/domain/shared"
	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

type state int

const (
	stateUninitialized state = iota
	stateActive
	stateDestroyed
)

// Tracker is the public facade of the SDK.
//
// Lifecycle: Uninitialized -> (Init with consent satisfied) -> Active ->
// (Destroy) -> Destroyed. A consent-blocked Init leaves the tracker
// Uninitialized with the user id pending; granting the missing consent later
// completes initialization automatically.
type Tracker struct {
	cfg Config
	log *zap.Logger

	// Clock supplies timestamps; overridable in tests.
	Clock func() time.Time

	platformInfo tracking.PlatformInfo
	ids          *tracking.IDSource
	consents     *consentStore
	sessions     *sessionManager
	queue        *eventQueue
	dispatch     *dispatcher
	listeners    *listenerRegistry

	mu            sync.Mutex
	state         state
	userID        shared.UserID
	pendingUserID shared.UserID
	flushTicker   *time.Ticker
	schedulerDone chan struct{}
}

// New wires the SDK around the injected platform capabilities. The
// environment snapshot is taken here, once, and never refreshed.
func New(cfg Config, platform tracking.Platform) (*Tracker, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if platform == nil {
		return nil, errors.New("platform is required")
	}

	t := &Tracker{
		cfg:          cfg,
		log:          cfg.Logger,
		Clock:        func() time.Time { return time.Now().UTC() },
		platformInfo: tracking.CollectPlatformInfo(platform.Environment()),
		ids:          tracking.NewIDSource(),
		listeners:    newListenerRegistry(cfg.Logger),
		queue:        newEventQueue(),
	}
	clock := func() time.Time { return t.Clock() }
	t.consents = newConsentStore(cfg, platform, clock)
	t.sessions = newSessionManager(cfg, platform, clock)
	t.dispatch = newDispatcher(cfg, platform, t.queue)
	t.sessions.onRotate = func(id shared.SessionID) {
		t.listeners.Emit(tracking.SessionRotated{SessionID: id})
	}
	return t, nil
}

func (t *Tracker) requiredConsents() []shared.ConsentCategory {
	return []shared.ConsentCategory{shared.ConsentAnalytics}
}

// Init starts collection for the given user. It short-circuits to true when
// already active. When required consent is missing it emits ConsentRequired
// and returns false without starting anything; a later SetConsent grant
// re-attempts initialization with the same user id.
func (t *Tracker) Init(userID shared.UserID) bool {
	t.mu.Lock()
	switch t.state {
	case stateDestroyed:
		t.mu.Unlock()
		t.log.Error("init called after destroy")
		return false
	case stateActive:
		t.mu.Unlock()
		return true
	}
	if err := userID.Validate(); err != nil {
		t.mu.Unlock()
		t.log.Error("init rejected", zap.Error(err))
		return false
	}

	missing := t.consents.Missing(t.requiredConsents())
	if len(missing) > 0 {
		t.pendingUserID = userID
		t.mu.Unlock()
		t.log.Warn("init blocked on consent", zap.String("user_id", string(userID)))
		t.listeners.Emit(tracking.ConsentRequired{UserID: userID, RequiredConsents: missing})
		return false
	}

	t.userID = userID
	t.pendingUserID = ""
	t.state = stateActive
	t.startSchedulerLocked()
	t.mu.Unlock()

	// Materializes the session and arms its inactivity timer.
	sessionID := t.sessions.Current()
	t.log.Info("tracking initialized",
		zap.String("user_id", string(userID)),
		zap.String("session_id", string(sessionID)))
	return true
}

// SetConsent records a consent decision and reports whether the collector
// acknowledged it. Granting analytics while an Init is pending completes
// initialization. Revoking analytics stops new enqueues immediately but does
// not purge already-queued events; those still belong to the granted period
// and leave the queue only on delivery.
func (t *Tracker) SetConsent(category shared.ConsentCategory, granted bool) bool {
	if err := category.Validate(); err != nil {
		t.log.Error("set consent rejected", zap.Error(err))
		return false
	}

	t.mu.Lock()
	userID := t.userID
	if userID == "" {
		userID = t.pendingUserID
	}
	t.mu.Unlock()

	remoteOK := t.consents.Set(context.Background(), userID, category, granted)

	if granted && category == shared.ConsentAnalytics {
		t.mu.Lock()
		pending := shared.UserID("")
		if t.state == stateUninitialized {
			pending = t.pendingUserID
		}
		t.mu.Unlock()
		if pending != "" {
			t.Init(pending)
		}
	}
	return remoteOK
}

// On registers a notification listener and returns its unsubscribe function.
func (t *Tracker) On(kind tracking.NotificationKind, fn ListenerFunc) func() {
	return t.listeners.On(kind, fn)
}

// Flush forces delivery of everything currently queued, e.g. before the host
// navigates away. With bestEffort the fire-and-forget transport is preferred.
func (t *Tracker) Flush(ctx context.Context, bestEffort bool) bool {
	t.mu.Lock()
	destroyed := t.state == stateDestroyed
	t.mu.Unlock()
	if destroyed {
		return false
	}
	return t.dispatch.Flush(ctx, bestEffort)
}

// Pending returns the number of events awaiting delivery.
func (t *Tracker) Pending() int {
	return t.queue.Len()
}

// Destroy performs one best-effort teardown flush, cancels both timers and
// marks the instance unusable. Track calls after Destroy fail closed.
func (t *Tracker) Destroy() {
	t.mu.Lock()
	if t.state == stateDestroyed {
		t.mu.Unlock()
		return
	}
	wasActive := t.state == stateActive
	t.state = stateDestroyed
	t.stopSchedulerLocked()
	t.mu.Unlock()

	t.sessions.Stop()
	if wasActive {
		// Waits out any in-flight periodic flush so late events are not
		// silently skipped.
		t.dispatch.FlushFinal(context.Background(), true)
	}
	if n := t.queue.Len(); n > 0 {
		// The teardown transport has no feedback; anything still queued here
		// could not be handed off at all.
		t.log.Warn("events dropped at teardown", zap.Int("events", n))
	}
	t.log.Info("tracking destroyed")
}

// track builds and enqueues one typed event. Shared by the Track* family.
func (t *Tracker) track(typ tracking.EventType, payload map[string]any) bool {
	t.mu.Lock()
	if t.state != stateActive {
		t.mu.Unlock()
		t.log.Error("track called while not initialized", zap.String("event_type", string(typ)))
		return false
	}
	userID := t.userID
	t.mu.Unlock()

	// Consent may be revoked mid-session; checked on every call.
	if !t.consents.HasAll(t.requiredConsents()) {
		t.log.Warn("event dropped, consent missing", zap.String("event_type", string(typ)))
		return false
	}

	now := t.Clock()
	event, err := tracking.NewEvent(t.ids.New(now), typ, userID, t.sessions.Current(), payload, t.platformInfo, now)
	if err != nil {
		t.log.Error("event build failed", zap.Error(err))
		return false
	}

	length := t.queue.Append(event)
	t.sessions.Touch()
	t.log.Debug("event enqueued",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(typ)),
		zap.Int("pending", length))

	if length >= t.cfg.BatchSize {
		t.dispatch.Flush(context.Background(), false)
	}
	return true
}

func (t *Tracker) startSchedulerLocked() {
	t.flushTicker = time.NewTicker(t.cfg.FlushInterval)
	t.schedulerDone = make(chan struct{})
	go func(tick *time.Ticker, done chan struct{}) {
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				t.dispatch.Flush(context.Background(), false)
			}
		}
	}(t.flushTicker, t.schedulerDone)
}

func (t *Tracker) stopSchedulerLocked() {
	if t.flushTicker != nil {
		t.flushTicker.Stop()
		close(t.schedulerDone)
		t.flushTicker = nil
	}
}
