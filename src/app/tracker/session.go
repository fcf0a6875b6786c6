package tracker

import (
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/bapt252/commitment-tracking/src/domain/shared"
	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// sessionManager owns the rotating session token. The token lives in
// session-scoped storage; the inactivity timer rotates it and repeats for the
// life of the instance. Rotation produces a fresh random token with no link
// to the previous one.
type sessionManager struct {
	cfg     Config
	storage tracking.Storage
	log     *zap.Logger
	clock   func() time.Time

	// onRotate is invoked outside the lock with the new token.
	onRotate func(shared.SessionID)

	mu      sync.Mutex
	session *tracking.Session
	timer   *time.Timer
	stopped bool
}

func newSessionManager(cfg Config, platform tracking.Platform, clock func() time.Time) *sessionManager {
	return &sessionManager{
		cfg:     cfg,
		storage: platform.SessionStorage(),
		log:     cfg.Logger,
		clock:   clock,
	}
}

// Current returns the session token, lazily creating one on first call. A
// token found in session storage is adopted so the session survives reloads.
func (m *sessionManager) Current() shared.SessionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		return m.session.ID
	}

	id := m.loadLocked()
	if id == "" {
		id = m.generateLocked()
	}
	session, err := tracking.NewSession(id, m.clock())
	if err != nil {
		// Token from storage was blank; mint a fresh one.
		id = m.generateLocked()
		session, _ = tracking.NewSession(id, m.clock())
	}
	m.session = session
	m.armLocked()
	return id
}

// Touch resets the inactivity timer. Called on every successful enqueue.
func (m *sessionManager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	if m.session != nil {
		m.session.Touch(m.clock())
	}
	m.armLocked()
}

// Stop cancels the rotation timer. Further rotations require a new instance.
func (m *sessionManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *sessionManager) loadLocked() shared.SessionID {
	raw, err := m.storage.Get(m.cfg.sessionKey())
	if err != nil {
		if err != tracking.ErrKeyNotFound {
			m.log.Warn("session read failed", zap.Error(err))
		}
		return ""
	}
	return shared.SessionID(raw)
}

func (m *sessionManager) generateLocked() shared.SessionID {
	id := shared.SessionID(uuid.Must(uuid.NewV4()).String())
	if err := m.storage.Set(m.cfg.sessionKey(), string(id)); err != nil {
		m.log.Warn("session persist failed", zap.Error(err))
	}
	return id
}

func (m *sessionManager) armLocked() {
	if m.stopped {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.cfg.SessionTimeout, m.rotate)
}

// rotate runs on timer expiry: mint a new token, persist it, notify.
func (m *sessionManager) rotate() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	id := m.generateLocked()
	m.session, _ = tracking.NewSession(id, m.clock())
	m.armLocked()
	notify := m.onRotate
	m.mu.Unlock()

	m.log.Debug("session rotated", zap.String("session_id", string(id)))
	if notify != nil {
		notify(id)
	}
}
