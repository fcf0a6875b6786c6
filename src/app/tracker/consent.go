package tracker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/bapt252/commitment-tracking/src/domain/shared"
	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// consentStore persists per-category consent decisions in durable storage and
// mirrors each decision to the collector. Storage failures are treated as "no
// consent": collection fails closed, never open.
type consentStore struct {
	cfg       Config
	storage   tracking.Storage
	transport tracking.Transport
	log       *zap.Logger
	clock     func() time.Time
	userAgent string
}

func newConsentStore(cfg Config, platform tracking.Platform, clock func() time.Time) *consentStore {
	return &consentStore{
		cfg:       cfg,
		storage:   platform.Storage(),
		transport: platform.Transport(),
		log:       cfg.Logger,
		clock:     clock,
		userAgent: platform.Environment().UserAgent,
	}
}

// load reads the persisted consent set. Any read or decode failure yields an
// empty set.
func (s *consentStore) load() tracking.ConsentSet {
	raw, err := s.storage.Get(s.cfg.consentsKey())
	if err != nil {
		if err != tracking.ErrKeyNotFound {
			s.log.Warn("consent read failed, treating as no consent", zap.Error(err))
		}
		return tracking.ConsentSet{}
	}
	var set tracking.ConsentSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		s.log.Warn("consent blob corrupt, treating as no consent", zap.Error(err))
		return tracking.ConsentSet{}
	}
	return set
}

// Get returns the persisted record for a category, if any.
func (s *consentStore) Get(category shared.ConsentCategory) (tracking.ConsentRecord, bool) {
	rec, ok := s.load()[category]
	return rec, ok
}

// Set persists the decision locally, then notifies the collector. The return
// value reports only whether the remote notification succeeded; the local
// write is best effort and logged on failure.
func (s *consentStore) Set(ctx context.Context, userID shared.UserID, category shared.ConsentCategory, granted bool) bool {
	set := s.load()
	set[category] = tracking.ConsentRecord{Granted: granted, Timestamp: s.clock()}

	blob, err := json.Marshal(set)
	if err != nil {
		s.log.Error("consent encode failed", zap.Error(err))
	} else if err := s.storage.Set(s.cfg.consentsKey(), string(blob)); err != nil {
		s.log.Error("consent persist failed", zap.Error(err))
	}

	return s.notifyCollector(ctx, userID, category, granted)
}

func (s *consentStore) notifyCollector(ctx context.Context, userID shared.UserID, category shared.ConsentCategory, granted bool) bool {
	// Wire shape of POST {consentURL}/set. The SDK never learns the client
	// address itself; by default the field is omitted entirely, and with
	// SendClientIP an explicit null lets the collector fall back to the
	// connection address.
	update := map[string]any{
		"user_id":      string(userID),
		"consent_type": string(category),
		"is_granted":   granted,
		"user_agent":   s.userAgent,
	}
	if s.cfg.SendClientIP {
		update["ip_address"] = nil
	}
	body, err := json.Marshal(update)
	if err != nil {
		s.log.Error("consent update encode failed", zap.Error(err))
		return false
	}
	if err := s.transport.SendReliable(ctx, s.cfg.consentSetURL(), body); err != nil {
		s.log.Warn("consent update not delivered", zap.Error(err))
		return false
	}
	return true
}

// HasAll reports whether every listed category has a persisted granted=true
// record. Debug configurations bypass the check entirely.
func (s *consentStore) HasAll(categories []shared.ConsentCategory) bool {
	if s.cfg.Debug {
		return true
	}
	return len(s.load().Missing(categories)) == 0
}

// Missing returns the categories still lacking a granted=true record.
func (s *consentStore) Missing(categories []shared.ConsentCategory) []shared.ConsentCategory {
	if s.cfg.Debug {
		return nil
	}
	return s.load().Missing(categories)
}
