package tracker

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// Config carries the SDK options. Use DefaultConfig for the documented
// defaults and override fields as needed; New validates the result.
type Config struct {
	// APIURL is the collector base for event batches. Batches go to
	// {APIURL}/track-batch.
	APIURL string

	// ConsentURL is the collector base for consent decisions. Updates go to
	// {ConsentURL}/set.
	ConsentURL string

	// BatchSize is the queue length that triggers an immediate flush.
	BatchSize int

	// FlushInterval is the period of the background flush timer.
	FlushInterval time.Duration

	// DisableBestEffortPreference stops ordinary flushes from trying the
	// fire-and-forget transport before the reliable one. By default every
	// flush prefers it when the host provides it; teardown flushes use it
	// regardless of this setting.
	DisableBestEffortPreference bool

	// Debug bypasses consent checks to unblock local development.
	Debug bool

	// StorageKey namespaces the persisted consent and session keys.
	StorageKey string

	// SendClientIP puts an explicit null client address on consent
	// notifications so the collector may fall back to the connection
	// address. By default the field is omitted and the address stays
	// anonymized.
	SendClientIP bool

	// SessionTimeout is the continuous inactivity period after which the
	// session token rotates.
	SessionTimeout time.Duration

	// Logger receives SDK diagnostics. Defaults to a nop logger.
	Logger *zap.Logger
}

// DefaultConfig returns the documented defaults. The boolean options are
// named so their zero values already are the defaults: best-effort delivery
// preferred, client address anonymized.
func DefaultConfig() Config {
	return Config{
		APIURL:         "/api/events",
		ConsentURL:     "/api/consent",
		BatchSize:      10,
		FlushInterval:  5 * time.Second,
		StorageKey:     "commitment_tracking",
		SessionTimeout: 30 * time.Minute,
	}
}

// withDefaults fills unset scalar fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.APIURL == "" {
		c.APIURL = d.APIURL
	}
	if c.ConsentURL == "" {
		c.ConsentURL = d.ConsentURL
	}
	if c.BatchSize == 0 {
		c.BatchSize = d.BatchSize
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = d.FlushInterval
	}
	if c.StorageKey == "" {
		c.StorageKey = d.StorageKey
	}
	if c.SessionTimeout == 0 {
		c.SessionTimeout = d.SessionTimeout
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Validate rejects configurations New cannot operate with.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return errors.New("batch size must be positive")
	}
	if c.FlushInterval <= 0 {
		return errors.New("flush interval must be positive")
	}
	if c.SessionTimeout <= 0 {
		return errors.New("session timeout must be positive")
	}
	return nil
}

func (c Config) consentsKey() string   { return c.StorageKey + "_consents" }
func (c Config) sessionKey() string    { return c.StorageKey + "_session_id" }
func (c Config) trackBatchURL() string { return c.APIURL + "/track-batch" }
func (c Config) consentSetURL() string { return c.ConsentURL + "/set" }
