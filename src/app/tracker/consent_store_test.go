package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bapt252/commitment-tracking/src/domain/shared"
	"github.com/bapt252/commitment-tracking/src/domain/tracking"
	"github.com/bapt252/commitment-tracking/src/infra/platform"
)

func newTestConsentStore(t *testing.T, cfg Config, mem *platform.Memory) *consentStore {
	t.Helper()
	cfg = cfg.withDefaults()
	require.NoError(t, cfg.Validate())
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return newConsentStore(cfg, mem, func() time.Time { return fixed })
}

func TestConsentSetPersistsAndNotifies(t *testing.T) {
	mem := platform.NewMemory()
	mem.Env = tracking.EnvironmentInfo{UserAgent: "agent/1.0"}
	store := newTestConsentStore(t, DefaultConfig(), mem)

	require.True(t, store.Set(context.Background(), "user-1", shared.ConsentAnalytics, true))

	// Persisted blob lives under {storageKey}_consents.
	raw, err := mem.DurableStorage.Get("commitment_tracking_consents")
	require.NoError(t, err)
	var set tracking.ConsentSet
	require.NoError(t, json.Unmarshal([]byte(raw), &set))
	assert.True(t, set.Granted(shared.ConsentAnalytics))

	rec, ok := store.Get(shared.ConsentAnalytics)
	require.True(t, ok)
	assert.True(t, rec.Granted)
	assert.False(t, rec.Timestamp.IsZero())

	// The collector was told, with the agent string and no client address.
	sends := mem.Net.ReliableSends()
	require.Len(t, sends, 1)
	var update map[string]any
	require.NoError(t, json.Unmarshal(sends[0], &update))
	assert.Equal(t, "user-1", update["user_id"])
	assert.Equal(t, "analytics", update["consent_type"])
	assert.Equal(t, true, update["is_granted"])
	assert.Equal(t, "agent/1.0", update["user_agent"])
	assert.NotContains(t, update, "ip_address")
}

func TestConsentUpdateCarriesNullAddressWhenClientIPEnabled(t *testing.T) {
	mem := platform.NewMemory()
	cfg := DefaultConfig()
	cfg.SendClientIP = true
	store := newTestConsentStore(t, cfg, mem)

	require.True(t, store.Set(context.Background(), "user-1", shared.ConsentAnalytics, true))

	sends := mem.Net.ReliableSends()
	require.Len(t, sends, 1)
	var update map[string]any
	require.NoError(t, json.Unmarshal(sends[0], &update))
	require.Contains(t, update, "ip_address")
	assert.Nil(t, update["ip_address"])
}

func TestConsentSetReportsRemoteFailure(t *testing.T) {
	mem := platform.NewMemory()
	mem.Net.ReliableErr = errors.New("collector down")
	store := newTestConsentStore(t, Config{}, mem)

	assert.False(t, store.Set(context.Background(), "user-1", shared.ConsentAnalytics, true))
	// The local decision still took effect.
	assert.True(t, store.HasAll([]shared.ConsentCategory{shared.ConsentAnalytics}))
}

func TestConsentHasAllFailsClosed(t *testing.T) {
	mem := platform.NewMemory()
	store := newTestConsentStore(t, Config{}, mem)

	categories := []shared.ConsentCategory{shared.ConsentAnalytics}
	assert.False(t, store.HasAll(categories), "absent record must deny")

	store.Set(context.Background(), "user-1", shared.ConsentAnalytics, false)
	assert.False(t, store.HasAll(categories), "denied record must deny")

	store.Set(context.Background(), "user-1", shared.ConsentAnalytics, true)
	assert.True(t, store.HasAll(categories))

	// A broken storage denies everything, even after a grant.
	mem.DurableStorage.Err = errors.New("storage unavailable")
	assert.False(t, store.HasAll(categories), "storage failure must fail closed")
}

func TestConsentCorruptBlobFailsClosed(t *testing.T) {
	mem := platform.NewMemory()
	store := newTestConsentStore(t, Config{}, mem)
	require.NoError(t, mem.DurableStorage.Set("commitment_tracking_consents", "{not json"))

	assert.False(t, store.HasAll([]shared.ConsentCategory{shared.ConsentAnalytics}))
	_, ok := store.Get(shared.ConsentAnalytics)
	assert.False(t, ok)
}

func TestConsentDebugBypass(t *testing.T) {
	mem := platform.NewMemory()
	store := newTestConsentStore(t, Config{Debug: true}, mem)

	assert.True(t, store.HasAll([]shared.ConsentCategory{shared.ConsentAnalytics}))
	assert.Empty(t, store.Missing([]shared.ConsentCategory{shared.ConsentAnalytics}))
}
