package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// One server for the whole file: the prometheus default registry rejects
// duplicate collectors.
func TestCollectorEndpoints(t *testing.T) {
	srv := NewServer(ServerConfig{Logger: zap.NewNop()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	post := func(t *testing.T, path string, payload any) *http.Response {
		t.Helper()
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("track batch accepts valid events", func(t *testing.T) {
		event, err := tracking.NewEvent("01ARZ3NDEKTSV4RRFFQ69G5FAV", tracking.EventTypeMatchProposed,
			"user-1", "sess-1", map[string]any{"match_id": "m1"}, tracking.PlatformInfo{}, time.Now())
		require.NoError(t, err)

		resp := post(t, "/api/events/track-batch", TrackBatchRequest{Events: []tracking.Event{*event}})
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		var out TrackBatchResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, 1, out.Accepted)
	})

	t.Run("track batch rejects empty batch", func(t *testing.T) {
		resp := post(t, "/api/events/track-batch", TrackBatchRequest{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("track batch rejects malformed events", func(t *testing.T) {
		resp := post(t, "/api/events/track-batch", map[string]any{
			"events": []map[string]any{{"event_type": "not_a_type"}},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("consent set records decision", func(t *testing.T) {
		resp := post(t, "/api/consent/set", ConsentSetRequest{
			UserID:      "user-1",
			ConsentType: "analytics",
			IsGranted:   true,
			UserAgent:   "agent/1.0",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out ConsentSetResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.True(t, out.Recorded)
	})

	t.Run("consent set requires a category", func(t *testing.T) {
		resp := post(t, "/api/consent/set", ConsentSetRequest{UserID: "user-1"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("request id stamped when absent", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

		req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
		require.NoError(t, err)
		req.Header.Set("X-Request-Id", "caller-supplied")
		echoed, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer echoed.Body.Close()
		assert.Empty(t, echoed.Header.Get("X-Request-Id"), "caller ids are kept, not re-stamped")
	})

	t.Run("metrics exposed", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
