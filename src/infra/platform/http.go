package platform

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// HTTPTransport implements both delivery primitives over net/http.
type HTTPTransport struct {
	client *http.Client
	log    *zap.Logger
}

// NewHTTPTransport creates a transport with a 5 second request timeout.
func NewHTTPTransport(log *zap.Logger) *HTTPTransport {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPTransport{
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

// WithHTTPClient sets a custom HTTP client.
func (t *HTTPTransport) WithHTTPClient(client *http.Client) *HTTPTransport {
	t.client = client
	return t
}

// SendReliable posts the body and treats any 2xx response as success.
func (t *HTTPTransport) SendReliable(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tracking.ErrDispatchFailed
	}
	return nil
}

// SendBestEffort hands the body to a background goroutine and returns
// immediately. Delivery may silently fail; there is no feedback channel and
// no retry. This is the Go analogue of a page-teardown beacon.
func (t *HTTPTransport) SendBestEffort(url string, body []byte) bool {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := t.SendReliable(ctx, url, body); err != nil {
			t.log.Debug("best-effort send lost", zap.Error(err))
		}
	}()
	return true
}

var _ tracking.Transport = (*HTTPTransport)(nil)
