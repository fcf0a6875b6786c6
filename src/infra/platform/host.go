package platform

import (
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bapt252/commitment-tracking/src/domain/tracking"
)

// HostOptions configures a production Platform.
type HostOptions struct {
	// DataDir is the badger directory for durable state. Empty means durable
	// state lives in memory and is lost on restart.
	DataDir string

	// Env is the environment the host reports for the platform snapshot.
	// Leave zero when the host has nothing to report.
	Env tracking.EnvironmentInfo

	// HTTPClient overrides the default 5s-timeout client.
	HTTPClient *http.Client

	Logger *zap.Logger
}

// Host is the production Platform: badger-backed durable storage, in-memory
// visit-scoped storage and HTTP transports.
type Host struct {
	durable tracking.Storage
	visit   *MemoryStorage
	net     *HTTPTransport
	env     tracking.EnvironmentInfo

	badger *BadgerStorage
}

// NewHost assembles the platform capabilities for a real host.
func NewHost(opts HostOptions) (*Host, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	h := &Host{
		visit: NewMemoryStorage(),
		net:   NewHTTPTransport(opts.Logger),
		env:   opts.Env,
	}
	if opts.HTTPClient != nil {
		h.net.WithHTTPClient(opts.HTTPClient)
	}

	if opts.DataDir != "" {
		store, err := OpenBadgerStorage(opts.DataDir)
		if err != nil {
			return nil, err
		}
		h.badger = store
		h.durable = store
	} else {
		h.durable = NewMemoryStorage()
	}
	return h, nil
}

func (h *Host) Storage() tracking.Storage { return h.durable }
func (h *Host) SessionStorage() tracking.Storage { return h.visit }
func (h *Host) Transport() tracking.Transport { return h.net }
func (h *Host) Environment() tracking.EnvironmentInfo { return h.env }

// Close releases the durable store, if any.
func (h *Host) Close() error {
	if h.badger != nil {
		return h.badger.Close()
	}
	return nil
}

var _ tracking.Platform = (*Host)(nil)

// HostEnvironment fills the environment fields a headless Go host can know
// on its own: timezone and language come from the process, screen stays
// unset.
func HostEnvironment(userAgent string) tracking.EnvironmentInfo {
	zone, _ := time.Now().Zone()
	lang := os.Getenv("LANG")
	if i := strings.IndexByte(lang, '.'); i >= 0 {
		lang = lang[:i]
	}
	return tracking.EnvironmentInfo{
		UserAgent: userAgent,
		Timezone:  zone,
		Language:  lang,
	}
}
