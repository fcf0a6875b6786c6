package tracking

import "context"

// EnvironmentInfo is the raw environment data the host exposes. The zero
// value means the host lacks the needed globals (non-browser harness).
type EnvironmentInfo struct {
	UserAgent    string
	ScreenWidth  int
	ScreenHeight int
	Timezone     string
	Language     string
}

// Storage is a narrow key-value persistence capability. Implementations are
// append/overwrite only; Get returns ErrKeyNotFound for absent keys.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Transport owns the two delivery primitives.
type Transport interface {
	// SendBestEffort hands the body off without waiting for a response. It
	// may silently fail; the return value only reports whether the primitive
	// was available and accepted the payload for sending. Appropriate during
	// page teardown, never retried.
	SendBestEffort(url string, body []byte) bool

	// SendReliable performs a request/response delivery. Any non-2xx
	// response or network failure is an error, which triggers requeueing.
	SendReliable(ctx context.Context, url string, body []byte) error
}

// Platform is the capability set injected at SDK construction. It isolates
// the core logic from the host runtime so tests can supply fakes.
type Platform interface {
	// Storage is durable across reloads (consent decisions).
	Storage() Storage
	// SessionStorage is scoped to the current visit (session token).
	SessionStorage() Storage
	Transport() Transport
	Environment() EnvironmentInfo
}
