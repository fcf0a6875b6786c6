package tracking

import "errors"

var (
	ErrInvalidEvent    = errors.New("invalid event")
	ErrConsentRequired = errors.New("consent required")
	ErrDispatchFailed  = errors.New("failed to dispatch events")
	ErrKeyNotFound     = errors.New("storage key not found")
)
