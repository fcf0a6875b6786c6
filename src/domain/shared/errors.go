package shared

import "errors"

var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidState = errors.New("invalid state transition")
)
