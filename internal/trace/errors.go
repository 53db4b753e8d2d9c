package trace

import "errors"

var (
	// ErrDisabled is returned by Open when trace.enabled is false.
	ErrDisabled = errors.New("trace: disabled in configuration")

	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("trace: session not found")
)
