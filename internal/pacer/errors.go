package pacer

import "errors"

var (
	// ErrInvalidRate is returned when a target or refresh rate is not positive.
	ErrInvalidRate = errors.New("pacer: rate must be positive")

	// ErrUnknownStrategy is returned by New for an unrecognised strategy name.
	ErrUnknownStrategy = errors.New("pacer: unknown strategy")
)
