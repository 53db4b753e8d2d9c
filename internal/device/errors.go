package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrUnknownKind) {
//	    // handle bad config
//	}
var (
	// ErrUnknownKind is returned when a device kind is not recognised.
	ErrUnknownKind = errors.New("device: unknown kind")

	// ErrInvalidConfig is returned when a device's geometry or signal list is unusable.
	ErrInvalidConfig = errors.New("device: invalid config")

	// ErrUnknownRegister is returned when a signal names a register the design does not expose.
	ErrUnknownRegister = errors.New("device: unknown register")
)
