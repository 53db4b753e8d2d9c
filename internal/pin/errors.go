package pin

import "errors"

// Domain errors for the pin package.
var (
	// ErrInvalidBinding is returned when a binding's width or bit range is malformed.
	ErrInvalidBinding = errors.New("pin: invalid binding")

	// ErrInvalidPin is returned when a pin list is empty, too long or holds a negative slot.
	ErrInvalidPin = errors.New("pin: invalid pin list")
)
