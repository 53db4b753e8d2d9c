package panel

import "errors"

var (
	// ErrNotTerminal is returned when keyboard input is requested on
	// something that is not a terminal.
	ErrNotTerminal = errors.New("panel: input is not a terminal")

	// ErrUnsupported is returned on platforms without termios.
	ErrUnsupported = errors.New("panel: terminal control not supported on this platform")
)
