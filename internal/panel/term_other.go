//go:build !(linux || darwin)

package panel

import (
	"context"
	"os"
)

// Terminal is unavailable on this platform.
type Terminal struct{}

// OpenTerminal always fails with ErrUnsupported.
func OpenTerminal(_, _ *os.File) (*Terminal, error) {
	return nil, ErrUnsupported
}

// Restore does nothing.
func (t *Terminal) Restore() error { return nil }

// Width returns 0.
func (t *Terminal) Width() int { return 0 }

// ReadKeys returns ErrUnsupported.
func (t *Terminal) ReadKeys(_ context.Context, _ func(byte)) error {
	return ErrUnsupported
}
