//go:build linux || darwin

package panel

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Terminal owns the input terminal while the keyboard is active.
type Terminal struct {
	in    *os.File
	out   *os.File
	saved unix.Termios
}

// OpenTerminal switches in to cbreak mode: keys arrive one at a time
// without echo while Ctrl-C still raises SIGINT. Restore undoes it.
func OpenTerminal(in, out *os.File) (*Terminal, error) {
	t := &Terminal{in: in, out: out}
	if err := termios.Tcgetattr(in.Fd(), &t.saved); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotTerminal, err)
	}

	cbreak := t.saved
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(in.Fd(), termios.TCIFLUSH, &cbreak); err != nil {
		return nil, fmt.Errorf("entering cbreak mode: %w", err)
	}
	return t, nil
}

// Restore puts the terminal back the way OpenTerminal found it.
func (t *Terminal) Restore() error {
	if err := termios.Tcsetattr(t.in.Fd(), termios.TCIFLUSH, &t.saved); err != nil {
		return fmt.Errorf("restoring terminal: %w", err)
	}
	return nil
}

// Width returns the output terminal width in columns, or 0 when unknown.
func (t *Terminal) Width() int {
	ws, err := unix.IoctlGetWinsize(int(t.out.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0
	}
	return int(ws.Col)
}

// ReadKeys passes each byte read from the terminal to fn until ctx is
// cancelled or the read fails. The blocked read is abandoned on
// cancellation; the process is expected to exit soon after.
func (t *Terminal) ReadKeys(ctx context.Context, fn func(byte)) error {
	keys := make(chan byte)
	errc := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := t.in.Read(buf)
			if err != nil {
				errc <- err
				return
			}
			if n == 1 {
				select {
				case keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return fmt.Errorf("reading keys: %w", err)
		case k := <-keys:
			fn(k)
		}
	}
}
