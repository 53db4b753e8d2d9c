package board

import "errors"

var (
	// ErrAlreadyRunning is returned by Init on a running board.
	ErrAlreadyRunning = errors.New("board: already running")

	// ErrInvalidRate is returned by Init for a target frequency that is not positive.
	ErrInvalidRate = errors.New("board: target rate must be positive")
)
