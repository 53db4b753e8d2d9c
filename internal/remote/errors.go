package remote

import "errors"

var (
	// ErrUnknownCommand is returned for a command name the bridge does not
	// handle.
	ErrUnknownCommand = errors.New("remote: unknown command")

	// ErrInvalidCommand is returned for a malformed command message.
	ErrInvalidCommand = errors.New("remote: invalid command")

	// ErrNotSubscribed is returned by HealthCheck before Start or after Stop.
	ErrNotSubscribed = errors.New("remote: not subscribed to commands")
)
