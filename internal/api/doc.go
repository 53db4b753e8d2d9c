// Package api provides the HTTP REST API and WebSocket stream that host
// tooling uses to watch and drive the board.
//
// Reads are served from the board's latest snapshot and never touch the
// driving goroutine. Writes are turned into signal packets and queued on
// the board's bus; they take effect on the next refresh pass, so write
// endpoints answer 202 Accepted.
//
// The server follows the same lifecycle as the infrastructure clients:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// When api.auth.secret is set every route except /health requires a
// bearer token (see package auth); writes need the control scope.
package api
