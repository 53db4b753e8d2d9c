// Package trace records board sessions into SQLite.
//
// A Recorder is a board.Observer. Every time the board starts running it
// opens a new session (a random UUID), then stores sampled snapshots with
// the packed row words of each device, and closes the session when the
// board stops. The schema lives in the top-level migrations package.
//
// The trace is write-only from the board's point of view: nothing recorded
// here is ever loaded back into a running board.
package trace
