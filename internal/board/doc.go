// Package board is the CakeBoard orchestrator.
//
// A Board owns the device Registry, the signal Bus and a Pacer, and is
// driven by one goroutine calling Update in a loop:
//
//	b := board.New(board.WithDesign(model), board.WithLogger(log))
//	b.AddDevice(led)
//	if err := b.Init(1_000_000); err != nil {
//	    return err
//	}
//	defer b.Quit()
//	for ctx.Err() == nil {
//	    b.Update()
//	}
//
// Each Update runs one design clock cycle. When the pacer reports a refresh
// is due, the board drains the bus into the addressed devices, updates
// every device and publishes a Snapshot.
//
// # Lifecycle
//
//	Unconfigured ──Init──▶ Running ──Quit──▶ Stopped ──Init──▶ Running
//
// # Concurrency
//
// Only SendSignal, Sender and Latest may be called from other goroutines.
// Everything else belongs to the driving goroutine. Observers run on the
// driving goroutine and must not block.
//
// The host accessor functions (LEDRows, SwitchState, UpdateSwitchState and
// friends) read the board installed with Install through its latest
// snapshot, so they are safe from any goroutine.
package board
