// Package device provides the board peripherals for CakeBoard.
//
// A peripheral is a small matrix of boolean cells (LED lamps or switch
// levers) whose bits are tied to design registers through a pin.Table.
// Each refresh pass the board calls Update on every device, which moves
// bits in the device's direction:
//
//	┌──────────────┐   Table.Load    ┌──────────────┐
//	│  design reg  │ ──────────────▶ │   LED cells  │
//	└──────────────┘                 └──────────────┘
//	┌──────────────┐   Table.Store   ┌──────────────┐
//	│  design reg  │ ◀────────────── │ switch cells │
//	└──────────────┘                 └──────────────┘
//
// Host tooling talks to devices only through signal packets delivered by
// the board, so nothing outside the driving goroutine touches device state.
//
// # Key Types
//
//   - Device: the capability every peripheral implements
//   - Matrix: optional grid view used by renderers and the host accessors
//   - LED, Switch: the two peripheral variants
//   - Registry: ordered collection owned by the board
//
// # Usage
//
//	sw := device.NewSwitch("sw", device.Config{Rows: 1, Cols: 8})
//	if err := sw.Bind(&model.Switch, 8, 0, pin.Unsliced); err != nil {
//	    return err
//	}
//	sw.SetState(0, 3, true)
//	sw.Update() // model.Switch == 0x08
//
// # Thread Safety
//
// Devices and the Registry are not safe for concurrent use. They belong to
// the goroutine driving the board.
package device
