package board

import (
	"sync/atomic"

	"github.com/ZhaoCake/cakeboard/internal/signal"
)

// host is the board behind the process-wide accessors.
var host atomic.Pointer[Board]

// Install makes b the board the host accessors read.
//
// Call Install after the board is created and before handing control to
// host tooling; call Uninstall before the board is discarded. Installing
// a new board replaces the previous one. Every accessor returns 0 or false
// while nothing is installed.
func Install(b *Board) {
	host.Store(b)
}

// Uninstall detaches the installed board.
func Uninstall() {
	host.Store(nil)
}

// Installed returns the installed board, or nil.
func Installed() *Board {
	return host.Load()
}

func hostDevice(led bool) (DeviceState, bool) {
	b := host.Load()
	if b == nil {
		return DeviceState{}, false
	}
	snap := b.Latest()
	if snap == nil {
		return DeviceState{}, false
	}
	id := snap.CurrentSwitch
	if led {
		id = snap.CurrentLED
	}
	if id == "" {
		return DeviceState{}, false
	}
	return snap.Device(id)
}

// LEDRows returns the row count of the current LED device.
func LEDRows() int {
	d, _ := hostDevice(true)
	return d.Rows
}

// LEDCols returns the column count of the current LED device.
func LEDCols() int {
	d, _ := hostDevice(true)
	return d.Cols
}

// LEDState returns one lamp of the current LED device.
func LEDState(row, col int) bool {
	d, _ := hostDevice(true)
	return d.State(row, col)
}

// SwitchRows returns the row count of the current switch device.
func SwitchRows() int {
	d, _ := hostDevice(false)
	return d.Rows
}

// SwitchCols returns the column count of the current switch device.
func SwitchCols() int {
	d, _ := hostDevice(false)
	return d.Cols
}

// SwitchState returns one lever of the current switch device.
func SwitchState(row, col int) bool {
	d, _ := hostDevice(false)
	return d.State(row, col)
}

// UpdateSwitchState queues a change to one lever of the current switch
// device. It reports false when no switch is installed or (row, col) is out
// of range. The change lands on the next refresh pass.
func UpdateSwitchState(row, col int, on bool) bool {
	b := host.Load()
	if b == nil {
		return false
	}
	d, ok := hostDevice(false)
	if !ok || row < 0 || col < 0 || row >= d.Rows || col >= d.Cols {
		return false
	}
	b.SendSignal(signal.New(d.ID, signal.CellPayload{Row: row, Col: col, On: on}))
	return true
}
