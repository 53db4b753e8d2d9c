package panel

import (
	"strings"

	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/signal"
)

// keyOrder maps keys to switch cells in row-major order.
const keyOrder = "1234567890qwertyuiopasdfghjklzxcvbnm"

// KeyCell returns the cell addressed by key on a rows x cols switch.
// Upper-case letters address the same cell as lower-case ones.
func KeyCell(key byte, rows, cols int) (row, col int, ok bool) {
	if cols <= 0 || rows <= 0 {
		return 0, 0, false
	}
	if key >= 'A' && key <= 'Z' {
		key += 'a' - 'A'
	}
	i := strings.IndexByte(keyOrder, key)
	if i < 0 || i >= rows*cols {
		return 0, 0, false
	}
	return i / cols, i % cols, true
}

// Keyboard turns key presses into toggles on the current switch device.
type Keyboard struct {
	sender signal.Sender
	latest func() *board.Snapshot
}

// NewKeyboard creates a keyboard that reads the current switch from latest
// and queues toggles on sender.
func NewKeyboard(sender signal.Sender, latest func() *board.Snapshot) *Keyboard {
	return &Keyboard{sender: sender, latest: latest}
}

// HandleKey queues a toggle for key and reports whether it addressed a cell.
func (k *Keyboard) HandleKey(key byte) bool {
	snap := k.latest()
	if snap == nil || snap.CurrentSwitch == "" {
		return false
	}
	d, ok := snap.Device(snap.CurrentSwitch)
	if !ok {
		return false
	}
	row, col, ok := KeyCell(key, d.Rows, d.Cols)
	if !ok {
		return false
	}
	k.sender.Send(signal.New(d.ID, signal.TogglePayload{Row: row, Col: col}))
	return true
}
