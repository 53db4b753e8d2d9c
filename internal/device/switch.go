package device

import (
	"github.com/ZhaoCake/cakeboard/internal/pin"
	"github.com/ZhaoCake/cakeboard/internal/signal"
)

// Switch is a lever matrix that drives design registers.
//
// Update stores the cells into the bound registers, keeping every register
// bit outside the bound ranges.
type Switch struct {
	grid
	echo string
}

// NewSwitch creates a switch matrix with every lever off.
func NewSwitch(id string, cfg Config) *Switch {
	return &Switch{grid: newGrid(id, cfg)}
}

// Kind returns KindSwitch.
func (s *Switch) Kind() Kind { return KindSwitch }

// SetEcho names a device that receives a WordPayload for each row changed
// by a delivered packet. Pass "" to disable.
func (s *Switch) SetEcho(id string) {
	s.echo = id
}

// Echo returns the echo target id.
func (s *Switch) Echo() string { return s.echo }

// SetState sets one lever. It reports false when (row, col) is out of range.
func (s *Switch) SetState(row, col int, on bool) bool {
	i, ok := s.index(row, col)
	if !ok {
		return false
	}
	s.cells[i] = on
	return true
}

// Update implements Device.
func (s *Switch) Update() {
	s.table.Store(s.cells)
}

// HandleSignal implements Device.
func (s *Switch) HandleSignal(p *signal.Packet) {
	if p == nil {
		return
	}
	switch v := p.Payload.(type) {
	case signal.CellPayload:
		if s.SetState(v.Row, v.Col, v.On) {
			s.echoRow(v.Row)
		}
	case signal.TogglePayload:
		if s.SetState(v.Row, v.Col, !s.State(v.Row, v.Col)) {
			s.echoRow(v.Row)
		}
	case signal.WordPayload:
		if v.Row < 0 || v.Row >= s.cfg.Rows {
			return
		}
		for c := 0; c < s.cfg.Cols && c < pin.MaxWidth; c++ {
			s.SetState(v.Row, c, v.Value>>uint(c)&1 == 1)
		}
		s.echoRow(v.Row)
	case signal.ResetPayload:
		s.Reset()
		for r := 0; r < s.cfg.Rows; r++ {
			s.echoRow(r)
		}
	}
}

func (s *Switch) echoRow(row int) {
	if s.echo == "" {
		return
	}
	s.emit(s.echo, signal.WordPayload{Row: row, Value: RowWord(s, row)})
}
