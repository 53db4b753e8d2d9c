package device

import (
	"github.com/ZhaoCake/cakeboard/internal/pin"
	"github.com/ZhaoCake/cakeboard/internal/signal"
)

// LED is a lamp matrix driven by design registers.
//
// Update loads register bits into the cells. A CellPayload or WordPayload
// forces cells until the next Update rewrites the bound slots.
type LED struct {
	grid
}

// NewLED creates an LED matrix with every lamp off.
func NewLED(id string, cfg Config) *LED {
	return &LED{grid: newGrid(id, cfg)}
}

// Kind returns KindLED.
func (l *LED) Kind() Kind { return KindLED }

// Update implements Device.
func (l *LED) Update() {
	l.table.Load(l.cells)
}

// HandleSignal implements Device.
func (l *LED) HandleSignal(p *signal.Packet) {
	if p == nil {
		return
	}
	switch v := p.Payload.(type) {
	case signal.CellPayload:
		if i, ok := l.index(v.Row, v.Col); ok {
			l.cells[i] = v.On
		}
	case signal.WordPayload:
		for c := 0; c < l.cfg.Cols && c < pin.MaxWidth; c++ {
			if i, ok := l.index(v.Row, c); ok {
				l.cells[i] = v.Value>>uint(c)&1 == 1
			}
		}
	case signal.ResetPayload:
		l.Reset()
	}
}
