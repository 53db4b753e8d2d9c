package device

import (
	"fmt"

	"github.com/ZhaoCake/cakeboard/internal/pin"
	"github.com/ZhaoCake/cakeboard/internal/signal"
)

// Device is the capability every board peripheral implements.
type Device interface {
	// ID returns the immutable identifier packets are addressed to.
	ID() string

	// Update synchronises cells with the bound registers. It never blocks.
	Update()

	// Reset clears every cell. Registers are left alone.
	Reset()

	// HandleSignal applies a delivered packet. Unknown payloads are ignored.
	HandleSignal(p *signal.Packet)
}

// Matrix is implemented by devices laid out as a grid of cells.
type Matrix interface {
	Rows() int
	Cols() int

	// State returns the cell at (row, col), or false when out of range.
	State(row, col int) bool

	// Cells returns a row-major copy of every cell.
	Cells() []bool
}

// Kind tags the peripheral variant.
type Kind string

// Peripheral kinds.
const (
	KindLED    Kind = "led"
	KindSwitch Kind = "switch"
)

// AllKinds returns every supported kind.
func AllKinds() []Kind {
	return []Kind{KindLED, KindSwitch}
}

// Config is the geometry shared by both variants.
type Config struct {
	Rows int
	Cols int

	// SignalWidths documents the width of each expected binding, in order.
	SignalWidths []int

	// Labels name each row for rendering. Missing labels render empty.
	Labels []string
}

// Validate checks the geometry.
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("%w: %dx%d grid", ErrInvalidConfig, c.Rows, c.Cols)
	}
	for i, w := range c.SignalWidths {
		if w < pin.MinWidth || w > pin.MaxWidth {
			return fmt.Errorf("%w: signal %d width %d", ErrInvalidConfig, i, w)
		}
	}
	return nil
}

// Label returns the label for row, or "" when none was configured.
func (c Config) Label(row int) string {
	if row < 0 || row >= len(c.Labels) {
		return ""
	}
	return c.Labels[row]
}

// grid is the cell storage and binding table shared by LED and Switch.
type grid struct {
	id     string
	cfg    Config
	cells  []bool
	table  pin.Table
	sender signal.Sender
}

func newGrid(id string, cfg Config) grid {
	n := cfg.Rows * cfg.Cols
	if n < 0 {
		n = 0
	}
	return grid{id: id, cfg: cfg, cells: make([]bool, n)}
}

// ID implements Device.
func (g *grid) ID() string { return g.id }

// Rows implements Matrix.
func (g *grid) Rows() int { return g.cfg.Rows }

// Cols implements Matrix.
func (g *grid) Cols() int { return g.cfg.Cols }

// Config returns the device geometry.
func (g *grid) Config() Config { return g.cfg }

// State implements Matrix.
func (g *grid) State(row, col int) bool {
	i, ok := g.index(row, col)
	return ok && g.cells[i]
}

// Cells implements Matrix.
func (g *grid) Cells() []bool {
	out := make([]bool, len(g.cells))
	copy(out, g.cells)
	return out
}

// Reset implements Device.
func (g *grid) Reset() {
	clear(g.cells)
}

// Bind appends a contiguous binding. See pin.Table.Bind.
func (g *grid) Bind(reg *uint32, width, low, high int) error {
	if err := g.table.Bind(reg, width, low, high); err != nil {
		return fmt.Errorf("binding %s: %w", g.id, err)
	}
	return nil
}

// BindPins appends a pin-list binding. See pin.Table.BindPins.
func (g *grid) BindPins(reg *uint32, pins []int) error {
	if err := g.table.BindPins(reg, pins); err != nil {
		return fmt.Errorf("binding %s: %w", g.id, err)
	}
	return nil
}

// Bindings returns the device's bindings in registration order.
func (g *grid) Bindings() []pin.Binding {
	return g.table.Bindings()
}

// SetSender injects the queue the device may emit packets on.
func (g *grid) SetSender(s signal.Sender) {
	g.sender = s
}

func (g *grid) index(row, col int) (int, bool) {
	if row < 0 || col < 0 || row >= g.cfg.Rows || col >= g.cfg.Cols {
		return 0, false
	}
	i := row*g.cfg.Cols + col
	if i >= len(g.cells) {
		return 0, false
	}
	return i, true
}

// RowWord returns row packed into an integer, column 0 in bit 0.
// Columns beyond 32 are not represented.
func RowWord(m Matrix, row int) uint32 {
	var v uint32
	for c := 0; c < m.Cols() && c < pin.MaxWidth; c++ {
		if m.State(row, c) {
			v |= 1 << uint(c)
		}
	}
	return v
}

// emit sends payload to id through the injected sender, if any.
func (g *grid) emit(id string, payload any) {
	if g.sender == nil || id == "" {
		return
	}
	g.sender.Send(signal.New(id, payload))
}
