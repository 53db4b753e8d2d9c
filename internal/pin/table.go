package pin

import "fmt"

// Binding ties a run of device state bits to a design register.
type Binding struct {
	// Reg is the register word. A nil Reg is allowed and skipped on transfer,
	// so devices can be bound before the design is wired.
	Reg *uint32

	// Width is the number of state bits this binding carries.
	Width int

	// Low and High select the register slice. High < 0 addresses the low
	// Width bits of the register.
	Low  int
	High int

	// Pins lists explicit state slots, most significant bit first. Pin-list
	// bindings do not consume contiguous slots.
	Pins []int
}

// Sliced reports whether the binding addresses an explicit bit slice.
func (b Binding) Sliced() bool {
	return b.High >= 0
}

// Table is the ordered set of bindings owned by one device.
type Table struct {
	bindings []Binding
}

// Bind appends a contiguous binding of width state bits.
// Pass Unsliced as high to address the low width bits of reg.
func (t *Table) Bind(reg *uint32, width, low, high int) error {
	if err := Validate(width, low, high); err != nil {
		return err
	}
	if high < 0 {
		low, high = 0, Unsliced
	}
	t.bindings = append(t.bindings, Binding{
		Reg:   reg,
		Width: width,
		Low:   low,
		High:  high,
	})
	return nil
}

// BindPins appends a binding whose register bits map onto explicit state
// slots. pins is ordered from the register's most significant used bit
// down to bit 0, so pins[len(pins)-1] receives bit 0.
func (t *Table) BindPins(reg *uint32, pins []int) error {
	if len(pins) < MinWidth || len(pins) > MaxWidth {
		return fmt.Errorf("%w: %d pins", ErrInvalidPin, len(pins))
	}
	for _, p := range pins {
		if p < 0 {
			return fmt.Errorf("%w: negative slot %d", ErrInvalidPin, p)
		}
	}
	t.bindings = append(t.bindings, Binding{
		Reg:   reg,
		Width: len(pins),
		High:  Unsliced,
		Pins:  append([]int(nil), pins...),
	})
	return nil
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	return len(t.bindings)
}

// Bindings returns a copy of the bindings in registration order.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, len(t.bindings))
	copy(out, t.bindings)
	return out
}

// Load copies register bits into state (hardware to host).
func (t *Table) Load(state []bool) {
	cur := 0
	for _, b := range t.bindings {
		if b.Pins != nil {
			if b.Reg != nil {
				loadPins(*b.Reg, b.Pins, state)
			}
			continue
		}
		if b.Reg != nil {
			v := Extract(*b.Reg, b.Width, b.Low, b.High)
			for k := 0; k < b.Width && cur+k < len(state); k++ {
				state[cur+k] = v>>uint(k)&1 == 1
			}
		}
		cur += b.Width
	}
}

// Store writes state bits into the registers (host to hardware), keeping
// every register bit outside each binding's range.
func (t *Table) Store(state []bool) {
	cur := 0
	for _, b := range t.bindings {
		if b.Pins != nil {
			if b.Reg != nil {
				*b.Reg = Insert(*b.Reg, packPins(b.Pins, state), b.Width, 0, Unsliced)
			}
			continue
		}
		if b.Reg != nil {
			var v uint32
			for k := 0; k < b.Width && cur+k < len(state); k++ {
				if state[cur+k] {
					v |= 1 << uint(k)
				}
			}
			*b.Reg = Insert(*b.Reg, v, b.Width, b.Low, b.High)
		}
		cur += b.Width
	}
}

func loadPins(reg uint32, pins []int, state []bool) {
	n := len(pins)
	for i, slot := range pins {
		if slot < len(state) {
			state[slot] = reg>>uint(n-1-i)&1 == 1
		}
	}
}

func packPins(pins []int, state []bool) uint32 {
	var v uint32
	n := len(pins)
	for i, slot := range pins {
		if slot < len(state) && state[slot] {
			v |= 1 << uint(n-1-i)
		}
	}
	return v
}
