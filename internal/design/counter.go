package design

import "strings"

// Counter register names.
const (
	RegLED    = "led"
	RegSwitch = "sw"
	RegCount  = "count"
)

// Counter is a small reference design: a free-running counter whose
// slow-moving bits drive the LEDs, XORed with the switch inputs.
//
// It exists so the driver and tests have something to pace. The counter
// advances on each rising clock edge and clears while reset is asserted.
type Counter struct {
	// LED is the output register read by LED devices.
	LED uint32

	// Switch is the input register written by switch devices.
	Switch uint32

	// Count is the low word of the cycle counter.
	Count uint32

	// Shift selects which counter bits reach the LEDs.
	Shift uint

	clk     bool
	prevClk bool
	reset   bool
	cycles  uint64
}

// NewCounter returns a counter whose LEDs show bits [shift, shift+31].
func NewCounter(shift uint) *Counter {
	return &Counter{Shift: shift}
}

// SetClock implements Design.
func (c *Counter) SetClock(high bool) { c.clk = high }

// SetReset implements Design.
func (c *Counter) SetReset(asserted bool) { c.reset = asserted }

// Step implements Design.
func (c *Counter) Step() {
	if c.clk && !c.prevClk {
		if c.reset {
			c.cycles = 0
		} else {
			c.cycles++
		}
	}
	c.prevClk = c.clk
	c.Count = uint32(c.cycles)
	c.LED = uint32(c.cycles>>c.Shift) ^ c.Switch
}

// Cycles returns the number of rising edges since the last reset.
func (c *Counter) Cycles() uint64 { return c.cycles }

// Register implements RegisterMap.
func (c *Counter) Register(name string) *uint32 {
	switch strings.ToLower(name) {
	case RegLED:
		return &c.LED
	case RegSwitch:
		return &c.Switch
	case RegCount:
		return &c.Count
	default:
		return nil
	}
}
