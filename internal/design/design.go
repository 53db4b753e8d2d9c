// Package design defines the contract between the board and a
// cycle-stepped design model.
//
// The board never looks inside a design. It drives the clock and reset
// inputs and asks the model to evaluate; devices reach the model's
// registers through *uint32 pointers bound with the pin package.
package design

// Design is a cycle-stepped digital design.
type Design interface {
	// SetClock drives the clock input.
	SetClock(high bool)

	// SetReset drives the reset input; true asserts reset regardless of
	// the model's own polarity.
	SetReset(asserted bool)

	// Step evaluates the model once with the current inputs.
	Step()
}

// RegisterMap is implemented by designs that expose registers by name,
// which lets devices be bound from configuration.
type RegisterMap interface {
	Register(name string) *uint32
}

// Cycle runs one full clock cycle: clock low then evaluate, clock high
// then evaluate.
func Cycle(d Design) {
	d.SetClock(false)
	d.Step()
	d.SetClock(true)
	d.Step()
}
