// Package pin maps a device's logical state bits onto design registers.
//
// A design register is a 32-bit word owned by the simulated design and
// addressed by pointer. A Binding names one such register together with
// the number of state bits it carries and, optionally, the bit slice
// [Low, High] those bits occupy inside the word.
//
// # Codec
//
// Extract and Insert are the pure bit-field primitives used by every
// transfer:
//
//	v := pin.Extract(reg, 8, 4, 11)       // bits 11..4 of reg
//	reg = pin.Insert(reg, v, 8, 4, 11)    // write them back, other bits kept
//
// # Tables
//
// A Table is the ordered list of bindings owned by a single device.
// Contiguous bindings are consumed in registration order, each claiming
// the next Width state slots. Load moves register bits into the state
// vector (hardware to host); Store moves state bits into the registers
// (host to hardware). The direction is chosen by the device, not by the
// table.
//
// Bindings are validated when they are added. Transfers never fail: a nil
// register is skipped and state slots beyond the vector are dropped.
//
// Thread Safety:
//   - Tables are not safe for concurrent use. They are owned by a device
//     and driven from the board's loop goroutine.
package pin
