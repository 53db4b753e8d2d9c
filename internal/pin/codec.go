package pin

import "fmt"

// Register width limits.
const (
	// MinWidth is the narrowest binding allowed.
	MinWidth = 1

	// MaxWidth is the widest binding allowed (one full register).
	MaxWidth = 32

	// Unsliced is the High value of a binding that addresses the low
	// Width bits of the register rather than an explicit slice.
	Unsliced = -1
)

// mask returns a word with the low n bits set.
func mask(n int) uint32 {
	if n >= MaxWidth {
		return ^uint32(0)
	}
	if n <= 0 {
		return 0
	}
	return uint32(1)<<uint(n) - 1
}

// Extract returns the field addressed by (width, low, high) in reg.
//
// When high >= 0 the result is the (high-low+1)-bit field starting at bit
// low. Otherwise it is the low width bits of reg.
func Extract(reg uint32, width, low, high int) uint32 {
	if high >= 0 {
		return (reg >> uint(low)) & mask(high-low+1)
	}
	return reg & mask(width)
}

// Insert returns reg with the field addressed by (width, low, high)
// replaced by field. Bits of field that do not fit the range are
// discarded and every bit of reg outside the range is preserved.
func Insert(reg, field uint32, width, low, high int) uint32 {
	var m uint32
	if high >= 0 {
		m = mask(high-low+1) << uint(low)
		field <<= uint(low)
	} else {
		m = mask(width)
	}
	return reg&^m | field&m
}

// Validate checks a (width, low, high) triple against the binding rules:
// width in [1,32]; for sliced bindings 0 <= low <= high <= 31 and the
// slice fits in width.
func Validate(width, low, high int) error {
	if width < MinWidth || width > MaxWidth {
		return fmt.Errorf("%w: width %d outside [%d,%d]", ErrInvalidBinding, width, MinWidth, MaxWidth)
	}
	if high < 0 {
		return nil
	}
	if low < 0 || high < low {
		return fmt.Errorf("%w: bit range [%d:%d]", ErrInvalidBinding, high, low)
	}
	if high >= MaxWidth {
		return fmt.Errorf("%w: high bit %d beyond register", ErrInvalidBinding, high)
	}
	if high-low+1 > width {
		return fmt.Errorf("%w: slice [%d:%d] wider than %d bits", ErrInvalidBinding, high, low, width)
	}
	return nil
}
