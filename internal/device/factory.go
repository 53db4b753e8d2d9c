package device

import (
	"fmt"
	"sort"

	"github.com/ZhaoCake/cakeboard/internal/design"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/config"
	"github.com/ZhaoCake/cakeboard/internal/pin"
)

// Bindable is implemented by both variants.
type Bindable interface {
	Device
	Matrix
	Bind(reg *uint32, width, low, high int) error
	BindPins(reg *uint32, pins []int) error
}

// New creates an unbound device of the given kind.
func New(kind Kind, id string, cfg Config) (Bindable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating %s: %w", id, err)
	}
	switch kind {
	case KindLED:
		return NewLED(id, cfg), nil
	case KindSwitch:
		return NewSwitch(id, cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Build creates a device from its configuration and binds each signal to
// the named register in regs.
func Build(spec config.DeviceConfig, regs design.RegisterMap) (Bindable, error) {
	cfg := Config{
		Rows:   spec.Rows,
		Cols:   spec.Cols,
		Labels: append([]string(nil), spec.Labels...),
	}

	type bind struct {
		reg       *uint32
		width     int
		low, high int
		pins      []int
	}
	var binds []bind

	lookup := func(name string) (*uint32, error) {
		if regs == nil {
			return nil, fmt.Errorf("%w: %q (no design)", ErrUnknownRegister, name)
		}
		reg := regs.Register(name)
		if reg == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
		}
		return reg, nil
	}

	for i, s := range spec.Signals {
		switch {
		case len(s.Pins) > 0:
			reg, err := lookup(s.Register)
			if err != nil {
				return nil, fmt.Errorf("device %s signal %d: %w", spec.ID, i, err)
			}
			binds = append(binds, bind{reg: reg, width: len(s.Pins), pins: s.Pins})
			cfg.SignalWidths = append(cfg.SignalWidths, len(s.Pins))

		case len(s.Slices) > 0:
			names := make([]string, 0, len(s.Slices))
			for name := range s.Slices {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				hl := s.Slices[name]
				if len(hl) != 2 {
					return nil, fmt.Errorf("device %s signal %d: %w: slice %v", spec.ID, i, pin.ErrInvalidBinding, hl)
				}
				reg, err := lookup(name)
				if err != nil {
					return nil, fmt.Errorf("device %s signal %d: %w", spec.ID, i, err)
				}
				width := hl[0] - hl[1] + 1
				binds = append(binds, bind{reg: reg, width: width, low: hl[1], high: hl[0]})
				cfg.SignalWidths = append(cfg.SignalWidths, width)
			}

		default:
			reg, err := lookup(s.Register)
			if err != nil {
				return nil, fmt.Errorf("device %s signal %d: %w", spec.ID, i, err)
			}
			width := s.Width
			if width == 0 {
				width = spec.Rows * spec.Cols
			}
			binds = append(binds, bind{reg: reg, width: width, high: pin.Unsliced})
			cfg.SignalWidths = append(cfg.SignalWidths, width)
		}
	}

	d, err := New(Kind(spec.Kind), spec.ID, cfg)
	if err != nil {
		return nil, err
	}

	for _, b := range binds {
		if b.pins != nil {
			err = d.BindPins(b.reg, b.pins)
		} else {
			err = d.Bind(b.reg, b.width, b.low, b.high)
		}
		if err != nil {
			return nil, err
		}
	}

	if sw, ok := d.(*Switch); ok {
		sw.SetEcho(spec.Echo)
	}

	return d, nil
}
