package pacer

import (
	"fmt"
	"time"

	"github.com/ZhaoCake/cakeboard/internal/design"
)

// Strategy names accepted by New.
const (
	StrategyAdaptive = "adaptive"
	StrategyDeadline = "deadline"
)

// DefaultRefreshRate is the number of refresh passes per second used when
// none is configured.
const DefaultRefreshRate = 60

// Pacer advances a design and decides when devices should be refreshed.
type Pacer interface {
	// Start resets the pacer's measurements to now.
	Start(now time.Time)

	// Tick runs one clock cycle on d (when non-nil) and reports whether a
	// refresh pass is due.
	Tick(d design.Design) bool

	// Stats returns the current measurements.
	Stats() Stats
}

// Stats is a snapshot of pacer measurements.
type Stats struct {
	Strategy string `json:"strategy"`

	// TargetHz is the requested clock frequency.
	TargetHz int `json:"target_hz"`

	// StepsPerInterval is the current batch size. Always at least 1.
	StepsPerInterval int `json:"steps_per_interval"`

	// MeasuredHz is the clock frequency observed over the last measurement.
	MeasuredHz float64 `json:"measured_hz"`

	// Cycles counts clock cycles since Start.
	Cycles uint64 `json:"cycles"`

	// Refreshes counts refresh passes reported due since Start.
	Refreshes uint64 `json:"refreshes"`
}

// Clock is the pacers' view of wall time.
type Clock struct {
	Now        func() time.Time
	SleepUntil func(t time.Time)
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return Clock{
		Now: time.Now,
		SleepUntil: func(t time.Time) {
			if d := time.Until(t); d > 0 {
				time.Sleep(d)
			}
		},
	}
}

// withDefaults fills nil fields from SystemClock.
func (c Clock) withDefaults() Clock {
	sys := SystemClock()
	if c.Now == nil {
		c.Now = sys.Now
	}
	if c.SleepUntil == nil {
		c.SleepUntil = sys.SleepUntil
	}
	return c
}

// New returns the pacer named by strategy.
func New(strategy string, targetHz, refreshRate int, clock Clock) (Pacer, error) {
	switch strategy {
	case StrategyAdaptive, "":
		return NewAdaptive(targetHz, refreshRate, clock)
	case StrategyDeadline:
		return NewDeadline(targetHz, refreshRate, clock)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

func checkRates(targetHz, refreshRate int) error {
	if targetHz <= 0 {
		return fmt.Errorf("%w: target %d Hz", ErrInvalidRate, targetHz)
	}
	if refreshRate <= 0 {
		return fmt.Errorf("%w: refresh %d per second", ErrInvalidRate, refreshRate)
	}
	return nil
}

func refreshPeriod(refreshRate int) time.Duration {
	return time.Second / time.Duration(refreshRate)
}
