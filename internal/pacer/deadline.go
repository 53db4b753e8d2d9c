package pacer

import (
	"time"

	"github.com/ZhaoCake/cakeboard/internal/design"
)

// Deadline is the fixed-period pacer. Each Tick runs one cycle and then
// sleeps until the next absolute deadline, which advances by exactly one
// clock period per Tick. When the pacer falls more than a refresh period
// behind, the deadline is moved up to now instead of bursting to catch up.
type Deadline struct {
	targetHz int
	cycle    time.Duration
	period   time.Duration
	clock    Clock

	next        time.Time
	lastRefresh time.Time
	windowStart uint64

	cycles     uint64
	refreshes  uint64
	measuredHz float64
}

// NewDeadline creates a deadline pacer. Call Start before the first Tick.
func NewDeadline(targetHz, refreshRate int, clock Clock) (*Deadline, error) {
	if err := checkRates(targetHz, refreshRate); err != nil {
		return nil, err
	}
	return &Deadline{
		targetHz: targetHz,
		cycle:    max(time.Nanosecond, time.Second/time.Duration(targetHz)),
		period:   refreshPeriod(refreshRate),
		clock:    clock.withDefaults(),
	}, nil
}

// Start implements Pacer.
func (p *Deadline) Start(now time.Time) {
	p.next = now
	p.lastRefresh = now
	p.windowStart = 0
	p.cycles = 0
	p.refreshes = 0
	p.measuredHz = 0
}

// Tick implements Pacer.
func (p *Deadline) Tick(d design.Design) bool {
	if d != nil {
		design.Cycle(d)
	}
	p.cycles++
	p.next = p.next.Add(p.cycle)

	now := p.clock.Now()
	switch {
	case now.Before(p.next):
		p.clock.SleepUntil(p.next)
		now = p.clock.Now()
	case now.Sub(p.next) > p.period:
		p.next = now
	}

	elapsed := now.Sub(p.lastRefresh)
	if elapsed < p.period {
		return false
	}
	if us := elapsed.Microseconds(); us > 0 {
		p.measuredHz = float64(p.cycles-p.windowStart) * 1e6 / float64(us)
	}
	p.windowStart = p.cycles
	p.lastRefresh = now
	p.refreshes++
	return true
}

// Stats implements Pacer.
func (p *Deadline) Stats() Stats {
	return Stats{
		Strategy:         StrategyDeadline,
		TargetHz:         p.targetHz,
		StepsPerInterval: 1,
		MeasuredHz:       p.measuredHz,
		Cycles:           p.cycles,
		Refreshes:        p.refreshes,
	}
}
