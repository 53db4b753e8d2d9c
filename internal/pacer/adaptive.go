package pacer

import (
	"math"
	"time"

	"github.com/ZhaoCake/cakeboard/internal/design"
)

// Adaptive is the batch pacer.
//
// A batch of StepsPerInterval cycles runs back to back. When the batch is
// exhausted the pacer measures the wall time it took and sets
//
//	steps = max(1, round(steps * 1e6 / (elapsed_us * refreshRate)))
//
// so the next batch spans roughly one refresh period. A zero elapsed
// measurement is skipped and retried on the next Tick with the batch size
// unchanged. A batch that finished early sleeps out its share of wall time
// at the target frequency first.
type Adaptive struct {
	targetHz    int
	refreshRate int
	period      time.Duration
	clock       Clock

	steps       int
	remaining   int
	batch       int
	lastMeasure time.Time
	lastRefresh time.Time

	cycles     uint64
	refreshes  uint64
	measuredHz float64
}

// NewAdaptive creates an adaptive pacer. Call Start before the first Tick.
func NewAdaptive(targetHz, refreshRate int, clock Clock) (*Adaptive, error) {
	if err := checkRates(targetHz, refreshRate); err != nil {
		return nil, err
	}
	return &Adaptive{
		targetHz:    targetHz,
		refreshRate: refreshRate,
		period:      refreshPeriod(refreshRate),
		clock:       clock.withDefaults(),
	}, nil
}

// Start implements Pacer.
func (a *Adaptive) Start(now time.Time) {
	a.steps = max(1, a.targetHz/a.refreshRate)
	a.remaining = a.steps
	a.batch = 0
	a.lastMeasure = now
	a.lastRefresh = now
	a.cycles = 0
	a.refreshes = 0
	a.measuredHz = 0
}

// Tick implements Pacer.
func (a *Adaptive) Tick(d design.Design) bool {
	if d != nil {
		design.Cycle(d)
	}
	a.cycles++
	a.batch++
	a.remaining--
	if a.remaining >= 0 {
		return false
	}

	now := a.clock.Now()
	if ahead := a.lastMeasure.Add(a.batchDuration()); now.Before(ahead) {
		a.clock.SleepUntil(ahead)
		now = a.clock.Now()
	}

	elapsed := now.Sub(a.lastMeasure).Microseconds()
	if elapsed <= 0 {
		return false
	}

	a.measuredHz = float64(a.batch) * 1e6 / float64(elapsed)
	next := math.Round(float64(a.steps) * 1e6 / (float64(elapsed) * float64(a.refreshRate)))
	if next > math.MaxInt32 {
		next = math.MaxInt32
	}
	a.steps = max(1, int(next))
	a.remaining = a.steps
	a.batch = 0
	a.lastMeasure = now

	if now.Sub(a.lastRefresh) < a.period {
		return false
	}
	a.lastRefresh = now
	a.refreshes++
	return true
}

// batchDuration is the wall time the current batch should take at the
// target frequency.
func (a *Adaptive) batchDuration() time.Duration {
	return time.Duration(float64(a.batch) * float64(time.Second) / float64(a.targetHz))
}

// Stats implements Pacer.
func (a *Adaptive) Stats() Stats {
	return Stats{
		Strategy:         StrategyAdaptive,
		TargetHz:         a.targetHz,
		StepsPerInterval: a.steps,
		MeasuredHz:       a.measuredHz,
		Cycles:           a.cycles,
		Refreshes:        a.refreshes,
	}
}
