package pacer

import (
	"errors"
	"testing"
	"time"

	"github.com/ZhaoCake/cakeboard/internal/design"
)

// fakeClock is a manually driven Clock. When advanceOnSleep is set,
// SleepUntil moves the clock forward to the deadline.
type fakeClock struct {
	t              time.Time
	sleeps         int
	advanceOnSleep bool
}

func newFakeClock(advanceOnSleep bool) *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0), advanceOnSleep: advanceOnSleep}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) SleepUntil(t time.Time) {
	c.sleeps++
	if c.advanceOnSleep && t.After(c.t) {
		c.t = t
	}
}

func (c *fakeClock) Clock() Clock {
	return Clock{Now: c.Now, SleepUntil: c.SleepUntil}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		targetHz int
		refresh  int
		wantErr  error
		want     string
	}{
		{"adaptive", StrategyAdaptive, 1000, 60, nil, StrategyAdaptive},
		{"default is adaptive", "", 1000, 60, nil, StrategyAdaptive},
		{"deadline", StrategyDeadline, 1000, 60, nil, StrategyDeadline},
		{"unknown", "turbo", 1000, 60, ErrUnknownStrategy, ""},
		{"zero target", StrategyAdaptive, 0, 60, ErrInvalidRate, ""},
		{"zero refresh", StrategyDeadline, 1000, 0, ErrInvalidRate, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.strategy, tt.targetHz, tt.refresh, Clock{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := p.Stats().Strategy; got != tt.want {
				t.Errorf("Stats().Strategy = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdaptive_StartSizesFirstBatch(t *testing.T) {
	tests := []struct {
		targetHz, refresh, want int
	}{
		{6000, 60, 100},
		{100_000_000, 60, 1_666_666},
		{30, 60, 1},
		{1, 1000, 1},
	}
	for _, tt := range tests {
		a, err := NewAdaptive(tt.targetHz, tt.refresh, Clock{})
		if err != nil {
			t.Fatalf("NewAdaptive(%d, %d) error = %v", tt.targetHz, tt.refresh, err)
		}
		a.Start(time.Now())
		if got := a.Stats().StepsPerInterval; got != tt.want {
			t.Errorf("NewAdaptive(%d, %d) steps = %d, want %d", tt.targetHz, tt.refresh, got, tt.want)
		}
	}
}

func TestAdaptive_ZeroElapsedSkipsMeasurement(t *testing.T) {
	clk := newFakeClock(false)
	a, err := NewAdaptive(600, 60, clk.Clock())
	if err != nil {
		t.Fatalf("NewAdaptive() error = %v", err)
	}
	a.Start(clk.Now())

	for i := 0; i < 100; i++ {
		if a.Tick(nil) {
			t.Fatalf("Tick %d reported refresh due with no elapsed time", i)
		}
		if got := a.Stats().StepsPerInterval; got != 10 {
			t.Fatalf("Tick %d: steps = %d, want unchanged 10", i, got)
		}
	}

	// Once time moves, the skipped measurement is taken.
	clk.t = clk.t.Add(50 * time.Millisecond)
	if !a.Tick(nil) {
		t.Error("Tick after elapsed time did not report refresh due")
	}
	if got := a.Stats().StepsPerInterval; got == 10 {
		t.Error("steps unchanged after a non-zero measurement")
	}
}

func TestAdaptive_RescalesBatch(t *testing.T) {
	clk := newFakeClock(false)
	a, err := NewAdaptive(600, 60, clk.Clock())
	if err != nil {
		t.Fatalf("NewAdaptive() error = %v", err)
	}
	a.Start(clk.Now())

	for i := 0; i < 10; i++ {
		if a.Tick(nil) {
			t.Fatalf("Tick %d reported due inside the batch", i)
		}
	}

	// 11 cycles took 50ms: slower than one refresh period.
	clk.t = clk.t.Add(50 * time.Millisecond)
	if !a.Tick(nil) {
		t.Fatal("measurement Tick did not report refresh due")
	}

	st := a.Stats()
	// round(10 * 1e6 / (50000 * 60)) = round(3.33) = 3
	if st.StepsPerInterval != 3 {
		t.Errorf("steps = %d, want 3", st.StepsPerInterval)
	}
	if st.MeasuredHz != 220 {
		t.Errorf("MeasuredHz = %v, want 220", st.MeasuredHz)
	}
	if st.Cycles != 11 || st.Refreshes != 1 {
		t.Errorf("Cycles/Refreshes = %d/%d, want 11/1", st.Cycles, st.Refreshes)
	}
	if clk.sleeps != 0 {
		t.Errorf("slept %d times on a slow batch, want 0", clk.sleeps)
	}
}

func TestAdaptive_StepsNeverBelowOne(t *testing.T) {
	clk := newFakeClock(false)
	a, err := NewAdaptive(600, 60, clk.Clock())
	if err != nil {
		t.Fatalf("NewAdaptive() error = %v", err)
	}
	a.Start(clk.Now())

	elapsed := []time.Duration{
		10 * time.Second,
		time.Hour,
		time.Microsecond,
		0,
		500 * time.Millisecond,
	}
	for _, step := range elapsed {
		clk.t = clk.t.Add(step)
		for i := 0; i < 20; i++ {
			a.Tick(nil)
			if got := a.Stats().StepsPerInterval; got < 1 {
				t.Fatalf("steps = %d after elapsed %v, want >= 1", got, step)
			}
		}
	}
}

func TestAdaptive_ThrottlesToTarget(t *testing.T) {
	clk := newFakeClock(true)
	start := clk.Now()
	a, err := NewAdaptive(600, 60, clk.Clock())
	if err != nil {
		t.Fatalf("NewAdaptive() error = %v", err)
	}
	a.Start(start)

	for i := 0; i < 11; i++ {
		a.Tick(nil)
	}

	if clk.sleeps != 1 {
		t.Fatalf("sleeps = %d, want 1", clk.sleeps)
	}
	// 11 cycles at 600 Hz is 18.333ms.
	if got := clk.t.Sub(start); got < 18*time.Millisecond || got > 19*time.Millisecond {
		t.Errorf("slept until +%v, want about 18.3ms", got)
	}
	if got := a.Stats().MeasuredHz; got < 599 || got > 601 {
		t.Errorf("MeasuredHz = %v, want about 600", got)
	}
}

func TestAdaptive_CyclesDesign(t *testing.T) {
	clk := newFakeClock(true)
	a, err := NewAdaptive(1000, 10, clk.Clock())
	if err != nil {
		t.Fatalf("NewAdaptive() error = %v", err)
	}
	a.Start(clk.Now())

	counter := design.NewCounter(0)
	for i := 0; i < 250; i++ {
		a.Tick(counter)
	}

	if counter.Cycles() != 250 {
		t.Errorf("counter cycles = %d, want 250", counter.Cycles())
	}
	if a.Stats().Cycles != 250 {
		t.Errorf("Stats().Cycles = %d, want 250", a.Stats().Cycles)
	}
}

func TestDeadline_SleepsToAccumulatedDeadline(t *testing.T) {
	clk := newFakeClock(true)
	start := clk.Now()
	p, err := NewDeadline(1000, 10, clk.Clock())
	if err != nil {
		t.Fatalf("NewDeadline() error = %v", err)
	}
	p.Start(start)

	for i := 1; i < 100; i++ {
		if p.Tick(nil) {
			t.Fatalf("Tick %d reported due before one refresh period", i)
		}
	}
	if !p.Tick(nil) {
		t.Fatal("Tick 100 did not report refresh due")
	}

	if got := clk.t.Sub(start); got != 100*time.Millisecond {
		t.Errorf("clock at +%v, want +100ms", got)
	}
	if clk.sleeps != 100 {
		t.Errorf("sleeps = %d, want 100", clk.sleeps)
	}

	st := p.Stats()
	if st.StepsPerInterval != 1 {
		t.Errorf("StepsPerInterval = %d, want 1", st.StepsPerInterval)
	}
	if st.MeasuredHz != 1000 {
		t.Errorf("MeasuredHz = %v, want 1000", st.MeasuredHz)
	}
	if st.Refreshes != 1 {
		t.Errorf("Refreshes = %d, want 1", st.Refreshes)
	}
}

func TestDeadline_StallResetsDeadline(t *testing.T) {
	clk := newFakeClock(true)
	start := clk.Now()
	p, err := NewDeadline(1000, 10, clk.Clock())
	if err != nil {
		t.Fatalf("NewDeadline() error = %v", err)
	}
	p.Start(start)

	clk.t = start.Add(time.Second)
	p.Tick(nil)
	if clk.sleeps != 0 {
		t.Fatalf("sleeps = %d after a stall, want 0", clk.sleeps)
	}

	// The next deadline is one period after the stall, not a burst behind.
	p.Tick(nil)
	if clk.sleeps != 1 {
		t.Errorf("sleeps = %d, want 1", clk.sleeps)
	}
	if got := clk.t.Sub(start); got != time.Second+time.Millisecond {
		t.Errorf("clock at +%v, want +1.001s", got)
	}
}

func TestDeadline_SmallLagCatchesUp(t *testing.T) {
	clk := newFakeClock(true)
	start := clk.Now()
	p, err := NewDeadline(1000, 10, clk.Clock())
	if err != nil {
		t.Fatalf("NewDeadline() error = %v", err)
	}
	p.Start(start)

	// 5ms behind is within one refresh period: run without sleeping.
	clk.t = start.Add(5 * time.Millisecond)
	for i := 0; i < 5; i++ {
		p.Tick(nil)
	}
	if clk.sleeps != 0 {
		t.Errorf("sleeps = %d while catching up, want 0", clk.sleeps)
	}
	p.Tick(nil)
	if clk.sleeps != 1 {
		t.Errorf("sleeps = %d once caught up, want 1", clk.sleeps)
	}
}

func TestDeadline_HighRateKeepsPositivePeriod(t *testing.T) {
	p, err := NewDeadline(2_000_000_000, 60, Clock{})
	if err != nil {
		t.Fatalf("NewDeadline() error = %v", err)
	}
	if p.cycle <= 0 {
		t.Errorf("cycle period = %v, want > 0", p.cycle)
	}
}
