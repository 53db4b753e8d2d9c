package board

import (
	"fmt"
	"sync/atomic"

	"github.com/ZhaoCake/cakeboard/internal/design"
	"github.com/ZhaoCake/cakeboard/internal/device"
	"github.com/ZhaoCake/cakeboard/internal/pacer"
	"github.com/ZhaoCake/cakeboard/internal/signal"
)

// Logger defines the logging interface used by the Board.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// State is the board lifecycle state.
type State int

// Lifecycle states.
const (
	Unconfigured State = iota
	Running
	Stopped
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Board is the orchestrator. See the package documentation for the
// threading rules.
type Board struct {
	registry *device.Registry
	bus      *signal.Bus
	design   design.Design
	logger   Logger

	pacer       pacer.Pacer
	fixedPacer  bool
	strategy    string
	refreshRate int
	clock       pacer.Clock

	observers []Observer

	state          State
	targetHz       int
	resetRemaining int

	led *device.LED
	sw  *device.Switch

	seq    uint64
	latest atomic.Pointer[Snapshot]
}

// Option configures a Board.
type Option func(*Board)

// WithPacer makes the board use p instead of building one in Init.
func WithPacer(p pacer.Pacer) Option {
	return func(b *Board) {
		b.pacer = p
		b.fixedPacer = p != nil
	}
}

// WithStrategy selects the pacer Init builds: pacer.StrategyAdaptive
// (the default) or pacer.StrategyDeadline.
func WithStrategy(name string) Option {
	return func(b *Board) { b.strategy = name }
}

// WithDesign sets the design the pacer clocks.
func WithDesign(d design.Design) Option {
	return func(b *Board) { b.design = d }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRefreshRate sets the refresh passes per second. Non-positive values are ignored.
func WithRefreshRate(n int) Option {
	return func(b *Board) {
		if n > 0 {
			b.refreshRate = n
		}
	}
}

// WithClock sets the wall clock used by the pacer and the bus.
func WithClock(c pacer.Clock) Option {
	return func(b *Board) { b.clock = c }
}

// WithObserver registers an observer for published snapshots.
func WithObserver(o Observer) Option {
	return func(b *Board) {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
}

// New creates an unconfigured board.
func New(opts ...Option) *Board {
	b := &Board{
		registry:    device.NewRegistry(),
		logger:      noopLogger{},
		strategy:    pacer.StrategyAdaptive,
		refreshRate: pacer.DefaultRefreshRate,
		clock:       pacer.SystemClock(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.clock.Now == nil {
		b.clock.Now = pacer.SystemClock().Now
	}
	b.bus = signal.NewBusWithClock(b.clock.Now)
	b.registry.SetLogger(b.logger)
	return b
}

// AddObserver registers an observer. Call it before the driving loop starts.
func (b *Board) AddObserver(o Observer) {
	if o != nil {
		b.observers = append(b.observers, o)
	}
}

// Init starts the board at targetHz.
//
// It returns ErrAlreadyRunning when the board is running and ErrInvalidRate
// when targetHz is not positive. A stopped board may be initialised again.
func (b *Board) Init(targetHz int) error {
	if b.state == Running {
		return ErrAlreadyRunning
	}
	if targetHz <= 0 {
		return fmt.Errorf("%w: %d Hz", ErrInvalidRate, targetHz)
	}

	if !b.fixedPacer {
		p, err := pacer.New(b.strategy, targetHz, b.refreshRate, b.clock)
		if err != nil {
			return fmt.Errorf("building pacer: %w", err)
		}
		b.pacer = p
	}
	b.pacer.Start(b.clock.Now())

	b.targetHz = targetHz
	b.state = Running
	b.logger.Info("board running",
		"target_hz", targetHz,
		"refresh_rate", b.refreshRate,
		"pacer", b.pacer.Stats().Strategy,
		"devices", b.registry.Len(),
	)
	b.publish()
	return nil
}

// Update runs one clock cycle and a refresh pass when one is due.
// It does nothing unless the board is running.
func (b *Board) Update() {
	if b.state != Running {
		return
	}

	due := b.pacer.Tick(b.design)

	if b.resetRemaining > 0 {
		b.resetRemaining--
		if b.resetRemaining == 0 && b.design != nil {
			b.design.SetReset(false)
			b.logger.Debug("design reset released")
		}
	}

	if due {
		b.Refresh()
	}
}

// Refresh drains the bus into the addressed devices, updates every device
// and publishes a snapshot. Packets sent while draining are delivered by
// the next Refresh.
func (b *Board) Refresh() {
	b.bus.Drain(b.dispatch)
	b.registry.Each(func(d device.Device) {
		b.guard(d, "update", d.Update)
	})
	b.publish()
}

func (b *Board) dispatch(p *signal.Packet) {
	d := b.registry.Get(p.DeviceID)
	if d == nil {
		b.logger.Debug("signal dropped, no such device", "device_id", p.DeviceID)
		return
	}
	b.guard(d, "handle_signal", func() { d.HandleSignal(p) })
}

// guard runs fn and logs a panic raised by the device instead of
// propagating it.
func (b *Board) guard(d device.Device, op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("device failed", "device_id", d.ID(), "op", op, "panic", r)
		}
	}()
	fn()
}

// ResetDesign asserts the design's reset for the next cycles calls to
// Update, then releases it. Non-positive cycles release reset immediately.
func (b *Board) ResetDesign(cycles int) {
	if b.design == nil {
		return
	}
	if cycles <= 0 {
		b.resetRemaining = 0
		b.design.SetReset(false)
		return
	}
	b.resetRemaining = cycles
	b.design.SetReset(true)
	b.logger.Debug("design reset asserted", "cycles", cycles)
}

// Quit removes every device and pending packet and releases a pending
// design reset. A running board moves to Stopped; any other state is kept.
// Quit is safe to call more than once.
func (b *Board) Quit() {
	n := b.registry.Len()
	running := b.state == Running
	b.registry.Clear()
	b.bus.Clear()
	b.led = nil
	b.sw = nil
	if b.resetRemaining > 0 && b.design != nil {
		b.design.SetReset(false)
	}
	b.resetRemaining = 0
	if !running && n == 0 {
		return
	}
	if running {
		b.state = Stopped
		b.logger.Info("board stopped", "devices_released", n)
	}
	b.publish()
}

// AddDevice registers d and gives it the bus to emit packets on.
func (b *Board) AddDevice(d device.Device) {
	if d == nil {
		return
	}
	if s, ok := d.(interface{ SetSender(signal.Sender) }); ok {
		s.SetSender(b.bus)
	}
	b.registry.Add(d)
	switch v := d.(type) {
	case *device.LED:
		b.led = v
	case *device.Switch:
		b.sw = v
	}
	b.publish()
}

// RemoveDevice unregisters the first device with the given id.
// It reports whether a device was removed.
func (b *Board) RemoveDevice(id string) bool {
	d := b.registry.Remove(id)
	if d == nil {
		return false
	}
	if d == device.Device(b.led) || d == device.Device(b.sw) {
		b.rescanCurrent()
	}
	b.publish()
	return true
}

// rescanCurrent points the typed side-channels at the last registered
// device of each kind.
func (b *Board) rescanCurrent() {
	b.led, b.sw = nil, nil
	b.registry.Each(func(d device.Device) {
		switch v := d.(type) {
		case *device.LED:
			b.led = v
		case *device.Switch:
			b.sw = v
		}
	})
}

// SendSignal queues p for the next refresh pass. Safe from any goroutine.
func (b *Board) SendSignal(p *signal.Packet) {
	b.bus.Send(p)
}

// Sender returns the board's bus for producers on other goroutines.
func (b *Board) Sender() signal.Sender {
	return b.bus
}

// Device returns the first device with the given id, or nil.
func (b *Board) Device(id string) device.Device {
	return b.registry.Get(id)
}

// Devices returns the registered devices in registration order.
func (b *Board) Devices() []device.Device {
	return b.registry.List()
}

// State returns the lifecycle state.
func (b *Board) State() State {
	return b.state
}

// TargetHz returns the rate passed to the last successful Init.
func (b *Board) TargetHz() int {
	return b.targetHz
}

// PacerStats returns the pacer's measurements, or zero stats before Init.
func (b *Board) PacerStats() pacer.Stats {
	if b.pacer == nil {
		return pacer.Stats{}
	}
	return b.pacer.Stats()
}

// CurrentLED returns the most recently added LED device, or nil.
func (b *Board) CurrentLED() *device.LED {
	return b.led
}

// CurrentSwitch returns the most recently added switch device, or nil.
func (b *Board) CurrentSwitch() *device.Switch {
	return b.sw
}

// Latest returns the last published snapshot, or nil before the first.
// Safe from any goroutine.
func (b *Board) Latest() *Snapshot {
	return b.latest.Load()
}

func (b *Board) publish() {
	b.seq++
	snap := &Snapshot{
		Seq:     b.seq,
		Time:    b.clock.Now(),
		State:   b.state.String(),
		Pacer:   b.PacerStats(),
		Devices: make([]DeviceState, 0, b.registry.Len()),
	}
	b.registry.Each(func(d device.Device) {
		snap.Devices = append(snap.Devices, captureDevice(d))
	})
	if b.led != nil {
		snap.CurrentLED = b.led.ID()
	}
	if b.sw != nil {
		snap.CurrentSwitch = b.sw.ID()
	}
	b.latest.Store(snap)

	for _, o := range b.observers {
		b.notify(o, snap)
	}
}

func (b *Board) notify(o Observer, snap *Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("snapshot observer failed", "panic", r)
		}
	}()
	o.Observe(snap)
}
