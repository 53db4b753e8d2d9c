// CakeBoard emulates the peripherals of an FPGA trainer board around a
// simulated design: LED matrices driven by design registers and switch
// banks that feed them.
//
// The board runs on the main goroutine. Remote panels (MQTT, HTTP and
// WebSocket, the terminal) and recorders (InfluxDB telemetry, SQLite
// trace) observe snapshots and queue signals without touching it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ZhaoCake/cakeboard/internal/api"
	"github.com/ZhaoCake/cakeboard/internal/audit"
	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/design"
	"github.com/ZhaoCake/cakeboard/internal/device"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/config"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/influxdb"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/logging"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/mqtt"
	"github.com/ZhaoCake/cakeboard/internal/panel"
	"github.com/ZhaoCake/cakeboard/internal/remote"
	"github.com/ZhaoCake/cakeboard/internal/telemetry"
	"github.com/ZhaoCake/cakeboard/internal/trace"
)

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	handled, err := runSubcommand(ctx, os.Args[1:])
	if !handled {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runSubcommand runs a tool subcommand. It reports false when args name
// none, meaning the board should run.
func runSubcommand(ctx context.Context, args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "token":
		return true, runToken(args[1:], os.Stdout)
	case "migrate":
		return true, runMigrate(ctx, args[1:], os.Stdout)
	}
	return false, nil
}

// loadConfig reads the config file, falling back to the built-in board
// when the file does not exist.
func loadConfig(path string, log *logging.Logger) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("config file not found, using built-in board", "path", path)
		cfg = config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validating config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", path)
	return cfg, nil
}

// app holds everything that must be torn down when run returns.
type app struct {
	log *logging.Logger

	// Workers run on workCtx so they can drain the final Stopped snapshot
	// after the board quits, independently of the signal context.
	workCtx     context.Context
	stopWorkers context.CancelFunc
	workers     sync.WaitGroup

	closers []func()
}

func (a *app) goWorker(name string, fn func(ctx context.Context)) {
	a.workers.Add(1)
	go func() {
		defer a.workers.Done()
		fn(a.workCtx)
		a.log.Debug("worker stopped", "worker", name)
	}()
}

func (a *app) onClose(name string, fn func() error) {
	a.closers = append(a.closers, func() {
		a.log.Info("closing " + name)
		if err := fn(); err != nil {
			a.log.Error("error closing "+name, "error", err)
		}
	})
}

func (a *app) shutdown() {
	a.stopWorkers()
	a.workers.Wait()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting cakeboard",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := loadConfig(config.Path(), log)
	if err != nil {
		return err
	}

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	a := &app{log: log}
	a.workCtx, a.stopWorkers = context.WithCancel(context.Background())
	defer a.shutdown()

	counter := design.NewCounter(cfg.Board.CounterShift)
	b := board.New(
		board.WithDesign(counter),
		board.WithLogger(log),
		board.WithRefreshRate(cfg.Board.RefreshRate),
		board.WithStrategy(cfg.Board.Pacer),
	)
	// Runs before a.shutdown so workers still see the final snapshot.
	defer b.Quit()
	if err := addDevices(b, cfg.Devices, counter); err != nil {
		return err
	}
	log.Info("devices attached", "count", len(cfg.Devices))

	if err := startServices(ctx, a, cfg, b); err != nil {
		return err
	}

	board.Install(b)
	defer board.Uninstall()

	b.ResetDesign(cfg.Board.ResetCycles)
	if err := b.Init(cfg.Board.TargetHz); err != nil {
		return fmt.Errorf("starting board: %w", err)
	}

	loopErr := drive(ctx, b)
	if loopErr != nil {
		log.Error("board loop failed", "error", loopErr)
	} else {
		log.Info("shutdown signal received, cleaning up")
	}
	b.Quit()

	stats := b.PacerStats()
	log.Info("cakeboard stopped",
		"cycles", stats.Cycles,
		"refreshes", stats.Refreshes,
		"measured_hz", stats.MeasuredHz,
	)
	return loopErr
}

func addDevices(b *board.Board, specs []config.DeviceConfig, regs design.RegisterMap) error {
	for _, spec := range specs {
		d, err := device.Build(spec, regs)
		if err != nil {
			return fmt.Errorf("building device %q: %w", spec.ID, err)
		}
		b.AddDevice(d)
	}
	return nil
}

// drive runs the board until ctx is cancelled. A panic in the loop is
// returned as an error so the caller can still quit the board.
func drive(ctx context.Context, b *board.Board) (err error) {
	var stop atomic.Bool
	release := context.AfterFunc(ctx, func() { stop.Store(true) })
	defer release()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("board loop panic: %v", r)
		}
	}()

	for !stop.Load() {
		b.Update()
	}
	return nil
}

func startServices(ctx context.Context, a *app, cfg *config.Config, b *board.Board) error {
	log := a.log

	// The command log shares the trace database.
	var (
		traces   api.TraceReader
		commands audit.Repository
		checks   = make(map[string]api.HealthChecker)
	)
	if cfg.Trace.Enabled {
		rec, err := trace.Open(ctx, cfg.Trace, version)
		if err != nil {
			return fmt.Errorf("opening trace: %w", err)
		}
		a.onClose("trace", rec.Close)
		rec.SetLogger(log)
		b.AddObserver(rec)
		a.goWorker("trace", rec.Run)
		traces = rec
		commands = audit.NewSQLiteRepository(rec.DB().DB)
		checks["trace"] = rec.DB()
		log.Info("session trace enabled", "path", cfg.Trace.Path)
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		a.onClose("MQTT", client.Close)
		checks["mqtt"] = client
		client.SetLogger(log)
		client.SetOnConnect(func() { log.Info("MQTT connected") })
		client.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })

		bridge, err := remote.NewBridge(remote.Options{
			Broker:   client,
			Sender:   b.Sender(),
			QoS:      byte(cfg.MQTT.QoS),
			Interval: millis(cfg.MQTT.PublishInterval),
			Logger:   log,
			Audit:    commands,
		})
		if err != nil {
			return fmt.Errorf("creating remote bridge: %w", err)
		}
		if err := bridge.Start(); err != nil {
			return fmt.Errorf("starting remote bridge: %w", err)
		}
		a.onClose("remote bridge", bridge.Stop)
		checks["remote"] = bridge
		b.AddObserver(bridge)
		a.goWorker("remote bridge", bridge.Run)
		log.Info("MQTT remote panel enabled",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", client.ClientID(),
		)
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		a.onClose("InfluxDB", client.Close)
		checks["influxdb"] = client
		client.SetOnError(func(err error) { log.Error("InfluxDB write error", "error", err) })

		sampler := telemetry.NewSampler(client, millis(cfg.InfluxDB.SampleInterval))
		sampler.SetLogger(log)
		b.AddObserver(sampler)
		a.goWorker("telemetry", sampler.Run)
		log.Info("InfluxDB telemetry enabled", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if len(checks) > 0 {
		log.Info("all health checks passed", "components", len(checks))
	}

	if cfg.API.Enabled {
		srv, err := api.New(api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log,
			Board:   b,
			Trace:   traces,
			Audit:   commands,
			Checks:  checks,
			Version: version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		b.AddObserver(srv.Hub())
		if err := srv.Start(a.workCtx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
		a.onClose("API server", srv.Close)
	}

	if cfg.Panel.Enabled {
		startPanel(ctx, a, cfg.Panel, b)
	}
	return nil
}

// healthCheck verifies every connected component, in a fixed order so the
// first failure reported is stable.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	for _, name := range []string{"trace", "mqtt", "remote", "influxdb"} {
		c, ok := checks[name]
		if !ok {
			continue
		}
		if err := c.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func startPanel(ctx context.Context, a *app, cfg config.PanelConfig, b *board.Board) {
	p := panel.New(cfg, os.Stdout)
	p.SetLogger(a.log)

	if cfg.Keyboard {
		term, err := panel.OpenTerminal(os.Stdin, os.Stdout)
		if err != nil {
			a.log.Warn("keyboard input disabled", "error", err)
		} else {
			a.onClose("terminal", term.Restore)
			p.SetWidth(term.Width)
			kb := panel.NewKeyboard(b.Sender(), b.Latest)
			go func() {
				err := term.ReadKeys(ctx, func(k byte) { kb.HandleKey(k) })
				if err != nil {
					a.log.Debug("keyboard input stopped", "error", err)
				}
			}()
		}
	}

	b.AddObserver(p)
	a.goWorker("panel", p.Run)
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
