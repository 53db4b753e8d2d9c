package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/ZhaoCake/cakeboard/internal/audit"
	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/mqtt"
	"github.com/ZhaoCake/cakeboard/internal/signal"
)

const auditTimeout = 2 * time.Second

// Broker is the part of mqtt.Client the bridge needs.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	HasSubscription(topic string) bool
	HealthCheck(ctx context.Context) error
}

// Logger is the subset of logging.Logger the bridge uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Bridge.
type Options struct {
	Broker Broker
	Sender signal.Sender

	// QoS is used for subscriptions and publishes.
	QoS byte

	// Interval is the minimum gap between state publishes.
	Interval time.Duration

	Logger Logger

	// Audit, when set, records every accepted command.
	Audit audit.Repository
}

// Metrics counts bridge traffic.
type Metrics struct {
	CommandsReceived uint64 `json:"commands_received"`
	CommandsRejected uint64 `json:"commands_rejected"`
	StatesPublished  uint64 `json:"states_published"`
	PublishErrors    uint64 `json:"publish_errors"`
	SnapshotsDropped uint64 `json:"snapshots_dropped"`
}

// Bridge connects the signal bus and the snapshot stream to a broker.
type Bridge struct {
	*board.Forwarder

	broker Broker
	sender signal.Sender
	qos    byte
	logger Logger
	audit  audit.Repository
	topics mqtt.Topics

	// Owned by the Run goroutine.
	published map[string][]uint32

	commandsReceived atomic.Uint64
	commandsRejected atomic.Uint64
	statesPublished  atomic.Uint64
	publishErrors    atomic.Uint64
}

// NewBridge creates a bridge. Call Start to subscribe and Run to publish.
func NewBridge(opts Options) (*Bridge, error) {
	if opts.Broker == nil {
		return nil, fmt.Errorf("MQTT broker is required")
	}
	if opts.Sender == nil {
		return nil, fmt.Errorf("signal sender is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Bridge{
		Forwarder: board.NewForwarder(opts.Interval, 0),
		broker:    opts.Broker,
		sender:    opts.Sender,
		qos:       opts.QoS,
		logger:    logger,
		audit:     opts.Audit,
		published: make(map[string][]uint32),
	}, nil
}

// Start subscribes to every device command topic.
func (b *Bridge) Start() error {
	topic := b.topics.AllDeviceCommands()
	if err := b.broker.Subscribe(topic, b.qos, b.handleCommand); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logger.Info("remote bridge subscribed", "topic", topic)
	return nil
}

// Stop unsubscribes from the command topics.
func (b *Bridge) Stop() error {
	if err := b.broker.Unsubscribe(b.topics.AllDeviceCommands()); err != nil {
		return fmt.Errorf("unsubscribe from commands: %w", err)
	}
	return nil
}

// HealthCheck reports the broker's health and ErrNotSubscribed when the
// command subscription is missing.
func (b *Bridge) HealthCheck(ctx context.Context) error {
	if err := b.broker.HealthCheck(ctx); err != nil {
		return err
	}
	if !b.broker.HasSubscription(b.topics.AllDeviceCommands()) {
		return ErrNotSubscribed
	}
	return nil
}

// Run publishes forwarded snapshots until ctx is done.
func (b *Bridge) Run(ctx context.Context) {
	b.Forwarder.Run(ctx, b.publishSnapshot)
}

// handleCommand is the MQTT handler for cakeboard/command/+.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	b.commandsReceived.Add(1)

	deviceID, ok := b.topics.CommandDeviceID(topic)
	if !ok {
		b.commandsRejected.Add(1)
		return fmt.Errorf("%w: topic %q", ErrInvalidCommand, topic)
	}

	cmd, err := ParseCommand(payload)
	if err != nil {
		b.commandsRejected.Add(1)
		return fmt.Errorf("device %s: %w", deviceID, err)
	}

	b.sender.Send(cmd.Packet(deviceID))
	b.logger.Debug("remote command queued",
		"command_id", cmd.ID,
		"device_id", deviceID,
		"command", cmd.Command,
		"source", cmd.Source)
	b.record(deviceID, cmd)
	return nil
}

func (b *Bridge) record(deviceID string, cmd CommandMessage) {
	if b.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	err := b.audit.Create(ctx, &audit.Entry{
		ID:       cmd.ID,
		Command:  cmd.Command,
		DeviceID: deviceID,
		Subject:  cmd.Source,
		Source:   audit.SourceMQTT,
		Details:  cmd.details(),
	})
	if err != nil {
		b.logger.Warn("recording remote command failed", "command_id", cmd.ID, "error", err)
	}
}

func (b *Bridge) publishSnapshot(s *board.Snapshot) {
	live := make(map[string]bool, len(s.Devices))
	for _, d := range s.Devices {
		live[d.ID] = true
		if prev, ok := b.published[d.ID]; ok && slices.Equal(prev, d.Words) {
			continue
		}
		if err := b.publishJSON(b.topics.DeviceState(d.ID), NewStateMessage(s, d), true); err != nil {
			b.logger.Warn("state publish failed", "device_id", d.ID, "error", err)
			continue
		}
		b.published[d.ID] = slices.Clone(d.Words)
		b.statesPublished.Add(1)
	}

	// Clear retained state of devices that left the board.
	for id := range b.published {
		if live[id] {
			continue
		}
		if err := b.broker.Publish(b.topics.DeviceState(id), nil, b.qos, true); err != nil {
			b.publishErrors.Add(1)
			b.logger.Warn("retained state clear failed", "device_id", id, "error", err)
			continue
		}
		delete(b.published, id)
	}

	msg := PacerMessage{Timestamp: s.Time.UTC(), State: s.State, Stats: s.Pacer}
	if err := b.publishJSON(b.topics.PacerStats(), msg, false); err != nil {
		b.logger.Debug("pacer publish failed", "error", err)
	}
}

func (b *Bridge) publishJSON(topic string, v any, retained bool) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}
	if err := b.broker.Publish(topic, payload, b.qos, retained); err != nil {
		b.publishErrors.Add(1)
		return err
	}
	return nil
}

// Metrics returns the traffic counters.
func (b *Bridge) Metrics() Metrics {
	return Metrics{
		CommandsReceived: b.commandsReceived.Load(),
		CommandsRejected: b.commandsRejected.Load(),
		StatesPublished:  b.statesPublished.Load(),
		PublishErrors:    b.publishErrors.Load(),
		SnapshotsDropped: b.Dropped(),
	}
}

// IsRejection reports whether err came from a malformed or unknown command.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidCommand) || errors.Is(err, ErrUnknownCommand)
}
