package remote

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/pacer"
	"github.com/ZhaoCake/cakeboard/internal/signal"
)

// Command names.
const (
	CommandSet    = "set"
	CommandToggle = "toggle"
	CommandWord   = "word"
	CommandReset  = "reset"
)

// CommandMessage is a command for one device.
// Topic: cakeboard/command/{device_id}
type CommandMessage struct {
	// ID correlates the command in logs. Assigned when empty.
	ID string `json:"id,omitempty"`

	Command string `json:"command"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	On      bool   `json:"on"`
	Value   uint32 `json:"value"`

	// Source names the sender, e.g. "panel" or "script".
	Source string `json:"source,omitempty"`
}

// ParseCommand decodes and validates a command payload.
func ParseCommand(payload []byte) (CommandMessage, error) {
	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return CommandMessage{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	if err := cmd.Validate(); err != nil {
		return CommandMessage{}, err
	}
	return cmd, nil
}

// Validate checks the command name and coordinates. Bounds against the
// device are checked by the device itself.
func (c CommandMessage) Validate() error {
	switch c.Command {
	case CommandSet, CommandToggle:
		if c.Row < 0 || c.Col < 0 {
			return fmt.Errorf("%w: negative cell (%d, %d)", ErrInvalidCommand, c.Row, c.Col)
		}
	case CommandWord:
		if c.Row < 0 {
			return fmt.Errorf("%w: negative row %d", ErrInvalidCommand, c.Row)
		}
	case CommandReset:
	case "":
		return fmt.Errorf("%w: missing command", ErrInvalidCommand)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Command)
	}
	return nil
}

// details returns the fields that matter for c.Command.
func (c CommandMessage) details() map[string]any {
	switch c.Command {
	case CommandSet:
		return map[string]any{"row": c.Row, "col": c.Col, "on": c.On}
	case CommandToggle:
		return map[string]any{"row": c.Row, "col": c.Col}
	case CommandWord:
		return map[string]any{"row": c.Row, "value": c.Value}
	default:
		return nil
	}
}

// Packet converts the command into a signal packet for deviceID.
func (c CommandMessage) Packet(deviceID string) *signal.Packet {
	var payload any
	switch c.Command {
	case CommandSet:
		payload = signal.CellPayload{Row: c.Row, Col: c.Col, On: c.On}
	case CommandToggle:
		payload = signal.TogglePayload{Row: c.Row, Col: c.Col}
	case CommandWord:
		payload = signal.WordPayload{Row: c.Row, Value: c.Value}
	default:
		payload = signal.ResetPayload{}
	}
	return signal.New(deviceID, payload)
}

// StateMessage is the retained state of one device.
// Topic: cakeboard/state/{device_id}
type StateMessage struct {
	DeviceID  string    `json:"device_id"`
	Kind      string    `json:"kind,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Seq       uint64    `json:"seq"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Labels    []string  `json:"labels,omitempty"`

	// Words holds each row packed into an integer, column 0 in bit 0.
	Words []uint32 `json:"words"`
}

// NewStateMessage builds the state message of d in snapshot s.
func NewStateMessage(s *board.Snapshot, d board.DeviceState) StateMessage {
	return StateMessage{
		DeviceID:  d.ID,
		Kind:      string(d.Kind),
		Timestamp: s.Time.UTC(),
		Seq:       s.Seq,
		Rows:      d.Rows,
		Cols:      d.Cols,
		Labels:    d.Labels,
		Words:     slices.Clone(d.Words),
	}
}

// PacerMessage carries pacer measurements.
// Topic: cakeboard/system/pacer
type PacerMessage struct {
	Timestamp time.Time `json:"timestamp"`
	State     string    `json:"state"`
	pacer.Stats
}
