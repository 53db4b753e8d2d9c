package board

import (
	"time"

	"github.com/ZhaoCake/cakeboard/internal/device"
	"github.com/ZhaoCake/cakeboard/internal/pacer"
)

// Snapshot is an immutable view of the board taken after a refresh pass.
type Snapshot struct {
	// Seq increases by one per published snapshot.
	Seq   uint64    `json:"seq"`
	Time  time.Time `json:"time"`
	State string    `json:"state"`

	Pacer   pacer.Stats   `json:"pacer"`
	Devices []DeviceState `json:"devices"`

	// CurrentLED and CurrentSwitch are the ids behind the host accessors.
	CurrentLED    string `json:"current_led,omitempty"`
	CurrentSwitch string `json:"current_switch,omitempty"`
}

// DeviceState is one device's cells at snapshot time.
type DeviceState struct {
	ID     string      `json:"id"`
	Kind   device.Kind `json:"kind,omitempty"`
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Labels []string    `json:"labels,omitempty"`
	Cells  []bool      `json:"cells"`

	// Words holds each row packed into an integer, column 0 in bit 0.
	Words []uint32 `json:"words"`
}

// State returns the cell at (row, col), or false when out of range.
func (d DeviceState) State(row, col int) bool {
	if row < 0 || col < 0 || row >= d.Rows || col >= d.Cols {
		return false
	}
	i := row*d.Cols + col
	return i < len(d.Cells) && d.Cells[i]
}

// Device returns the state of the first device with the given id.
func (s *Snapshot) Device(id string) (DeviceState, bool) {
	if s == nil {
		return DeviceState{}, false
	}
	for _, d := range s.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return DeviceState{}, false
}

// Observer receives every published snapshot on the driving goroutine.
// Implementations must return quickly.
type Observer interface {
	Observe(s *Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s *Snapshot)

// Observe implements Observer.
func (f ObserverFunc) Observe(s *Snapshot) { f(s) }

type kinded interface {
	Kind() device.Kind
}

type labelled interface {
	Config() device.Config
}

func captureDevice(d device.Device) DeviceState {
	ds := DeviceState{ID: d.ID()}
	if k, ok := d.(kinded); ok {
		ds.Kind = k.Kind()
	}
	if l, ok := d.(labelled); ok {
		ds.Labels = append([]string(nil), l.Config().Labels...)
	}
	m, ok := d.(device.Matrix)
	if !ok {
		return ds
	}
	ds.Rows = m.Rows()
	ds.Cols = m.Cols()
	ds.Cells = m.Cells()
	ds.Words = make([]uint32, ds.Rows)
	for r := range ds.Words {
		ds.Words[r] = device.RowWord(m, r)
	}
	return ds
}
