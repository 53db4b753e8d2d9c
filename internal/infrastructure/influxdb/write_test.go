package influxdb

import (
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/ZhaoCake/cakeboard/internal/pacer"
)

func pointTags(p *write.Point) map[string]string {
	tags := make(map[string]string)
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	return tags
}

func pointFields(p *write.Point) map[string]any {
	fields := make(map[string]any)
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	return fields
}

func TestPacerPoint(t *testing.T) {
	at := time.Unix(100, 0)
	p := pacerPoint(pacer.Stats{
		Strategy:         "deadline",
		TargetHz:         1_000_000,
		StepsPerInterval: 16_667,
		MeasuredHz:       999_500.5,
		Cycles:           42,
		Refreshes:        7,
	}, at)

	if p.Name() != MeasurementPacer {
		t.Errorf("Name() = %q, want %q", p.Name(), MeasurementPacer)
	}
	if !p.Time().Equal(at) {
		t.Errorf("Time() = %v, want %v", p.Time(), at)
	}
	if got := pointTags(p)["strategy"]; got != "deadline" {
		t.Errorf("strategy tag = %q, want deadline", got)
	}

	fields := pointFields(p)
	tests := []struct {
		key  string
		want any
	}{
		{"target_hz", int64(1_000_000)},
		{"steps_per_interval", int64(16_667)},
		{"measured_hz", 999_500.5},
		{"cycles", uint64(42)},
		{"refreshes", uint64(7)},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if fields[tt.key] != tt.want {
				t.Errorf("field %s = %v (%T), want %v (%T)", tt.key, fields[tt.key], fields[tt.key], tt.want, tt.want)
			}
		})
	}
}

func TestDeviceWordPoints(t *testing.T) {
	at := time.Unix(200, 0)

	tests := []struct {
		name     string
		kind     string
		words    []uint32
		wantLit  []int64
		wantKind bool
	}{
		{"two rows", "led", []uint32{0x0F, 0x80000001}, []int64{4, 2}, true},
		{"no kind", "", []uint32{0}, []int64{0}, false},
		{"no rows", "switch", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := deviceWordPoints("dev", tt.kind, tt.words, at)
			if len(points) != len(tt.words) {
				t.Fatalf("len(points) = %d, want %d", len(points), len(tt.words))
			}
			for row, p := range points {
				tags := pointTags(p)
				if tags["device_id"] != "dev" {
					t.Errorf("row %d device_id = %q, want dev", row, tags["device_id"])
				}
				if _, ok := tags["kind"]; ok != tt.wantKind {
					t.Errorf("row %d kind tag present = %v, want %v", row, ok, tt.wantKind)
				}
				fields := pointFields(p)
				if fields["word"] != int64(tt.words[row]) {
					t.Errorf("row %d word = %v, want %d", row, fields["word"], tt.words[row])
				}
				if fields["lit"] != tt.wantLit[row] {
					t.Errorf("row %d lit = %v, want %d", row, fields["lit"], tt.wantLit[row])
				}
			}
		})
	}
}
