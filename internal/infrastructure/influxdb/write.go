package influxdb

import (
	"math/bits"
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/ZhaoCake/cakeboard/internal/pacer"
)

// Measurement names.
const (
	MeasurementPacer       = "pacer"
	MeasurementDeviceWords = "device_words"
)

// WritePacerStats records one pacer measurement.
func (c *Client) WritePacerStats(stats pacer.Stats, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(pacerPoint(stats, at))
}

// WriteDeviceWords records each row of a device as a packed word. kind may
// be empty.
func (c *Client) WriteDeviceWords(deviceID, kind string, words []uint32, at time.Time) {
	if !c.IsConnected() {
		return
	}
	for _, p := range deviceWordPoints(deviceID, kind, words, at) {
		c.writeAPI.WritePoint(p)
	}
}

// WritePoint writes a custom point.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, at))
}

func pacerPoint(stats pacer.Stats, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementPacer,
		map[string]string{"strategy": stats.Strategy},
		map[string]any{
			"target_hz":          int64(stats.TargetHz),
			"steps_per_interval": int64(stats.StepsPerInterval),
			"measured_hz":        stats.MeasuredHz,
			"cycles":             stats.Cycles,
			"refreshes":          stats.Refreshes,
		},
		at,
	)
}

func deviceWordPoints(deviceID, kind string, words []uint32, at time.Time) []*write.Point {
	points := make([]*write.Point, 0, len(words))
	for row, word := range words {
		tags := map[string]string{
			"device_id": deviceID,
			"row":       strconv.Itoa(row),
		}
		if kind != "" {
			tags["kind"] = kind
		}
		points = append(points, write.NewPoint(
			MeasurementDeviceWords,
			tags,
			map[string]any{
				"word": int64(word),
				"lit":  int64(bits.OnesCount32(word)),
			},
			at,
		))
	}
	return points
}
