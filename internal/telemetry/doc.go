// Package telemetry samples board snapshots into a metrics writer.
//
// A Sampler is a board.Observer. It forwards at most one snapshot per
// sample interval to its own goroutine, which writes the pacer
// measurements and the packed row words of every device. The InfluxDB
// client in internal/infrastructure/influxdb satisfies Writer.
package telemetry
