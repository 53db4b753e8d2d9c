// Package influxdb writes CakeBoard telemetry to InfluxDB 2.x.
//
// It wraps github.com/influxdata/influxdb-client-go/v2 with connection
// management, a health check and typed writers for the two measurements
// the board produces:
//
//	pacer         tags: strategy
//	              fields: target_hz, steps_per_interval, measured_hz, cycles, refreshes
//	device_words  tags: device_id, kind, row
//	              fields: word, lit
//
// Writes are non-blocking and batched (influxdb.batch_size,
// influxdb.flush_interval). Async write failures are reported through the
// callback set with SetOnError.
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WritePacerStats(b.PacerStats(), time.Now())
package influxdb
