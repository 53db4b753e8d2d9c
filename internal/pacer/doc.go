// Package pacer keeps a design's simulated clock in step with wall time.
//
// Two strategies share the Pacer interface:
//
//   - Adaptive runs the design in batches. After each batch it measures
//     the wall time the batch took and rescales the batch so that one
//     batch spans one refresh period. It never runs faster than the
//     target frequency.
//   - Deadline runs one cycle per Tick and sleeps until an absolute
//     deadline advanced by a fixed period.
//
// Both report when a refresh pass is due, at most once per refresh period,
// so expensive device updates keep a fixed cadence whatever the clock rate.
//
// Time is read through a Clock so tests can drive the pacers with a fake.
package pacer
