package board

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultForwardBuffer is the channel depth used when NewForwarder is given
// a non-positive buffer.
const DefaultForwardBuffer = 16

// Forwarder is an Observer that hands snapshots to a worker goroutine.
//
// Observe keeps at most one snapshot per interval, measured on the
// snapshot's own timestamp, and never blocks: when the buffer is full the
// snapshot is dropped and counted. A change of board state is always
// forwarded, displacing the oldest buffered snapshot if needed, so workers
// see the final Stopped snapshot.
type Forwarder struct {
	interval time.Duration
	ch       chan *Snapshot

	// Owned by the driving goroutine.
	last      time.Time
	lastState string

	dropped atomic.Uint64
}

// NewForwarder creates a Forwarder. An interval of zero forwards every
// snapshot.
func NewForwarder(interval time.Duration, buffer int) *Forwarder {
	if buffer <= 0 {
		buffer = DefaultForwardBuffer
	}
	return &Forwarder{
		interval: interval,
		ch:       make(chan *Snapshot, buffer),
	}
}

// Observe implements Observer.
func (f *Forwarder) Observe(s *Snapshot) {
	if s == nil {
		return
	}
	changed := s.State != f.lastState
	if !changed && !f.last.IsZero() && s.Time.Sub(f.last) < f.interval {
		return
	}
	f.last = s.Time
	f.lastState = s.State

	select {
	case f.ch <- s:
		return
	default:
	}
	if !changed {
		f.dropped.Add(1)
		return
	}
	// Make room for the state change by discarding the oldest snapshot.
	select {
	case <-f.ch:
		f.dropped.Add(1)
	default:
	}
	select {
	case f.ch <- s:
	default:
		f.dropped.Add(1)
	}
}

// Snapshots returns the receive side of the hand-off channel.
func (f *Forwarder) Snapshots() <-chan *Snapshot {
	return f.ch
}

// Dropped returns how many snapshots were discarded on a full buffer.
func (f *Forwarder) Dropped() uint64 {
	return f.dropped.Load()
}

// Run calls fn for every forwarded snapshot until ctx is done. Snapshots
// still buffered at that point are delivered before Run returns.
func (f *Forwarder) Run(ctx context.Context, fn func(*Snapshot)) {
	for {
		select {
		case s := <-f.ch:
			fn(s)
		case <-ctx.Done():
			for {
				select {
				case s := <-f.ch:
					fn(s)
				default:
					return
				}
			}
		}
	}
}
