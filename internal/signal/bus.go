package signal

import (
	"sync"
	"time"
)

// defaultQueueCapacity is the initial pending-queue capacity.
const defaultQueueCapacity = 64

// Bus is the in-process queue of pending packets.
type Bus struct {
	mu      sync.Mutex
	pending []*Packet
	spare   []*Packet
	epoch   time.Time
	last    uint64
	now     func() time.Time
}

// NewBus creates an empty bus whose timestamps count from now.
func NewBus() *Bus {
	return NewBusWithClock(time.Now)
}

// NewBusWithClock creates a bus that reads wall time from now.
// Intended for tests that need deterministic timestamps.
func NewBusWithClock(now func() time.Time) *Bus {
	return &Bus{
		pending: make([]*Packet, 0, defaultQueueCapacity),
		epoch:   now(),
		now:     now,
	}
}

// Send stamps p and appends it to the pending queue. Nil packets are ignored.
func (b *Bus) Send(p *Packet) {
	if p == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ts := uint64(0)
	if d := b.now().Sub(b.epoch); d > 0 {
		ts = uint64(d.Microseconds())
	}
	// Timestamps never run backwards even if the clock source does.
	if ts < b.last {
		ts = b.last
	}
	b.last = ts
	p.Timestamp = ts

	b.pending = append(b.pending, p)
}

// Drain delivers every packet pending at the time of the call, in enqueue
// order, then forgets them. Packets sent while deliver runs are kept for
// the next Drain. It returns the number of packets handed to deliver.
func (b *Bus) Drain(deliver func(p *Packet)) int {
	b.mu.Lock()
	batch := b.pending
	b.pending = b.spare[:0]
	b.mu.Unlock()

	for _, p := range batch {
		deliver(p)
	}

	for i := range batch {
		batch[i] = nil
	}

	b.mu.Lock()
	b.spare = batch[:0]
	b.mu.Unlock()

	return len(batch)
}

// Len returns the number of packets waiting for the next Drain.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Clear discards every pending packet.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.pending {
		b.pending[i] = nil
	}
	b.pending = b.pending[:0]
}
