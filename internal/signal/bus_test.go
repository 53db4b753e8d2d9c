package signal

import (
	"sync"
	"testing"
	"time"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func TestBus_SendStampsMonotonicMicroseconds(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0), step: 250 * time.Microsecond}
	bus := NewBusWithClock(clk.Now)

	a := New("led", nil)
	b := New("led", nil)
	bus.Send(a)
	bus.Send(b)

	if a.Timestamp != 250 {
		t.Errorf("first timestamp = %d, want 250", a.Timestamp)
	}
	if b.Timestamp != 500 {
		t.Errorf("second timestamp = %d, want 500", b.Timestamp)
	}
}

func TestBus_TimestampsNeverGoBackwards(t *testing.T) {
	clk := &fakeClock{t: time.Unix(10, 0), step: time.Millisecond}
	bus := NewBusWithClock(clk.Now)

	first := New("x", nil)
	bus.Send(first)

	clk.step = -5 * time.Millisecond
	second := New("x", nil)
	bus.Send(second)

	if second.Timestamp < first.Timestamp {
		t.Errorf("timestamp went backwards: %d < %d", second.Timestamp, first.Timestamp)
	}
}

func TestBus_DrainPreservesOrder(t *testing.T) {
	bus := NewBus()
	for _, id := range []string{"a", "b", "c"} {
		bus.Send(New(id, nil))
	}

	var got []string
	n := bus.Drain(func(p *Packet) {
		got = append(got, p.DeviceID)
	})

	if n != 3 {
		t.Errorf("Drain() = %d, want 3", n)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("delivery order = %v, want [a b c]", got)
	}
	if bus.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", bus.Len())
	}
}

func TestBus_SendDuringDrainDefersToNextPass(t *testing.T) {
	bus := NewBus()
	bus.Send(New("ping", nil))

	var firstPass []string
	bus.Drain(func(p *Packet) {
		firstPass = append(firstPass, p.DeviceID)
		if p.DeviceID == "ping" {
			bus.Send(New("pong", nil))
		}
	})

	if len(firstPass) != 1 || firstPass[0] != "ping" {
		t.Fatalf("first pass = %v, want [ping]", firstPass)
	}
	if bus.Len() != 1 {
		t.Fatalf("Len() after first pass = %d, want 1", bus.Len())
	}

	var secondPass []string
	bus.Drain(func(p *Packet) {
		secondPass = append(secondPass, p.DeviceID)
	})
	if len(secondPass) != 1 || secondPass[0] != "pong" {
		t.Errorf("second pass = %v, want [pong]", secondPass)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()
	bus.Send(New("a", nil))
	bus.Send(New("b", nil))
	bus.Clear()

	delivered := bus.Drain(func(*Packet) {
		t.Error("packet delivered after Clear")
	})
	if delivered != 0 {
		t.Errorf("Drain() after Clear = %d, want 0", delivered)
	}
}

func TestBus_SendNilIgnored(t *testing.T) {
	bus := NewBus()
	bus.Send(nil)
	if bus.Len() != 0 {
		t.Errorf("Len() = %d after Send(nil), want 0", bus.Len())
	}
}

func TestBus_ConcurrentSend(t *testing.T) {
	bus := NewBus()
	const senders, perSender = 8, 100

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				bus.Send(New("sw", nil))
			}
		}()
	}
	wg.Wait()

	if n := bus.Drain(func(*Packet) {}); n != senders*perSender {
		t.Errorf("Drain() = %d, want %d", n, senders*perSender)
	}
}
