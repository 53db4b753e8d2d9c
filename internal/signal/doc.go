// Package signal carries addressed, timestamped packets between devices.
//
// A Packet names its destination device by id and carries an arbitrary
// payload. Packets are queued on a Bus with Send and delivered in enqueue
// order by Drain, which the board calls once per refresh pass.
//
// Delivery is two-phase: Drain takes the queue as it stands when the pass
// begins. Anything sent while that queue is being delivered, including
// packets sent by a device from inside HandleSignal, waits for the next
// Drain.
//
// Thread Safety:
//   - Send, Len and Clear are safe for concurrent use. Remote transports
//     (MQTT, HTTP, keyboard) enqueue from their own goroutines.
//   - Drain must only be called from the board's loop goroutine.
package signal
