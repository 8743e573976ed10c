// services/keypad/internal/eventq/queue.go
package eventq

import (
	"sync/atomic"

	"keymatrix-go/types"
	"keymatrix-go/x/critical"
)

// Queue is a fixed-capacity FIFO of encoded key events.
//
// One producer (the matrix scanner) appends; one consumer (the bus
// responder) takes everything at once. Both paths may preempt each other, so
// every index change happens inside a critical section and the index itself is
// atomic so neither side works from a stale copy.
type Queue struct {
	buf   []byte
	wr    atomic.Uint32 // bytes buffered; never exceeds len(buf)
	drops atomic.Uint32 // events rejected for lack of space
}

// New allocates a queue holding capacity bytes (capacity/2 events).
func New(capacity int) *Queue {
	if capacity < types.EventBytes {
		panic("eventq: capacity must hold at least one event")
	}
	return &Queue{buf: make([]byte, capacity)}
}

// Push appends ev if both of its bytes fit. Otherwise the event is dropped
// whole, the buffered bytes are left as they were and false is returned.
func (q *Queue) Push(ev types.KeyEvent) bool {
	enc := ev.Encode()
	s := critical.Enter()
	wr := q.wr.Load()
	if int(wr)+types.EventBytes > len(q.buf) {
		critical.Exit(s)
		q.drops.Add(1)
		return false
	}
	q.buf[wr] = enc[0]
	q.buf[wr+1] = enc[1]
	q.wr.Store(wr + types.EventBytes)
	critical.Exit(s)
	return true
}

// Drain copies every buffered byte into dst in FIFO order and empties the
// queue, as one step relative to Push. dst should be at least Cap() bytes;
// bytes that do not fit are discarded with the rest.
func (q *Queue) Drain(dst []byte) int {
	s := critical.Enter()
	n := copy(dst, q.buf[:q.wr.Load()])
	q.wr.Store(0)
	critical.Exit(s)
	return n
}

// Len returns the number of buffered bytes.
func (q *Queue) Len() int { return int(q.wr.Load()) }

// Cap returns the capacity in bytes.
func (q *Queue) Cap() int { return len(q.buf) }

// Free returns the number of unused bytes.
func (q *Queue) Free() int { return len(q.buf) - q.Len() }

// Drops returns how many events were rejected since construction.
func (q *Queue) Drops() uint32 { return q.drops.Load() }
