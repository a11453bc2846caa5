// serialx/ringbuffer.go

// Single-producer/single-consumer byte rings for the serial driver. Each
// index field has exactly one writer context: the RX ring's head belongs to
// the receive-complete handler and its tail to the foreground reader; the TX
// ring's head belongs to the foreground writer and its tail to the
// transmit-ready handler. The other side only ever reads the field, so no
// lock is needed as long as stores publish after the data they guard.

package serialx

import "go.uber.org/atomic"

// Buffer capacities in bytes. One slot per ring is sacrificed to tell
// "empty" (head == tail) from "full" ((head+1) % size == tail) without a
// separate count field, so usable capacity is size-1.
const (
	rxBufferSize = 256
	txBufferSize = 16
)

// RingBuffer is a fixed-capacity SPSC byte ring addressed by two wrapping
// indices. The zero indices mean empty; the storage is allocated once and
// never resized.
type RingBuffer struct {
	buf  []byte
	head atomic.Uint32 // next slot the producer writes
	tail atomic.Uint32 // next slot the consumer reads
}

func newRingBuffer(size int) *RingBuffer {
	return &RingBuffer{buf: make([]byte, size)}
}

// NewRxBuffer returns a ring sized for the receive path.
func NewRxBuffer() *RingBuffer { return newRingBuffer(rxBufferSize) }

// NewTxBuffer returns a ring sized for the transmit path.
func NewTxBuffer() *RingBuffer { return newRingBuffer(txBufferSize) }

// Size returns the declared capacity of the buffer in bytes. One slot is
// reserved, so at most Size()-1 bytes can be held at once.
func (rb *RingBuffer) Size() int { return len(rb.buf) }

// Used returns how many bytes are currently buffered.
func (rb *RingBuffer) Used() int {
	h := int(rb.head.Load())
	t := int(rb.tail.Load())
	if h >= t {
		return h - t
	}
	return len(rb.buf) - t + h
}

// Free returns how many more bytes Put can accept before the ring is full.
func (rb *RingBuffer) Free() int { return len(rb.buf) - 1 - rb.Used() }

// Put stores a byte at head. If the ring is full it returns false and leaves
// both the contents and head untouched. Producer side only.
func (rb *RingBuffer) Put(val byte) bool {
	h := rb.head.Load()
	next := (h + 1) % uint32(len(rb.buf))
	if next == rb.tail.Load() { // full
		return false
	}
	rb.buf[h] = val     // 1) write data
	rb.head.Store(next) // 2) publish
	return true
}

// Get returns the byte at tail. If the ring is empty it returns (0, false).
// Single attempt, never blocks. Consumer side only.
func (rb *RingBuffer) Get() (byte, bool) {
	t := rb.tail.Load()
	if t == rb.head.Load() { // empty
		return 0, false
	}
	v := rb.buf[t]                               // 1) read current element
	rb.tail.Store((t + 1) % uint32(len(rb.buf))) // 2) publish consumption
	return v, true
}

// Peek returns the byte at tail without consuming it. Consumer side only.
func (rb *RingBuffer) Peek() (byte, bool) {
	t := rb.tail.Load()
	if t == rb.head.Load() {
		return 0, false
	}
	return rb.buf[t], true
}

// Advance consumes the byte at tail after a successful Peek. Splitting the
// two lets the drain handler hand the byte to the hardware before publishing
// the freed slot, so the producer never observes an empty ring while a byte
// is still in flight. Consumer side only.
func (rb *RingBuffer) Advance() {
	t := rb.tail.Load()
	if t == rb.head.Load() {
		return
	}
	rb.tail.Store((t + 1) % uint32(len(rb.buf)))
}

// Clear discards everything buffered by moving tail up to head. It must be
// tail that follows head: if the producer fires between the two accesses the
// stale index would otherwise be written over the live one and the ring could
// appear full instead of empty. Consumer side only.
func (rb *RingBuffer) Clear() {
	rb.tail.Store(rb.head.Load())
}
