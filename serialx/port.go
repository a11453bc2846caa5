// serialx/port.go

// Package serialx is an interrupt-driven byte serial driver built around a
// pair of SPSC ring buffers. Inbound bytes are queued by the receive-complete
// event and consumed by the foreground; outbound bytes are queued by the
// foreground and drained one per transmit-ready event while the event source
// is armed. The only blocking point is WriteByte on a full transmit ring,
// which busy-waits until the drain side frees a slot.
package serialx

import (
	"context"
	"errors"
	"time"
)

// ErrBufferEmpty is returned by ReadByte when no data is buffered. Callers
// polling the non-blocking surface should check Available first.
var ErrBufferEmpty = errors.New("serial buffer empty")

// Port is a single serial port instance owning both rings. Construct once at
// startup; there is no teardown beyond Close, and Reset is the only exposed
// lifecycle operation.
//
// Invariants (TX path):
//   - The foreground writes the data register only on the fast path, when the
//     TX ring is empty and the register is ready.
//   - The transmit-ready event source is armed exactly while the TX ring is
//     non-empty: WriteByte arms only after the byte is stored and published,
//     and TransmitReady disarms the moment the ring drains.
type Port struct {
	dev Device

	rx *RingBuffer // filled by Receive, drained by ReadByte
	tx *RingBuffer // filled by WriteByte, drained by TransmitReady

	notify   chan struct{} // coalesced RX readiness notifications
	txNotify chan struct{} // coalesced TX progress notifications

	baud  uint32
	stats Stats
}

// NewPort returns a Port driving dev and registers itself as the device's
// event handler.
func NewPort(dev Device) *Port {
	p := &Port{
		dev:      dev,
		rx:       NewRxBuffer(),
		tx:       NewTxBuffer(),
		notify:   make(chan struct{}, 1),
		txNotify: make(chan struct{}, 1),
	}
	dev.Bind(p)
	return p
}

// Begin configures the peripheral for the given transfer rate (bits/second)
// at 8N1 and enables the receive-complete event. The transmit-ready event
// stays disarmed until there is something to send.
func (p *Port) Begin(baud uint32) error {
	if baud == 0 {
		baud = 115200
	}
	if err := p.dev.Init(baud); err != nil {
		return err
	}
	p.baud = baud
	p.dev.SetRxEvent(true)
	return nil
}

// Close disables the device's event sources and releases the backend.
func (p *Port) Close() error { return p.dev.Close() }

// ---------------- Foreground write path ----------------

// WriteByte queues one byte for transmission. When the port is idle (empty
// TX ring, data register ready) the byte bypasses the ring entirely and goes
// straight to the hardware. Otherwise it is stored in the TX ring, spinning
// if the ring is full until the drain handler frees a slot, and the
// transmit-ready event is armed afterwards. The error is always nil; the
// signature matches io.ByteWriter.
func (p *Port) WriteByte(b byte) error {
	if p.tx.Used() == 0 && p.dev.TxReady() {
		p.dev.WriteData(b)
		return nil
	}
	for !p.tx.Put(b) {
		// Ring full: wait for TransmitReady to advance tail. This is the
		// only blocking point in the driver and it has no timeout.
		time.Sleep(0)
	}
	// Arm strictly after the byte is stored and head published, or the
	// drain handler could fire against a stale ring.
	p.dev.SetTxEvent(true)
	p.dbgArm(true)
	return nil
}

// Write implements io.Writer with WriteByte's blocking behaviour per byte.
func (p *Port) Write(data []byte) (int, error) {
	for _, b := range data {
		_ = p.WriteByte(b)
	}
	return len(data), nil
}

// TxFree returns the remaining space in the TX ring in bytes.
func (p *Port) TxFree() int { return p.tx.Free() }

// Flush blocks until the TX ring is empty and the data register is ready.
// Progress is event-driven via the coalesced TX notification with a short
// timed poll as fallback.
func (p *Port) Flush() error {
	tick := p.drainTick()
	for {
		if p.tx.Used() == 0 && p.dev.TxReady() {
			return nil
		}
		select {
		case <-p.txNotify:
			// Progress likely occurred; loop and re-check.
		case <-time.After(tick):
		}
	}
}

// drainTick returns a polling interval of roughly two character times at 8N1,
// bounded below to avoid a zero tick.
func (p *Port) drainTick() time.Duration {
	if p.baud == 0 {
		return 50 * time.Microsecond
	}
	perBit := time.Second / time.Duration(p.baud)
	t := 2 * 10 * perBit
	if t < 20*time.Microsecond {
		t = 20 * time.Microsecond
	}
	return t
}

// ---------------- Foreground read path ----------------

// Available reports whether at least one byte is buffered. Pure check, safe
// to call at any time.
func (p *Port) Available() bool { return p.rx.Used() != 0 }

// Buffered returns the number of bytes currently stored in the RX ring.
func (p *Port) Buffered() int { return p.rx.Used() }

// ReadByte returns the next buffered byte. It succeeds exactly when
// Available reports true and returns ErrBufferEmpty otherwise; it never
// waits.
func (p *Port) ReadByte() (byte, error) {
	b, ok := p.rx.Get()
	if !ok {
		return 0, ErrBufferEmpty
	}
	return b, nil
}

// TryRead returns immediately with up to len(buf) bytes copied from the RX
// ring. It never blocks and never returns an error; 0 means "no data now".
func (p *Port) TryRead(buf []byte) int {
	n := 0
	for n < len(buf) {
		b, ok := p.rx.Get()
		if !ok {
			break
		}
		buf[n] = b
		n++
	}
	return n
}

// Read implements a non-blocking io.Reader in the machine.UART manner:
// it returns (0, nil) when nothing is buffered rather than waiting.
func (p *Port) Read(buf []byte) (int, error) {
	return p.TryRead(buf), nil
}

// Reset discards everything in the RX ring. Buffered but unread bytes are
// lost; in-flight transmission is unaffected.
func (p *Port) Reset() {
	p.rx.Clear()
}

// ---------------- Blocking helpers ----------------

// Readable returns a coalesced notification for RX readiness. The channel is
// level-coalesced; callers must re-check state after waking.
func (p *Port) Readable() <-chan struct{} { return p.notify }

// Writable returns a coalesced notification for TX progress. The channel is
// level-coalesced; callers must re-check state after waking.
func (p *Port) Writable() <-chan struct{} { return p.txNotify }

// WaitReadable blocks until data is available or ctx is done.
func (p *Port) WaitReadable(ctx context.Context) error {
	for {
		if p.Available() {
			return nil
		}
		select {
		case <-p.notify:
			// re-check; coalesced notify can wake spuriously
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReadBlocking blocks until at least one byte is available, then reads up to
// len(buf) bytes.
func (p *Port) ReadBlocking(ctx context.Context, buf []byte) (int, error) {
	for {
		if n := p.TryRead(buf); n > 0 {
			return n, nil
		}
		if err := p.WaitReadable(ctx); err != nil {
			return 0, err
		}
	}
}

// ReadByteBlocking blocks for a single byte or until ctx is done.
func (p *Port) ReadByteBlocking(ctx context.Context) (byte, error) {
	for {
		if b, err := p.ReadByte(); err == nil {
			return b, nil
		}
		if err := p.WaitReadable(ctx); err != nil {
			return 0, err
		}
	}
}

// ReadWithTimeout is ReadBlocking bounded by a deadline.
func (p *Port) ReadWithTimeout(buf []byte, d time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return p.ReadBlocking(ctx, buf)
}

// ---------------- Asynchronous entry points ----------------

// Receive inserts one inbound byte into the RX ring. It is the
// receive-complete handler and must only be invoked from the device's event
// context. On a full ring the newest byte is dropped silently and the ring
// contents are preserved.
func (p *Port) Receive(b byte) {
	ok := p.rx.Put(b)
	p.dbgRxPut(ok)
	if !ok {
		return
	}
	select {
	case p.notify <- struct{}{}:
		p.dbgNotify(true)
	default:
		p.dbgNotify(false)
	}
}

// TransmitReady moves one byte from the TX ring to the data register. It is
// the transmit-ready handler and must only be invoked from the device's event
// context while armed. When the ring drains empty it disarms the event
// source so the hardware stops signalling into a void.
func (p *Port) TransmitReady() {
	b, ok := p.tx.Peek()
	if !ok {
		// Fired against an empty ring (possible if a concurrent drain beat
		// the arming store). Nothing to send; stop the event source.
		p.dev.SetTxEvent(false)
		p.dbgArm(false)
		return
	}
	// Hand the byte to the hardware before publishing the freed slot;
	// advancing first would let the foreground see an empty ring and take
	// the fast path while this byte is still in flight.
	p.dev.WriteData(b)
	p.tx.Advance()
	p.dbgTxDrain()
	if p.tx.Used() == 0 {
		p.dev.SetTxEvent(false)
		p.dbgArm(false)
	}
	select {
	case p.txNotify <- struct{}{}:
	default:
	}
}
