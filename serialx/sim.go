// serialx/sim.go

package serialx

import (
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/atomic"
)

// SimDevice is an in-memory peripheral double: a one-byte-at-a-time output
// register whose readiness tests can force, plus manually or automatically
// stepped event sources. It stands in for the ISR machinery on hosts with no
// hardware; the optional pump goroutine plays the role of a dedicated I/O
// servicing task.
type SimDevice struct {
	handler Handler

	armed atomic.Bool // transmit-ready event source enabled
	rxOn  atomic.Bool // receive-complete event source enabled
	ready atomic.Bool // output data register can accept a byte
	baud  atomic.Uint32

	mu       sync.Mutex
	out      []byte       // every byte written to the data register, in order
	wire     *queue.Queue // loopback bytes in flight back to the RX side
	loopback bool

	pumpWake  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewSimDevice returns a simulated device with the data register ready and
// both event sources disabled.
func NewSimDevice() *SimDevice {
	d := &SimDevice{
		wire:     queue.New(),
		pumpWake: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	d.ready.Store(true)
	return d
}

// Bind implements Device.
func (d *SimDevice) Bind(h Handler) { d.handler = h }

// Init implements Device. The simulated peripheral accepts any rate.
func (d *SimDevice) Init(baud uint32) error {
	d.baud.Store(baud)
	return nil
}

// WriteData implements Device: the byte lands in the transmitted log and,
// in loopback mode, on the wire back to the receive side.
func (d *SimDevice) WriteData(b byte) {
	d.mu.Lock()
	d.out = append(d.out, b)
	loop := d.loopback
	if loop {
		d.wire.Add(b)
	}
	d.mu.Unlock()
	if loop {
		// Fast-path writes never arm, so kick the pump to ferry the wire.
		select {
		case d.pumpWake <- struct{}{}:
		default:
		}
	}
}

// TxReady implements Device.
func (d *SimDevice) TxReady() bool { return d.ready.Load() }

// SetTxEvent implements Device. Arming wakes the pump, if one is running.
func (d *SimDevice) SetTxEvent(on bool) {
	d.armed.Store(on)
	if on {
		select {
		case d.pumpWake <- struct{}{}:
		default:
		}
	}
}

// SetRxEvent implements Device.
func (d *SimDevice) SetRxEvent(on bool) { d.rxOn.Store(on) }

// Close implements Device and stops the pump.
func (d *SimDevice) Close() error {
	d.closeOnce.Do(func() {
		d.armed.Store(false)
		d.rxOn.Store(false)
		close(d.done)
	})
	return nil
}

// ---------------- Test/driving surface ----------------

// Armed reports whether the transmit-ready event source is enabled.
func (d *SimDevice) Armed() bool { return d.armed.Load() }

// SetReady forces the data-register readiness flag; tests use
// SetReady(false) to push writes through the buffered path.
func (d *SimDevice) SetReady(on bool) { d.ready.Store(on) }

// SetLoopback connects TX back to RX so transmitted bytes are delivered as
// received ones by the pump or DeliverWire.
func (d *SimDevice) SetLoopback(on bool) {
	d.mu.Lock()
	d.loopback = on
	d.mu.Unlock()
}

// StepTx fires one transmit-ready event, if armed. It returns whether an
// event fired.
func (d *SimDevice) StepTx() bool {
	if !d.armed.Load() || d.handler == nil {
		return false
	}
	d.handler.TransmitReady()
	return true
}

// FeedRx delivers the given bytes as receive-complete events, one per byte,
// provided the receive event source is enabled.
func (d *SimDevice) FeedRx(data []byte) {
	if d.handler == nil {
		return
	}
	for _, b := range data {
		if !d.rxOn.Load() {
			return
		}
		d.handler.Receive(b)
	}
}

// Transmitted returns a copy of every byte written to the data register so
// far, in order.
func (d *SimDevice) Transmitted() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, len(d.out))
	copy(out, d.out)
	return out
}

// DeliverWire moves any loopback bytes in flight to the receive side and
// returns how many were delivered.
func (d *SimDevice) DeliverWire() int {
	n := 0
	for {
		d.mu.Lock()
		if d.wire.Length() == 0 {
			d.mu.Unlock()
			return n
		}
		b := d.wire.Remove().(byte)
		d.mu.Unlock()
		// Deliver outside the lock: Receive may call back into WriteData.
		d.FeedRx([]byte{b})
		n++
	}
}

// StartPump runs the event sources on their own goroutine: while armed it
// keeps firing transmit-ready events, and it ferries loopback bytes to the
// receive side. Stop it with Close.
func (d *SimDevice) StartPump() {
	go func() {
		for {
			select {
			case <-d.done:
				return
			case <-d.pumpWake:
			}
			for d.armed.Load() {
				d.StepTx()
				d.DeliverWire()
			}
			d.DeliverWire()
		}
	}()
}
