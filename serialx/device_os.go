// serialx/device_os.go

//go:build !baremetal

package serialx

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/atomic"
)

// portHandle abstracts the subset of go.bug.st/serial.Port this backend
// uses, so tests can substitute a fake.
type portHandle interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(d time.Duration) error
	Close() error
}

// openPort is a seam for tests to override the real serial.Open.
var openPort = func(name string, mode *serial.Mode) (portHandle, error) {
	return serial.Open(name, mode)
}

// OSDevice adapts an operating-system serial port to the Device register
// model. The one-byte data register is a 1-slot channel feeding a writer
// goroutine; the writer doubles as the transmit-ready event source, invoking
// the handler each time the register empties while armed. A reader goroutine
// is the receive-complete event source. Together they are the dedicated I/O
// servicing task that replaces ISRs on a hosted target.
type OSDevice struct {
	name    string
	handler Handler

	port portHandle

	armed atomic.Bool
	rxOn  atomic.Bool

	dr     chan byte     // the "output data register": empty or one byte
	txWake chan struct{} // coalesced arming kick for the writer

	done      chan struct{}
	closeOnce sync.Once
}

// NewOSDevice returns a device for the named OS serial port (e.g.
// "/dev/ttyUSB0"). The port is opened by Init.
func NewOSDevice(name string) *OSDevice {
	return &OSDevice{
		name:   name,
		dr:     make(chan byte, 1),
		txWake: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Bind implements Device.
func (d *OSDevice) Bind(h Handler) { d.handler = h }

// Init implements Device: opens the port 8N1 at the requested rate and
// starts the servicing goroutines.
func (d *OSDevice) Init(baud uint32) error {
	mode := &serial.Mode{
		BaudRate: int(baud),
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := openPort(d.name, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.name, err)
	}
	// A bounded read timeout keeps the reader responsive to Close.
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return fmt.Errorf("set read timeout on %s: %w", d.name, err)
	}
	d.port = port
	go d.readLoop()
	go d.writeLoop()
	return nil
}

// WriteData implements Device. The contract is the same as for the hardware
// register: only store when TxReady, or from the transmit-ready handler.
func (d *OSDevice) WriteData(b byte) {
	select {
	case d.dr <- b:
	case <-d.done:
	}
}

// TxReady implements Device: the register is ready while the slot is empty.
func (d *OSDevice) TxReady() bool { return len(d.dr) == 0 }

// SetTxEvent implements Device. Arming kicks the writer so it fires an event
// even if the register is already empty.
func (d *OSDevice) SetTxEvent(on bool) {
	d.armed.Store(on)
	if on {
		select {
		case d.txWake <- struct{}{}:
		default:
		}
	}
}

// SetRxEvent implements Device.
func (d *OSDevice) SetRxEvent(on bool) { d.rxOn.Store(on) }

// Close implements Device: stops the servicing goroutines and closes the
// underlying port.
func (d *OSDevice) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.armed.Store(false)
		d.rxOn.Store(false)
		close(d.done)
		if d.port != nil {
			err = d.port.Close()
		}
	})
	return err
}

// writeLoop empties the data register onto the wire and, while armed, raises
// a transmit-ready event after each byte leaves. The handler either refills
// the register or disarms, so the loop parks again in both cases.
func (d *OSDevice) writeLoop() {
	var one [1]byte
	for {
		select {
		case <-d.done:
			return
		case b := <-d.dr:
			one[0] = b
			if _, err := d.port.Write(one[:]); err != nil {
				return
			}
		case <-d.txWake:
			// Armed with the register already empty: fall through and fire.
		}
		if d.armed.Load() && d.handler != nil && len(d.dr) == 0 {
			d.handler.TransmitReady()
		}
	}
}

// readLoop delivers inbound bytes as receive-complete events while the
// receive event source is enabled. Bytes arriving with it disabled are
// discarded, as a masked interrupt would be.
func (d *OSDevice) readLoop() {
	buf := make([]byte, 256)
	for {
		select {
		case <-d.done:
			return
		default:
		}
		n, err := d.port.Read(buf)
		if err != nil {
			return
		}
		if n == 0 { // read timeout; poll again
			continue
		}
		if !d.rxOn.Load() || d.handler == nil {
			continue
		}
		for _, b := range buf[:n] {
			d.handler.Receive(b)
		}
	}
}
