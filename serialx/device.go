// serialx/device.go

package serialx

// Device is the register-level boundary of the driver: a one-byte output
// data register, a readiness flag for it, and two maskable event sources.
// Backends translate these to real hardware (AVR USART), an OS serial port,
// or an in-memory double for tests.
type Device interface {
	// Init configures the peripheral for the given transfer rate at
	// 8 data bits, no parity, 1 stop bit, and enables the input and
	// output paths. It does not enable either event source.
	Init(baud uint32) error

	// WriteData stores one byte into the output data register. Callers
	// must only do so when TxReady reports true or in direct response to
	// a transmit-ready event.
	WriteData(b byte)

	// TxReady reports whether the output data register can accept a byte.
	TxReady() bool

	// SetTxEvent arms (true) or disarms (false) the transmit-ready event
	// source. While armed the event fires once per byte the register can
	// accept. Arming when already armed is a no-op.
	SetTxEvent(on bool)

	// SetRxEvent enables or disables the receive-complete event source.
	SetRxEvent(on bool)

	// Bind registers the handler the event sources invoke. NewPort calls
	// this; backends hold the handler for the lifetime of the device.
	Bind(h Handler)

	// Close releases the backend: masks both event sources and, where one
	// exists, closes the underlying port.
	Close() error
}

// Handler is the pair of asynchronous entry points a Device invokes. Both
// run in the backend's event context (ISR or servicing goroutine), never on
// the foreground; the backend must not invoke them reentrantly.
type Handler interface {
	// Receive delivers one inbound byte (receive-complete event).
	Receive(b byte)

	// TransmitReady signals that the output data register is empty and
	// the transmit-ready event source is armed.
	TransmitReady()
}
