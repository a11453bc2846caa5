// serialx/device_avr.go

//go:build atmega

// AVR USART0 backend. The transmit-ready event is the Data Register Empty
// interrupt (UDRIE0 is the arming bit, UDRE0 the readiness flag); the
// receive-complete event is the RX Complete interrupt (RXCIE0).

package serialx

import (
	"device/avr"
	"machine"
	"runtime/interrupt"
)

// AVRDevice drives USART0 through its registers. One instance exists per
// process; use the Serial0 port.
type AVRDevice struct {
	handler Handler
}

// Serial0 is the port on USART0.
var (
	Serial0  = NewPort(&_Device0)
	_Device0 AVRDevice
)

func init() {
	interrupt.New(avr.IRQ_USART_RX, _Device0.handleRxComplete)
	interrupt.New(avr.IRQ_USART_UDRE, _Device0.handleDataRegisterEmpty)
}

// Bind implements Device.
func (d *AVRDevice) Bind(h Handler) { d.handler = h }

// Init implements Device: programs the baud divisor from the CPU clock and
// enables the receiver and transmitter. 8 data bits, no parity, 1 stop bit
// is the register default.
func (d *AVRDevice) Init(baud uint32) error {
	div := (machine.CPUFrequency()/16+baud/2)/baud - 1
	avr.UBRR0H.Set(uint8(div >> 8))
	avr.UBRR0L.Set(uint8(div))

	// Baud doubler off.
	avr.UCSR0A.ClearBits(avr.UCSR0A_U2X0)

	avr.UCSR0B.SetBits(avr.UCSR0B_RXEN0 | avr.UCSR0B_TXEN0)
	return nil
}

// WriteData implements Device.
func (d *AVRDevice) WriteData(b byte) { avr.UDR0.Set(b) }

// TxReady implements Device.
func (d *AVRDevice) TxReady() bool { return avr.UCSR0A.HasBits(avr.UCSR0A_UDRE0) }

// SetTxEvent implements Device: masks or unmasks the Data Register Empty
// interrupt.
func (d *AVRDevice) SetTxEvent(on bool) {
	if on {
		avr.UCSR0B.SetBits(avr.UCSR0B_UDRIE0)
	} else {
		avr.UCSR0B.ClearBits(avr.UCSR0B_UDRIE0)
	}
}

// SetRxEvent implements Device: masks or unmasks the RX Complete interrupt.
func (d *AVRDevice) SetRxEvent(on bool) {
	if on {
		avr.UCSR0B.SetBits(avr.UCSR0B_RXCIE0)
	} else {
		avr.UCSR0B.ClearBits(avr.UCSR0B_RXCIE0)
	}
}

// Close implements Device: masks both interrupt sources. The peripheral
// itself stays enabled; there is no teardown on bare metal.
func (d *AVRDevice) Close() error {
	avr.UCSR0B.ClearBits(avr.UCSR0B_RXCIE0 | avr.UCSR0B_UDRIE0)
	return nil
}

func (d *AVRDevice) handleRxComplete(interrupt.Interrupt) {
	b := avr.UDR0.Get()
	if d.handler != nil {
		d.handler.Receive(b)
	}
}

func (d *AVRDevice) handleDataRegisterEmpty(interrupt.Interrupt) {
	if d.handler != nil {
		d.handler.TransmitReady()
	}
}
