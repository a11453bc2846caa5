// Self-test for the serialx driver against the simulated device. Exercises
// the transmit arming behaviour, overflow policy, blocking write release and
// the print helpers, and exits non-zero on the first failure.
package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jangala-dev/serialx/serialx"
)

var failures int

func report(name string, ok bool, detail string) {
	if ok {
		fmt.Printf("PASS %s\n", name)
		return
	}
	failures++
	fmt.Printf("FAIL %s: %s\n", name, detail)
}

func newPort() (*serialx.Port, *serialx.SimDevice) {
	dev := serialx.NewSimDevice()
	p := serialx.NewPort(dev)
	if err := p.Begin(115200); err != nil {
		fmt.Printf("FAIL begin: %v\n", err)
		os.Exit(1)
	}
	return p, dev
}

func checkFastPath() {
	p, dev := newPort()
	p.WriteByte('!')
	report("tx fast path", bytes.Equal(dev.Transmitted(), []byte{'!'}) && !dev.Armed(),
		fmt.Sprintf("transmitted=%q armed=%v", dev.Transmitted(), dev.Armed()))
}

func checkArming() {
	p, dev := newPort()
	dev.SetReady(false)
	msg := []byte("abcdef")
	for _, b := range msg {
		p.WriteByte(b)
		if !dev.Armed() {
			report("arming", false, "disarmed with bytes queued")
			return
		}
	}
	for dev.StepTx() {
	}
	report("arming", !dev.Armed() && bytes.Equal(dev.Transmitted(), msg),
		fmt.Sprintf("armed=%v transmitted=%q", dev.Armed(), dev.Transmitted()))
}

func checkOverflow() {
	p, dev := newPort()
	feed := make([]byte, 400)
	for i := range feed {
		feed[i] = byte(i)
	}
	dev.FeedRx(feed)
	got := make([]byte, 0, 300)
	var buf [64]byte
	for {
		n, _ := p.Read(buf[:])
		if n == 0 {
			break
		}
		got = append(got, buf[:n]...)
	}
	// Oldest bytes survive; the newest are dropped once the ring fills.
	ok := len(got) == 255 && bytes.Equal(got, feed[:255])
	report("rx overflow policy", ok, fmt.Sprintf("retained %d bytes", len(got)))
}

func checkBlockingWrite() {
	p, dev := newPort()
	dev.SetReady(false)
	for p.TxFree() > 0 {
		p.WriteByte('x')
	}
	done := make(chan struct{})
	go func() {
		p.WriteByte('y')
		close(done)
	}()
	select {
	case <-done:
		report("blocking write", false, "returned with the ring full")
		return
	case <-time.After(20 * time.Millisecond):
	}
	dev.StepTx()
	select {
	case <-done:
		report("blocking write", true, "")
	case <-time.After(time.Second):
		report("blocking write", false, "still blocked after a slot freed")
	}
}

func checkPrint() {
	p, dev := newPort()
	p.PrintInteger(-42)
	p.PrintByte(' ')
	p.PrintIntegerInBase(255, 16)
	p.PrintByte(' ')
	p.PrintFloat(3.14159)
	want := "-42 FF 3.142"
	report("print helpers", string(dev.Transmitted()) == want,
		fmt.Sprintf("got %q want %q", dev.Transmitted(), want))
}

func checkLoopback() {
	dev := serialx.NewSimDevice()
	dev.SetLoopback(true)
	p := serialx.NewPort(dev)
	if err := p.Begin(115200); err != nil {
		report("loopback", false, err.Error())
		return
	}
	dev.StartPump()
	defer p.Close()

	msg := []byte("roundtrip")
	p.Write(msg)
	got := make([]byte, 0, len(msg))
	buf := make([]byte, 16)
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < len(msg) && time.Now().Before(deadline) {
		n, err := p.ReadWithTimeout(buf, time.Until(deadline))
		if err != nil {
			break
		}
		got = append(got, buf[:n]...)
	}
	report("loopback", bytes.Equal(got, msg), fmt.Sprintf("got %q", got))
}

func main() {
	fmt.Println("serialx self-test starting")
	checkFastPath()
	checkArming()
	checkOverflow()
	checkBlockingWrite()
	checkPrint()
	checkLoopback()
	if failures > 0 {
		fmt.Printf("%d failure(s)\n", failures)
		os.Exit(1)
	}
	fmt.Println("all checks passed")
}
