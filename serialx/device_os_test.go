//go:build !baremetal

package serialx

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"go.bug.st/serial"
)

// fakePort stands in for an OS serial port. Reads block for the configured
// timeout the way go.bug.st/serial does, returning (0, nil) on expiry.
type fakePort struct {
	mu      sync.Mutex
	written []byte
	timeout time.Duration

	rx     chan byte
	closed chan struct{}
	once   sync.Once
}

func newFakePort() *fakePort {
	return &fakePort{
		rx:      make(chan byte, 64),
		closed:  make(chan struct{}),
		timeout: 100 * time.Millisecond,
	}
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	select {
	case b := <-f.rx:
		p[0] = b
		return 1, nil
	case <-time.After(f.timeout):
		return 0, nil
	case <-f.closed:
		return 0, io.ErrClosedPipe
	}
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.mu.Lock()
	f.written = append(f.written, p...)
	f.mu.Unlock()
	return len(p), nil
}

func (f *fakePort) SetReadTimeout(d time.Duration) error {
	f.timeout = d
	return nil
}

func (f *fakePort) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakePort) Written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.written))
	copy(out, f.written)
	return out
}

// withFakePort reroutes openPort to a fakePort for the duration of a test.
func withFakePort(t *testing.T) *fakePort {
	t.Helper()
	fake := newFakePort()
	orig := openPort
	openPort = func(name string, mode *serial.Mode) (portHandle, error) {
		return fake, nil
	}
	t.Cleanup(func() { openPort = orig })
	return fake
}

func TestOSDevice_WritesReachThePort(t *testing.T) {
	fake := withFakePort(t)

	dev := NewOSDevice("fake0")
	p := NewPort(dev)
	if err := p.Begin(9600); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer p.Close()

	msg := []byte("hello, wire")
	if _, err := p.Write(msg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for !bytes.Equal(fake.Written(), msg) {
		if time.Now().After(deadline) {
			t.Fatalf("port received %q; want %q", fake.Written(), msg)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestOSDevice_InboundBytesReachTheReader(t *testing.T) {
	fake := withFakePort(t)

	dev := NewOSDevice("fake0")
	p := NewPort(dev)
	if err := p.Begin(9600); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer p.Close()

	for _, b := range []byte("data") {
		fake.rx <- b
	}

	got := make([]byte, 0, 4)
	buf := make([]byte, 8)
	deadline := time.Now().Add(time.Second)
	for len(got) < 4 {
		n, err := p.ReadWithTimeout(buf, time.Until(deadline))
		if err != nil {
			t.Fatalf("ReadWithTimeout: %v (got %q)", err, got)
		}
		got = append(got, buf[:n]...)
	}
	if string(got) != "data" {
		t.Fatalf("read %q; want %q", got, "data")
	}
}

func TestOSDevice_OpenErrorIsWrapped(t *testing.T) {
	sentinel := errors.New("no such tty")
	orig := openPort
	openPort = func(string, *serial.Mode) (portHandle, error) { return nil, sentinel }
	t.Cleanup(func() { openPort = orig })

	p := NewPort(NewOSDevice("/dev/ttyMISSING"))
	err := p.Begin(115200)
	if !errors.Is(err, sentinel) {
		t.Fatalf("Begin error = %v; want wrapped %v", err, sentinel)
	}
}
