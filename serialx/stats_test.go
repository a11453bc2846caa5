//go:build serialxdebug

package serialx

import "testing"

func TestDebugStats_CountersAndReset(t *testing.T) {
	p, dev := newTestPort(t)
	dev.SetReady(false)

	p.WriteByte('a')
	p.WriteByte('b')
	for dev.StepTx() {
	}

	s := p.DebugStats()
	if s.TxDrained != 2 {
		t.Fatalf("TxDrained = %d; want 2", s.TxDrained)
	}
	// One arming request per buffered write; arming is idempotent so the
	// second request is not a transition, but it is still counted.
	if s.Arms != 2 {
		t.Fatalf("Arms = %d; want 2", s.Arms)
	}
	if s.Disarms != 1 {
		t.Fatalf("Disarms = %d; want 1", s.Disarms)
	}

	feed := make([]byte, p.rx.Size()+10)
	dev.FeedRx(feed)
	s = p.DebugStats()
	usable := uint32(p.rx.Size() - 1)
	if s.RingPuts != usable {
		t.Fatalf("RingPuts = %d; want %d", s.RingPuts, usable)
	}
	if s.RingDrops != 11 {
		t.Fatalf("RingDrops = %d; want 11", s.RingDrops)
	}
	if s.RingMaxUsed != usable {
		t.Fatalf("RingMaxUsed = %d; want %d", s.RingMaxUsed, usable)
	}

	p.DebugReset()
	if got := p.DebugStats(); got != (Stats{}) {
		t.Fatalf("stats after reset = %+v; want zero", got)
	}

	// Counters resume from zero after a reset.
	dev.FeedRx([]byte{'x'})
	if got := p.DebugStats(); got.RingPuts != 1 {
		t.Fatalf("RingPuts after reset = %d; want 1", got.RingPuts)
	}
}
