// serialx/stats.go

//go:build serialxdebug

package serialx

import "sync/atomic"

// Stats holds counters since the last reset. Only maintained when built with
// the serialxdebug tag; the default build keeps every failure mode silent.
type Stats struct {
	// RX ring
	RingPuts    uint32 // successful Put()s
	RingDrops   uint32 // bytes dropped on a full RX ring
	RingMaxUsed uint32 // high-water mark of RX ring occupancy

	// TX path
	TxDrained uint32 // bytes moved ring -> data register by the drain handler
	Arms      uint32 // arming requests from buffered writes (idempotent; counts requests, not transitions)
	Disarms   uint32 // disarms issued by the drain handler once the ring is empty

	// Notifications
	NotifySent    uint32 // notify channel sends that succeeded
	NotifyDropped uint32 // notify channel sends that were coalesced away
}

// DebugReset zeroes the counters. Each field is stored atomically so a reset
// can run alongside the hooks without tearing a concurrent increment.
func (p *Port) DebugReset() {
	atomic.StoreUint32(&p.stats.RingPuts, 0)
	atomic.StoreUint32(&p.stats.RingDrops, 0)
	atomic.StoreUint32(&p.stats.RingMaxUsed, 0)

	atomic.StoreUint32(&p.stats.TxDrained, 0)
	atomic.StoreUint32(&p.stats.Arms, 0)
	atomic.StoreUint32(&p.stats.Disarms, 0)

	atomic.StoreUint32(&p.stats.NotifySent, 0)
	atomic.StoreUint32(&p.stats.NotifyDropped, 0)
}

func (p *Port) DebugStats() Stats {
	return Stats{
		RingPuts:    atomic.LoadUint32(&p.stats.RingPuts),
		RingDrops:   atomic.LoadUint32(&p.stats.RingDrops),
		RingMaxUsed: atomic.LoadUint32(&p.stats.RingMaxUsed),

		TxDrained: atomic.LoadUint32(&p.stats.TxDrained),
		Arms:      atomic.LoadUint32(&p.stats.Arms),
		Disarms:   atomic.LoadUint32(&p.stats.Disarms),

		NotifySent:    atomic.LoadUint32(&p.stats.NotifySent),
		NotifyDropped: atomic.LoadUint32(&p.stats.NotifyDropped),
	}
}

func (p *Port) dbgRxPut(ok bool) {
	if !ok {
		atomic.AddUint32(&p.stats.RingDrops, 1)
		return
	}
	atomic.AddUint32(&p.stats.RingPuts, 1)
	used := uint32(p.rx.Used())
	for {
		max := atomic.LoadUint32(&p.stats.RingMaxUsed)
		if used <= max {
			break
		}
		if atomic.CompareAndSwapUint32(&p.stats.RingMaxUsed, max, used) {
			break
		}
	}
}

func (p *Port) dbgTxDrain() {
	atomic.AddUint32(&p.stats.TxDrained, 1)
}

func (p *Port) dbgArm(on bool) {
	if on {
		atomic.AddUint32(&p.stats.Arms, 1)
	} else {
		atomic.AddUint32(&p.stats.Disarms, 1)
	}
}

func (p *Port) dbgNotify(sent bool) {
	if sent {
		atomic.AddUint32(&p.stats.NotifySent, 1)
	} else {
		atomic.AddUint32(&p.stats.NotifyDropped, 1)
	}
}
