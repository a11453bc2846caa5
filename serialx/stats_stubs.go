// serialx/stats_stubs.go

//go:build !serialxdebug

package serialx

type Stats struct{}

func (p *Port) DebugReset()       {}
func (p *Port) DebugStats() Stats { return Stats{} }

func (p *Port) dbgRxPut(bool)  {}
func (p *Port) dbgTxDrain()    {}
func (p *Port) dbgArm(bool)    {}
func (p *Port) dbgNotify(bool) {}
