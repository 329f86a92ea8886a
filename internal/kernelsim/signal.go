package kernelsim

import "github.com/nerrf-dev/probed/internal/wire"

// OnSignalEnter records a kill(2) call's arguments; target pid and signal
// number are both known at enter time, success or failure only at exit.
func (p *Pipeline) OnSignalEnter(tid uint32, nowNs uint64, targetPid int32, signal uint32) {
	if _, ok := p.allowed(wire.KindSignal, tid); !ok {
		return
	}
	p.setEnter(wire.EnterKey{Kind: wire.KindSignal, Tid: tid}, wire.EnterState{
		Initialized:     true,
		StartNs:         nowNs,
		SignalTargetPid: targetPid,
		SignalNumber:    signal,
	})
}

// OnSignalExit emits only when the syscall returned 0 (§8: "return ==
// 0"); a negative errno such as ESRCH suppresses the event entirely.
func (p *Pipeline) OnSignalExit(tid uint32, ret int64) bool {
	st, ok := p.takeEnter(wire.EnterKey{Kind: wire.KindSignal, Tid: tid})
	if !ok {
		return false
	}
	ctx, allowed := p.allowed(wire.KindSignal, tid)
	if !allowed {
		return false
	}
	if ret != 0 {
		return false
	}

	s := wire.Signal{TargetPid: st.SignalTargetPid, Signal: st.SignalNumber}
	p.emit(Emitted{Kind: wire.KindSignal, Context: ctx, Signal: &s})
	return true
}
