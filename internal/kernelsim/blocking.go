package kernelsim

import "github.com/nerrf-dev/probed/internal/wire"

// OnBlockingEnter records the syscall start; Blocking has no
// per-syscall allow-list (§9 Open Question), so every syscall id passes
// through to the duration check at exit.
func (p *Pipeline) OnBlockingEnter(tid uint32, nowNs, syscallID uint64) {
	if _, ok := p.allowed(wire.KindBlocking, tid); !ok {
		return
	}
	p.setEnter(wire.EnterKey{Kind: wire.KindBlocking, Tid: tid}, wire.EnterState{
		Initialized: true,
		StartNs:     nowNs,
		SyscallID:   syscallID,
	})
}

// OnBlockingExit computes duration = now - enter and emits only if it
// meets or exceeds the configured global threshold.
func (p *Pipeline) OnBlockingExit(tid uint32, nowNs uint64) bool {
	st, ok := p.takeEnter(wire.EnterKey{Kind: wire.KindBlocking, Tid: tid})
	if !ok {
		return false
	}
	ctx, allowed := p.allowed(wire.KindBlocking, tid)
	if !allowed {
		return false
	}

	duration := nowNs - st.StartNs

	p.mu.Lock()
	threshold := p.thresholds.BlockingMinDurationNs
	p.mu.Unlock()

	if duration < threshold {
		return false
	}

	b := wire.Blocking{SyscallID: st.SyscallID, DurationNs: duration}
	p.emit(Emitted{Kind: wire.KindBlocking, Context: ctx, Blocking: &b})
	return true
}
