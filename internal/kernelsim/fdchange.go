package kernelsim

import (
	"math/bits"

	"github.com/nerrf-dev/probed/internal/wire"
)

// OnFdChangeEnter records which operation (open/close) the caller
// believes this syscall represents; the fd-tracking feature collapses
// many classic tracepoints into this single enter/exit pair (§4.3).
func (p *Pipeline) OnFdChangeEnter(tid uint32, nowNs uint64, op wire.FileDescriptorOp) {
	if _, ok := p.allowed(wire.KindFileDescriptorChange, tid); !ok {
		return
	}
	p.setEnter(wire.EnterKey{Kind: wire.KindFileDescriptorChange, Tid: tid}, wire.EnterState{
		Initialized: true,
		StartNs:     nowNs,
		FdOp:        op,
	})
}

// OnFdChangeExit applies the post-condition (return != -1, i.e. the
// syscall succeeded) and computes open_fds as a popcount over the
// task's fdtable bitmap, represented here as a caller-supplied slice of
// bitmap words standing in for task.files.fdt.open_fds.
func (p *Pipeline) OnFdChangeExit(tid uint32, ret int64, openFdsBitmap []uint64) bool {
	st, ok := p.takeEnter(wire.EnterKey{Kind: wire.KindFileDescriptorChange, Tid: tid})
	if !ok {
		return false
	}
	ctx, allowed := p.allowed(wire.KindFileDescriptorChange, tid)
	if !allowed {
		return false
	}
	if ret == -1 {
		return false
	}

	fd := wire.FileDescriptorChange{OpenFds: popcount(openFdsBitmap), Op: st.FdOp}
	p.emit(Emitted{Kind: wire.KindFileDescriptorChange, Context: ctx, FdChange: &fd})
	return true
}

func popcount(words []uint64) uint64 {
	var n uint64
	for _, w := range words {
		n += uint64(bits.OnesCount64(w))
	}
	return n
}
