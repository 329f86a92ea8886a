package kernelsim

import (
	"strings"

	"github.com/nerrf-dev/probed/internal/wire"
)

// OnWriteEnter records the syscall arguments needed at exit: fd and byte
// count are known at enter time for write/write64/writev/writev2 (§3).
func (p *Pipeline) OnWriteEnter(tid uint32, nowNs uint64, source wire.WriteSource, fd, bytes uint64) {
	if _, ok := p.allowed(wire.KindWrite, tid); !ok {
		return
	}
	p.setEnter(wire.EnterKey{Kind: wire.KindWrite, Tid: tid}, wire.EnterState{
		Initialized: true,
		StartNs:     nowNs,
		WriteSource: source,
		WriteFd:     fd,
		WriteBytes:  bytes,
	})
}

// OnWriteExit resolves fd to a path (the caller supplies it, standing in
// for the fdt walk described in §4.3) and applies the post-condition:
// the path must be absolute and must not fall under /dev or /proc.
// Reports whether an event was emitted.
func (p *Pipeline) OnWriteExit(tid uint32, fdPath string) bool {
	st, ok := p.takeEnter(wire.EnterKey{Kind: wire.KindWrite, Tid: tid})
	if !ok {
		return false
	}
	ctx, allowed := p.allowed(wire.KindWrite, tid)
	if !allowed {
		return false
	}
	if !strings.HasPrefix(fdPath, "/") {
		return false
	}
	if strings.HasPrefix(fdPath, "/dev") || strings.HasPrefix(fdPath, "/proc") {
		return false
	}

	var w wire.Write
	w.Source = st.WriteSource
	w.Fd = st.WriteFd
	w.Bytes = st.WriteBytes
	copy(w.FdPath[:], fdPath)

	p.emit(Emitted{Kind: wire.KindWrite, Context: ctx, Write: &w})
	return true
}
