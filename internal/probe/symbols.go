package probe

import (
	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
)

// SymbolResolver attaches entry/return uprobes for a named symbol within
// an already-opened executable. JniReferencesFeature and
// GarbageCollectFeature depend on this interface rather than calling
// link.Executable's probe methods directly, so the uprobe attach step
// can be substituted; both features still open libart.so through
// link.OpenExecutable before calling it. Production wiring uses
// DefaultSymbolResolver, a thin pass-through to cilium/ebpf/link.
type SymbolResolver interface {
	Uprobe(exe *link.Executable, symbol string, prog *ebpf.Program) (link.Link, error)
	Uretprobe(exe *link.Executable, symbol string, prog *ebpf.Program) (link.Link, error)
}

type defaultSymbolResolver struct{}

func (defaultSymbolResolver) Uprobe(exe *link.Executable, symbol string, prog *ebpf.Program) (link.Link, error) {
	return exe.Uprobe(symbol, prog, nil)
}

func (defaultSymbolResolver) Uretprobe(exe *link.Executable, symbol string, prog *ebpf.Program) (link.Link, error) {
	return exe.Uretprobe(symbol, prog, nil)
}

// DefaultSymbolResolver is the production SymbolResolver, backed directly
// by cilium/ebpf/link.
var DefaultSymbolResolver SymbolResolver = defaultSymbolResolver{}
