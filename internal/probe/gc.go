package probe

import (
	"fmt"
	"runtime"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/nerrferr"
	"github.com/nerrf-dev/probed/internal/offsets"
	"github.com/nerrf-dev/probed/internal/registry"
)

// artLibraryPath is the well-known on-device location of the ART runtime
// whose collection entry/exit points GarbageCollectFeature instruments.
const artLibraryPath = "/apex/com.android.art/lib64/libart.so"

// gcSymbol is the collection entry point symbol resolved against the
// pinned ART build; GarbageCollectFeature reads offsets.HeapLayout out of
// the heap structure at return time rather than from the arguments.
const gcSymbol = "_ZN3art2gc7Heap12CollectGarbageEb"

// GarbageCollectFeature instruments ART's garbage collector via a
// userspace probe pair on libart.so, rather than a raw tracepoint: the
// event source here is an application library, not a syscall. Grounded
// on the original daemon's garbage_collection_feature.rs. The probes are
// attached to gcSymbol by name through link.Executable; the build-time
// offset table (internal/offsets) describes the heap fields read at
// return time, not the symbol's location.
type GarbageCollectFeature struct {
	enterProg *registry.Guard[*ebpf.Program]
	exitProg  *registry.Guard[*ebpf.Program]

	layout offsets.HeapLayout

	resolver SymbolResolver

	exe       *link.Executable
	enterLink link.Link
	exitLink  link.Link
}

var _ Feature = (*GarbageCollectFeature)(nil)

func NewGarbageCollectFeature(enter, exit *registry.Guard[*ebpf.Program]) (*GarbageCollectFeature, error) {
	layout, err := offsets.ForArch(runtime.GOARCH)
	if err != nil {
		return nil, err
	}
	return &GarbageCollectFeature{enterProg: enter, exitProg: exit, layout: layout, resolver: DefaultSymbolResolver}, nil
}

func (f *GarbageCollectFeature) Name() config.FeatureName { return config.FeatureGC }

func (f *GarbageCollectFeature) Attach() error {
	if f.exe == nil {
		exe, err := link.OpenExecutable(artLibraryPath)
		if err != nil {
			return &nerrferr.AttachError{Feature: string(f.Name()), AttachPoint: artLibraryPath, Err: err}
		}
		f.exe = exe
	}

	if f.enterLink == nil {
		l, err := f.resolver.Uprobe(f.exe, gcSymbol, *f.enterProg.Get())
		if err != nil {
			return &nerrferr.AttachError{Feature: string(f.Name()), AttachPoint: gcSymbol + ":entry", Err: err}
		}
		f.enterLink = l
	}

	if f.exitLink == nil {
		l, err := f.resolver.Uretprobe(f.exe, gcSymbol, *f.exitProg.Get())
		if err != nil {
			return &nerrferr.AttachError{Feature: string(f.Name()), AttachPoint: gcSymbol + ":return", Err: err}
		}
		f.exitLink = l
	}

	return nil
}

func (f *GarbageCollectFeature) Detach() {
	closeLink(&f.enterLink)
	closeLink(&f.exitLink)
}

func (f *GarbageCollectFeature) Attached() bool {
	return f.enterLink != nil && f.exitLink != nil
}

func (f *GarbageCollectFeature) Apply(cfg *config.FeatureCfg, _ []uint32) error {
	if cfg == nil {
		f.Detach()
		return nil
	}
	return f.Attach()
}

// HeapLayout exposes the pinned offset table this feature was constructed
// with for the running architecture.
func (f *GarbageCollectFeature) HeapLayout() offsets.HeapLayout { return f.layout }

func (f *GarbageCollectFeature) String() string {
	return fmt.Sprintf("garbage_collect(%s@%s)", gcSymbol, artLibraryPath)
}
