package probe

import (
	"github.com/cilium/ebpf"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/registry"
)

// FileDescriptorChangeFeature tracks per-process open file descriptor
// count across the syscalls that create or destroy descriptors (open,
// openat, close, dup, dup2, pipe2, socket, ...). The distilled spec
// collapses the original's per-syscall classic-tracepoint bank into a
// single sys_enter/sys_exit pair, matching the other five features'
// shape: the open-fd count is computed at exit from a popcount over the
// task's fd bitmap (see kernelsim.OnFdChangeExit), not from a
// per-syscall counter; decode only reads the finished count.
type FileDescriptorChangeFeature struct {
	pair rawTracepointPair
}

var _ Feature = (*FileDescriptorChangeFeature)(nil)

func NewFileDescriptorChangeFeature(enter, exit *registry.Guard[*ebpf.Program]) *FileDescriptorChangeFeature {
	return &FileDescriptorChangeFeature{pair: newRawTracepointPair(config.FeatureFdChange, enter, exit)}
}

func (f *FileDescriptorChangeFeature) Name() config.FeatureName { return config.FeatureFdChange }
func (f *FileDescriptorChangeFeature) Attach() error            { return f.pair.attach() }
func (f *FileDescriptorChangeFeature) Detach()                  { f.pair.detach() }
func (f *FileDescriptorChangeFeature) Attached() bool           { return f.pair.attached() }

// Apply attaches or detaches per cfg. The pids argument is not used: this
// feature holds no pid-filter map guard, so no pid set is written to a
// kernel map.
func (f *FileDescriptorChangeFeature) Apply(cfg *config.FeatureCfg, pids []uint32) error {
	if cfg == nil {
		f.Detach()
		return nil
	}
	return f.Attach()
}
