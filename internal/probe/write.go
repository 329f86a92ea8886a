package probe

import (
	"github.com/cilium/ebpf"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/registry"
)

// WriteFeature correlates sys_enter/sys_exit for write, write64, writev,
// and writev2, filtered in-handler by syscall id (§4.2).
type WriteFeature struct {
	pair rawTracepointPair
}

var _ Feature = (*WriteFeature)(nil)

func NewWriteFeature(enter, exit *registry.Guard[*ebpf.Program]) *WriteFeature {
	return &WriteFeature{pair: newRawTracepointPair(config.FeatureWrite, enter, exit)}
}

func (f *WriteFeature) Name() config.FeatureName { return config.FeatureWrite }
func (f *WriteFeature) Attach() error            { return f.pair.attach() }
func (f *WriteFeature) Detach()                  { f.pair.detach() }
func (f *WriteFeature) Attached() bool           { return f.pair.attached() }

func (f *WriteFeature) Apply(cfg *config.FeatureCfg, _ []uint32) error {
	if cfg == nil {
		f.Detach()
		return nil
	}
	return f.Attach()
}
