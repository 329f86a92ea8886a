package probe

import (
	"github.com/cilium/ebpf"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/registry"
)

// BlockingFeature correlates sys_enter/sys_exit across every syscall; the
// global blocking_min_duration_ns threshold (not a per-syscall allow-list,
// per §9's Open Question) decides emission at exit time.
type BlockingFeature struct {
	pair rawTracepointPair
}

var _ Feature = (*BlockingFeature)(nil)

func NewBlockingFeature(enter, exit *registry.Guard[*ebpf.Program]) *BlockingFeature {
	return &BlockingFeature{pair: newRawTracepointPair(config.FeatureBlocking, enter, exit)}
}

func (f *BlockingFeature) Name() config.FeatureName { return config.FeatureBlocking }
func (f *BlockingFeature) Attach() error            { return f.pair.attach() }
func (f *BlockingFeature) Detach()                  { f.pair.detach() }
func (f *BlockingFeature) Attached() bool           { return f.pair.attached() }

func (f *BlockingFeature) Apply(cfg *config.FeatureCfg, _ []uint32) error {
	if cfg == nil {
		f.Detach()
		return nil
	}
	return f.Attach()
}
