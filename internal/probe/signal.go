package probe

import (
	"github.com/cilium/ebpf"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/registry"
)

// SignalFeature correlates sys_enter/sys_exit filtered to kill(2); exit
// emits only when the return value is zero.
type SignalFeature struct {
	pair rawTracepointPair
}

var _ Feature = (*SignalFeature)(nil)

func NewSignalFeature(enter, exit *registry.Guard[*ebpf.Program]) *SignalFeature {
	return &SignalFeature{pair: newRawTracepointPair(config.FeatureSignal, enter, exit)}
}

func (f *SignalFeature) Name() config.FeatureName { return config.FeatureSignal }
func (f *SignalFeature) Attach() error            { return f.pair.attach() }
func (f *SignalFeature) Detach()                  { f.pair.detach() }
func (f *SignalFeature) Attached() bool           { return f.pair.attached() }

func (f *SignalFeature) Apply(cfg *config.FeatureCfg, _ []uint32) error {
	if cfg == nil {
		f.Detach()
		return nil
	}
	return f.Attach()
}
