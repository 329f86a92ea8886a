package configsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/confstore"
	"github.com/nerrf-dev/probed/internal/feature"
	"github.com/nerrf-dev/probed/internal/kernelsim"
	"github.com/nerrf-dev/probed/internal/wire"
)

func TestSetThenGetRoundTrips(t *testing.T) {
	store := confstore.NewMemStore()
	svc, err := New(store, nil, map[string]*kernelsim.Pipeline{})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.GlobalThresholds.BlockingMinDurationNs = 10_000_000
	cfg.PerFeature[config.FeatureWrite] = &config.FeatureCfg{Enabled: true}

	require.NoError(t, svc.Set(cfg))

	got := svc.Get()
	assert.Equal(t, cfg.GlobalThresholds, got.GlobalThresholds)
	assert.NotNil(t, got.PerFeature[config.FeatureWrite])
}

func TestNewFallsBackToDefaultWhenNothingPersisted(t *testing.T) {
	store := confstore.NewMemStore()
	svc, err := New(store, nil, nil)
	require.NoError(t, err)

	got := svc.Get()
	assert.Empty(t, got.PerFeature)
}

func TestSetAppliesToFeatureSet(t *testing.T) {
	store := confstore.NewMemStore()
	write := &fakeFeature{name: config.FeatureWrite}
	fset := feature.NewSet(write)

	svc, err := New(store, fset, map[string]*kernelsim.Pipeline{})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.PerFeature[config.FeatureWrite] = &config.FeatureCfg{Enabled: true}
	require.NoError(t, svc.Set(cfg))

	assert.True(t, write.attached)
}

type fakeFeature struct {
	name     config.FeatureName
	attached bool
}

func (f *fakeFeature) Name() config.FeatureName { return f.name }
func (f *fakeFeature) Attach() error             { f.attached = true; return nil }
func (f *fakeFeature) Detach()                   { f.attached = false }
func (f *fakeFeature) Attached() bool            { return f.attached }
func (f *fakeFeature) Apply(cfg *config.FeatureCfg, _ []uint32) error {
	if cfg == nil {
		f.Detach()
		return nil
	}
	return f.Attach()
}

func TestSetUpdatesPipelineFilters(t *testing.T) {
	store := confstore.NewMemStore()
	p := kernelsim.New(nil, nil, config.Thresholds{})
	pipelines := map[string]*kernelsim.Pipeline{wire.KindWrite.String(): p}

	svc, err := New(store, nil, pipelines)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Filters[wire.KindWrite] = config.FilterSpec{}
	require.NoError(t, svc.Set(cfg))
}
