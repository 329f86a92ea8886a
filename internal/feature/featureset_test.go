package feature

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrf-dev/probed/internal/config"
)

type fakeFeature struct {
	name     config.FeatureName
	attached bool
	attachFn func() error
	pids     []uint32
}

func (f *fakeFeature) Name() config.FeatureName { return f.name }
func (f *fakeFeature) Attach() error {
	if f.attachFn != nil {
		if err := f.attachFn(); err != nil {
			return err
		}
	}
	f.attached = true
	return nil
}
func (f *fakeFeature) Detach() { f.attached = false }
func (f *fakeFeature) Attached() bool { return f.attached }
func (f *fakeFeature) Apply(cfg *config.FeatureCfg, pids []uint32) error {
	f.pids = pids
	if cfg == nil {
		f.Detach()
		return nil
	}
	return f.Attach()
}

func TestSetApplyAttachesAndDetaches(t *testing.T) {
	write := &fakeFeature{name: config.FeatureWrite}
	blocking := &fakeFeature{name: config.FeatureBlocking}
	s := NewSet(write, blocking)

	cfg := config.Default()
	cfg.PerFeature[config.FeatureWrite] = &config.FeatureCfg{Enabled: true}
	cfg.PidSets[config.FeatureWrite] = []uint32{10, 20}

	require.NoError(t, s.Apply(cfg))

	assert.True(t, write.Attached())
	assert.Equal(t, []uint32{10, 20}, write.pids)
	assert.False(t, blocking.Attached(), "features absent from PerFeature must end up detached")
}

func TestSetApplyCollectsErrorsButContinues(t *testing.T) {
	failing := &fakeFeature{name: config.FeatureSignal, attachFn: func() error {
		return errors.New("boom")
	}}
	ok := &fakeFeature{name: config.FeatureJNI}
	s := NewSet(failing, ok)

	cfg := config.Default()
	cfg.PerFeature[config.FeatureSignal] = &config.FeatureCfg{Enabled: true}
	cfg.PerFeature[config.FeatureJNI] = &config.FeatureCfg{Enabled: true}

	err := s.Apply(cfg)
	assert.Error(t, err)
	assert.True(t, ok.Attached(), "a failing feature must not block the others from applying")
}

func TestSetDetachAll(t *testing.T) {
	write := &fakeFeature{name: config.FeatureWrite, attached: true}
	s := NewSet(write)
	s.DetachAll()
	assert.False(t, write.Attached())
}

func TestNewSetPanicsOnDuplicateName(t *testing.T) {
	assert.Panics(t, func() {
		NewSet(&fakeFeature{name: config.FeatureWrite}, &fakeFeature{name: config.FeatureWrite})
	})
}
