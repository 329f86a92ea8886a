// Package feature owns the live set of probe.Feature implementations and
// applies config.Configuration to them as a unit, grounded on the
// original daemon's registry/collector.rs Collector::apply_configuration
// path: every feature is visited once per call, attaching or detaching
// as the incoming configuration dictates, independent of the others.
package feature

import (
	"fmt"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/metrics"
	"github.com/nerrf-dev/probed/internal/probe"
)

// Set holds one probe.Feature per config.FeatureName and applies
// configuration changes across all of them.
type Set struct {
	byName map[config.FeatureName]probe.Feature
}

// NewSet indexes the given features by name. It panics if two features
// share a name or a name outside config.AllFeatures is supplied, since
// that is a wiring bug caught at startup, not a runtime condition.
func NewSet(features ...probe.Feature) *Set {
	s := &Set{byName: make(map[config.FeatureName]probe.Feature, len(features))}
	for _, f := range features {
		known := false
		for _, n := range config.AllFeatures {
			if n == f.Name() {
				known = true
				break
			}
		}
		if !known {
			panic(fmt.Sprintf("feature: unknown feature name %q", f.Name()))
		}
		if _, dup := s.byName[f.Name()]; dup {
			panic(fmt.Sprintf("feature: duplicate registration for %q", f.Name()))
		}
		s.byName[f.Name()] = f
	}
	return s
}

// Apply walks every feature named in cfg.PerFeature (attach or detach
// per entry) and every feature present in the set but absent from
// PerFeature (implicitly detached), pushing each feature's pid set from
// cfg.PidSets along the way. It keeps applying after a failure rather
// than stopping at the first, since one feature's failure should not
// block the others from reaching their desired state, and returns one
// error that reports how many features failed and wraps the first
// failure.
func (s *Set) Apply(cfg config.Configuration) error {
	var errs []error

	for _, name := range config.AllFeatures {
		f, ok := s.byName[name]
		if !ok {
			continue
		}

		fcfg := cfg.PerFeature[name]
		pids := cfg.PidSets[name]

		if err := f.Apply(fcfg, pids); err != nil {
			errs = append(errs, err)
			continue
		}

		metrics.FeatureAttached.WithLabelValues(string(name)).Set(boolToFloat(f.Attached()))
	}

	if len(errs) > 0 {
		return fmt.Errorf("feature: %d feature(s) failed to apply: %w", len(errs), errs[0])
	}
	return nil
}

// DetachAll idempotently tears every feature down, used at shutdown.
func (s *Set) DetachAll() {
	for _, f := range s.byName {
		f.Detach()
		metrics.FeatureAttached.WithLabelValues(string(f.Name())).Set(0)
	}
}

// Attached reports the live attach state of every managed feature, keyed
// by name; mainly useful for the check_server RPC and diagnostics.
func (s *Set) Attached() map[config.FeatureName]bool {
	out := make(map[config.FeatureName]bool, len(s.byName))
	for name, f := range s.byName {
		out[name] = f.Attached()
	}
	return out
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
