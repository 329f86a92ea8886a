// Package config defines the Configuration value described in
// SPEC_FULL.md §3 DATA MODEL: per-feature attach/detach state, the pid
// allow-sets a handful of features populate into their own kernel maps,
// the global blocking-duration threshold, and the per-event-kind
// FilterEngine configuration.
package config

import (
	"encoding/json"

	"github.com/nerrf-dev/probed/internal/filter"
	"github.com/nerrf-dev/probed/internal/wire"
)

// FeatureName identifies one of the six supported event families.
type FeatureName string

const (
	FeatureWrite    FeatureName = "write"
	FeatureBlocking FeatureName = "blocking"
	FeatureSignal   FeatureName = "signal"
	FeatureFdChange FeatureName = "fd_change"
	FeatureGC       FeatureName = "garbage_collect"
	FeatureJNI      FeatureName = "jni_references"
)

// AllFeatures lists every feature FeatureSet manages.
var AllFeatures = []FeatureName{
	FeatureWrite, FeatureBlocking, FeatureSignal, FeatureFdChange, FeatureGC, FeatureJNI,
}

// FeatureCfg is the per-feature configuration payload. A nil *FeatureCfg
// in Configuration.PerFeature means "detach feature"; non-nil means
// "attach and apply cfg".
type FeatureCfg struct {
	// Enabled is informational only; presence in PerFeature as non-nil is
	// what actually drives attach/detach, matching the Option<FeatureCfg>
	// semantics in the original daemon.
	Enabled bool `json:"enabled"`
}

// Thresholds holds daemon-wide numeric knobs not tied to any one feature.
type Thresholds struct {
	// BlockingMinDurationNs is the minimum syscall duration, in
	// nanoseconds, before a Blocking event is emitted. Per-syscall
	// allow-lists are explicitly out of scope (§9 Open Question).
	BlockingMinDurationNs uint64 `json:"blocking_min_duration_ns"`
}

// Configuration is the value ConfigService applies atomically to
// FeatureSet and the kernel filter maps.
type Configuration struct {
	PerFeature map[FeatureName]*FeatureCfg `json:"per_feature"`
	// PidSets holds per-feature pid allow-lists, independent of the
	// general-purpose FilterEngine maps. feature.Set passes each list to
	// its feature's Apply; no feature currently writes it into a kernel
	// map.
	PidSets          map[FeatureName][]uint32      `json:"pid_sets"`
	GlobalThresholds Thresholds                    `json:"global_thresholds"`
	Filters          map[wire.EventKind]FilterSpec `json:"filters"`
}

// FilterSpec is the JSON-friendly projection of filter.Config. encoding/json
// marshals integer-keyed maps as strings natively, so no manual key
// translation is needed between this and filter.SubFilter[K].
type FilterSpec struct {
	Pid     *PidSubFilterSpec  `json:"pid,omitempty"`
	Comm    *StrSubFilterSpec  `json:"comm,omitempty"`
	ExePath *StrSubFilterSpec  `json:"exe_path,omitempty"`
	Cmdline *StrSubFilterSpec  `json:"cmdline,omitempty"`
}

// PidSubFilterSpec is the serializable form of filter.SubFilter[uint32].
type PidSubFilterSpec struct {
	Missing filter.MissingBehavior    `json:"missing_behavior"`
	Entries map[uint32]filter.MaskPair `json:"entries"`
}

// StrSubFilterSpec is the serializable form of filter.SubFilter[string].
type StrSubFilterSpec struct {
	Missing filter.MissingBehavior     `json:"missing_behavior"`
	Entries map[string]filter.MaskPair `json:"entries"`
}

// ToEngine builds the live, evaluable filter.Config this spec describes.
func (f FilterSpec) ToEngine() filter.Config {
	var c filter.Config
	if f.Pid != nil {
		sf := filter.NewSubFilter[uint32](f.Pid.Missing)
		for k, v := range f.Pid.Entries {
			sf.Set(k, v)
		}
		c.Pid = sf
	}
	if f.Comm != nil {
		c.Comm = toStrFilter(f.Comm)
	}
	if f.ExePath != nil {
		c.ExePath = toStrFilter(f.ExePath)
	}
	if f.Cmdline != nil {
		c.Cmdline = toStrFilter(f.Cmdline)
	}
	return c
}

func toStrFilter(spec *StrSubFilterSpec) *filter.SubFilter[string] {
	sf := filter.NewSubFilter[string](spec.Missing)
	for k, v := range spec.Entries {
		sf.Set(k, v)
	}
	return sf
}

// Default returns a Configuration with every feature detached, an empty
// pid set, a zero blocking threshold, and no filters — the safe starting
// point before the first set_configuration call.
func Default() Configuration {
	return Configuration{
		PerFeature: map[FeatureName]*FeatureCfg{},
		PidSets:    map[FeatureName][]uint32{},
		Filters:    map[wire.EventKind]FilterSpec{},
	}
}

// Clone deep-copies a Configuration so callers can mutate a working copy
// without aliasing the persisted value.
func (c Configuration) Clone() Configuration {
	out := Configuration{
		PerFeature:       make(map[FeatureName]*FeatureCfg, len(c.PerFeature)),
		PidSets:          make(map[FeatureName][]uint32, len(c.PidSets)),
		GlobalThresholds: c.GlobalThresholds,
		Filters:          make(map[wire.EventKind]FilterSpec, len(c.Filters)),
	}
	for k, v := range c.PerFeature {
		if v == nil {
			out.PerFeature[k] = nil
			continue
		}
		cfg := *v
		out.PerFeature[k] = &cfg
	}
	for k, v := range c.PidSets {
		cp := make([]uint32, len(v))
		copy(cp, v)
		out.PidSets[k] = cp
	}
	for k, v := range c.Filters {
		out.Filters[k] = v
	}
	return out
}

// Marshal/Unmarshal round-trip Configuration through JSON, the format
// ConfigService persists to the fixed configuration path (§6 External
// Interfaces: "a JSON configuration file at a fixed path").
func (c Configuration) Marshal() ([]byte, error) { return json.MarshalIndent(c, "", "  ") }

func Unmarshal(data []byte) (Configuration, error) {
	var c Configuration
	if err := json.Unmarshal(data, &c); err != nil {
		return Configuration{}, err
	}
	if c.PerFeature == nil {
		c.PerFeature = map[FeatureName]*FeatureCfg{}
	}
	if c.PidSets == nil {
		c.PidSets = map[FeatureName][]uint32{}
	}
	if c.Filters == nil {
		c.Filters = map[wire.EventKind]FilterSpec{}
	}
	return c, nil
}
