// Package configsvc wires config.Configuration to its two live
// consequences: the attach/detach state of every probe feature, and
// the FilterEngine configuration each kernelsim.Pipeline evaluates
// against. It is the get_configuration/set_configuration half of the
// RPC surface described in SPEC_FULL.md §6, kept separate from
// internal/config so the data model there stays free of the
// dependency this wiring needs on internal/feature and
// internal/kernelsim.
package configsvc

import (
	"sync"

	"github.com/nerrf-dev/probed/internal/confstore"
	"github.com/nerrf-dev/probed/internal/feature"
	"github.com/nerrf-dev/probed/internal/kernelsim"

	cfgpkg "github.com/nerrf-dev/probed/internal/config"
)

// Service owns the single persisted Configuration and applies it
// atomically to a feature.Set and one kernelsim.Pipeline per event
// family. §7 Policy: MapUpdateError and AttachError are rolled forward
// by reapplying the full configuration, never by patching in place.
type Service struct {
	store     confstore.Store
	features  *feature.Set
	pipelines map[string]*kernelsim.Pipeline

	mu  sync.Mutex
	cur cfgpkg.Configuration
}

// New loads the persisted configuration (or falls back to
// cfgpkg.Default() if none exists yet) and returns a Service ready to
// apply it.
func New(store confstore.Store, features *feature.Set, pipelines map[string]*kernelsim.Pipeline) (*Service, error) {
	s := &Service{store: store, features: features, pipelines: pipelines}

	data, err := store.Load()
	if err != nil {
		s.cur = cfgpkg.Default()
		return s, nil
	}

	cfg, err := cfgpkg.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	s.cur = cfg
	return s, nil
}

// Get returns a deep copy of the currently applied configuration,
// matching the "set_configuration(c); get_configuration() returns c"
// round-trip law in §8.
func (s *Service) Get() cfgpkg.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.Clone()
}

// Set applies cfg to every feature and pipeline, persists it, and only
// then makes it visible to Get. A failure applying to features does
// not prevent filters from being updated: both are attempted. A
// marshal or persistence failure is returned at once (cfg then does not
// become visible to Get, and any feature error is not reported);
// otherwise the feature-apply error, if any, is returned so the RPC
// layer can map it to a response.
func (s *Service) Set(cfg cfgpkg.Configuration) error {
	working := cfg.Clone()

	var featErr error
	if s.features != nil {
		featErr = s.features.Apply(working)
	}

	for kind, spec := range working.Filters {
		if p, ok := s.pipelines[kind.String()]; ok {
			p.SetFilter(kind, spec.ToEngine())
		}
	}
	for _, p := range s.pipelines {
		p.SetThresholds(working.GlobalThresholds)
	}

	data, err := working.Marshal()
	if err != nil {
		return err
	}
	if err := s.store.Save(data); err != nil {
		return err
	}

	s.mu.Lock()
	s.cur = working
	s.mu.Unlock()

	return featErr
}
