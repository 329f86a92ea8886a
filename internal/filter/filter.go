// Package filter implements the FilterEngine described in SPEC_FULL.md
// §4.5: a branch-free (used_mask, eq_mask) encoding that lets a single
// key->mask-pair map serve every event kind.
package filter

import "github.com/nerrf-dev/probed/internal/wire"

// MissingBehavior controls how a sub-filter resolves an absent key, or a
// present key that never opted this EventKind in.
type MissingBehavior int

const (
	// Match treats "no information" as a pass.
	Match MissingBehavior = iota
	// NotMatch treats "no information" as a suppress.
	NotMatch
)

// MaskPair is the value stored for a filter key: which kinds have an
// opinion about this key (UsedMask) and, for those kinds, which polarity
// (EqMask).
type MaskPair struct {
	EqMask   uint64
	UsedMask uint64
}

// Resolve evaluates one sub-filter lookup result against an EventKind.
func (mp MaskPair) resolve(kind wire.EventKind, missing MissingBehavior, present bool) bool {
	mask := kind.Mask()
	if !present || mp.UsedMask&mask == 0 {
		return missing == Match
	}
	return mp.EqMask&mask != 0
}

// SubFilter is one of the up to four configurable dimensions
// (pid/comm/exe-path/cmdline) of a FilterConfig entry.
type SubFilter[K comparable] struct {
	Entries map[K]MaskPair
	Missing MissingBehavior
}

// NewSubFilter constructs an empty, unconfigured sub-filter.
func NewSubFilter[K comparable](missing MissingBehavior) *SubFilter[K] {
	return &SubFilter[K]{Entries: make(map[K]MaskPair), Missing: missing}
}

// Configured reports whether this sub-filter has any entries at all. An
// unconfigured sub-filter is not consulted during evaluation.
func (s *SubFilter[K]) Configured() bool {
	return s != nil && len(s.Entries) > 0
}

func (s *SubFilter[K]) matches(kind wire.EventKind, key K) bool {
	if s == nil {
		return false
	}
	mp, ok := s.Entries[key]
	return mp.resolve(kind, s.Missing, ok)
}

// Set installs (or replaces) the mask pair for a key.
func (s *SubFilter[K]) Set(key K, mp MaskPair) { s.Entries[key] = mp }

// Delete removes a key entirely.
func (s *SubFilter[K]) Delete(key K) { delete(s.Entries, key) }

// Config holds up to four sub-filters for one EventKind's worth of
// filtering. A zero-value Config (no sub-filters configured) matches
// nothing: the event is always suppressed, per §4.5.
type Config struct {
	Pid     *SubFilter[uint32]
	Comm    *SubFilter[string]
	ExePath *SubFilter[string]
	Cmdline *SubFilter[string]
}

// Candidate is the observed context a filter evaluates against.
type Candidate struct {
	Pid     uint32
	Comm    string
	ExePath string
	Cmdline string
}

// Evaluate reports whether an event of the given kind, carrying candidate,
// should be emitted. All configured sub-filters must match, at least one
// sub-filter must be configured, and at least one entry across the
// configured sub-filters must carry kind's bit in its UsedMask — an
// entirely unconfigured Config, or one no entry opted kind into,
// suppresses every event of this kind.
func (c Config) Evaluate(kind wire.EventKind, candidate Candidate) bool {
	any := false
	all := true

	check := func(ok bool, configured bool) {
		if configured {
			any = true
			all = all && ok
		}
	}

	check(c.Pid.matches(kind, candidate.Pid), c.Pid.Configured())
	check(c.Comm.matches(kind, candidate.Comm), c.Comm.Configured())
	check(c.ExePath.matches(kind, candidate.ExePath), c.ExePath.Configured())
	check(c.Cmdline.matches(kind, candidate.Cmdline), c.Cmdline.Configured())

	mask := kind.Mask()
	used := false
	if c.Pid != nil {
		for _, mp := range c.Pid.Entries {
			used = used || mp.UsedMask&mask != 0
		}
	}
	for _, sf := range []*SubFilter[string]{c.Comm, c.ExePath, c.Cmdline} {
		if sf == nil {
			continue
		}
		for _, mp := range sf.Entries {
			used = used || mp.UsedMask&mask != 0
		}
	}

	return any && all && used
}
