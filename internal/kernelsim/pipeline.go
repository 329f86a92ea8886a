// Package kernelsim is a Go-side reference model of the per-event-kind
// enter/exit handlers described in SPEC_FULL.md §4.3. The actual kernel
// programs are out of scope for this module (§1 Non-goals: no eBPF C or
// bytecode); this package exists so the invariants in §8 TESTABLE
// PROPERTIES are exercised and pinned down in Go without a real kernel;
// internal/configsvc's tests also drive it as the target of filter and
// threshold updates.
package kernelsim

import (
	"sync"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/contextcache"
	"github.com/nerrf-dev/probed/internal/filter"
	"github.com/nerrf-dev/probed/internal/wire"
)

// Emitted is one decision the pipeline made to surface an event; exactly
// one of the kind-specific pointers is non-nil, matching the kind tag.
type Emitted struct {
	Kind     wire.EventKind
	Context  wire.EventContext
	Write    *wire.Write
	Blocking *wire.Blocking
	Signal   *wire.Signal
	FdChange *wire.FileDescriptorChange
	GC       *wire.GarbageCollect
	Jni      *wire.JniReferences
}

// Sink receives every event the pipeline decides to emit, in evaluation
// order. Production wiring hands this to the ring-buffer encoding stage;
// tests substitute a slice-collecting Sink.
type Sink interface {
	Submit(Emitted)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Emitted)

func (f SinkFunc) Submit(e Emitted) { f(e) }

// Pipeline holds the per-(kind,tid) enter-state table, the context
// cache, and the live filter configuration for every event kind. Its
// enter-state map is shared across concurrently-invoked handlers
// (single-writer-per-key in the real kernel, last-writer-wins here, per
// §5).
type Pipeline struct {
	cache      *contextcache.Cache
	sink       Sink
	thresholds config.Thresholds

	mu      sync.Mutex
	filters map[wire.EventKind]filter.Config
	enter   map[wire.EnterKey]wire.EnterState
}

// New builds a Pipeline. filters may be updated in place afterward via
// SetFilter, mirroring the live reconfiguration path in §5 ("detaches
// links and updates filter maps without restarting actors").
func New(cache *contextcache.Cache, sink Sink, thresholds config.Thresholds) *Pipeline {
	return &Pipeline{
		cache:      cache,
		sink:       sink,
		thresholds: thresholds,
		filters:    make(map[wire.EventKind]filter.Config),
		enter:      make(map[wire.EnterKey]wire.EnterState),
	}
}

// SetFilter installs the filter configuration for one event kind,
// replacing any previous one wholesale (§5: "each update is a whole-key
// replacement").
func (p *Pipeline) SetFilter(kind wire.EventKind, cfg filter.Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters[kind] = cfg
}

// SetThresholds updates the daemon-wide numeric knobs (currently just
// the blocking-duration threshold).
func (p *Pipeline) SetThresholds(t config.Thresholds) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.thresholds = t
}

func (p *Pipeline) emit(e Emitted) {
	if p.sink != nil {
		p.sink.Submit(e)
	}
}

// candidate resolves the context and filter candidate for tid, reading
// through the context cache (populating it on a cold miss).
func (p *Pipeline) candidate(tid uint32) (filter.Candidate, wire.EventContext, bool) {
	ctx, ok := p.cache.TaskContext(tid)
	if !ok {
		return filter.Candidate{}, wire.EventContext{}, false
	}
	proc, _ := p.cache.ProcessContext(ctx.Pid)
	cand := filter.Candidate{
		Pid:     ctx.Pid,
		Comm:    ctx.CommString(),
		ExePath: proc.ExePathString(),
		Cmdline: proc.CmdlineString(),
	}
	return cand, ctx, true
}

// allowed evaluates the FilterEngine for kind against tid's current
// context, short-circuiting work for threads the cache cannot resolve.
func (p *Pipeline) allowed(kind wire.EventKind, tid uint32) (wire.EventContext, bool) {
	cand, ctx, ok := p.candidate(tid)
	if !ok {
		return wire.EventContext{}, false
	}

	p.mu.Lock()
	cfg, configured := p.filters[kind]
	p.mu.Unlock()
	if !configured {
		return ctx, false
	}

	return ctx, cfg.Evaluate(kind, cand)
}

func (p *Pipeline) setEnter(key wire.EnterKey, st wire.EnterState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enter[key] = st
}

// takeEnter looks up and deletes the enter-state slot for key, reporting
// whether an initialized slot was present.
func (p *Pipeline) takeEnter(key wire.EnterKey) (wire.EnterState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.enter[key]
	delete(p.enter, key)
	if !ok || !st.Initialized {
		return wire.EnterState{}, false
	}
	return st, true
}

// PendingCount reports how many enter-state slots are currently parked,
// mostly useful for tests asserting no slot leaks across an enter/exit
// pair.
func (p *Pipeline) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.enter)
}
