// Package contextcache is the userland mirror of the kernel LRU maps
// described in SPEC_FULL.md §4.4: per-thread and per-process context,
// populated lazily on first touch and cached by key. Kernel LRU eviction is
// approximated here with github.com/hashicorp/golang-lru/v2, the idiom the
// retrieval pack's podtrace tracer uses for its own userspace process-name
// cache.
package contextcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nerrf-dev/probed/internal/wire"
)

const defaultCapacity = 8192

// TaskSource resolves the fields a TaskContext needs from a live task —
// the Go-side stand-in for reading task_struct fields directly, since the
// real traversal happens in kernel space. Implementations must look up:
// tgid, pid, ppid (per the mandated
// ppid = group_leader(real_parent(group_leader(task))).pid), and comm.
type TaskSource interface {
	TaskContext(tid uint32) (wire.EventContext, bool)
	ProcessContext(pid uint32) (wire.ProcessContext, bool)
}

// Cache caches EventContext by tid and ProcessContext by pid, populating
// both lazily from a TaskSource on first miss.
type Cache struct {
	source  TaskSource
	byTid   *lru.Cache[uint32, wire.EventContext]
	byPid   *lru.Cache[uint32, wire.ProcessContext]
}

// New builds a Cache bounded to capacity entries per map (0 uses the
// default). source supplies cold-cache reads.
func New(source TaskSource, capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	byTid, _ := lru.New[uint32, wire.EventContext](capacity)
	byPid, _ := lru.New[uint32, wire.ProcessContext](capacity)
	return &Cache{source: source, byTid: byTid, byPid: byPid}
}

// TaskContext returns the cached context for tid, populating it from the
// TaskSource on a cold miss. Stale reads after an out-of-band field update
// are explicitly acceptable per §4.4.
func (c *Cache) TaskContext(tid uint32) (wire.EventContext, bool) {
	if ctx, ok := c.byTid.Get(tid); ok {
		return ctx, true
	}
	ctx, ok := c.source.TaskContext(tid)
	if !ok {
		return wire.EventContext{}, false
	}
	c.byTid.Add(tid, ctx)
	return ctx, true
}

// ProcessContext returns the cached per-pid context, populating it on a
// cold miss.
func (c *Cache) ProcessContext(pid uint32) (wire.ProcessContext, bool) {
	if ctx, ok := c.byPid.Get(pid); ok {
		return ctx, true
	}
	ctx, ok := c.source.ProcessContext(pid)
	if !ok {
		return wire.ProcessContext{}, false
	}
	c.byPid.Add(pid, ctx)
	return ctx, true
}

// InvalidateTid drops a cached per-thread entry, e.g. on thread exit.
func (c *Cache) InvalidateTid(tid uint32) { c.byTid.Remove(tid) }

// InvalidatePid drops a cached per-process entry, e.g. on process exit.
func (c *Cache) InvalidatePid(pid uint32) { c.byPid.Remove(pid) }

// Len reports the current population of each cache, for tests and metrics.
func (c *Cache) Len() (tids, pids int) { return c.byTid.Len(), c.byPid.Len() }
