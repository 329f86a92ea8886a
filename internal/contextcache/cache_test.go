package contextcache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nerrf-dev/probed/internal/contextcache"
	"github.com/nerrf-dev/probed/internal/wire"
)

type fakeSource struct {
	task    map[uint32]wire.EventContext
	process map[uint32]wire.ProcessContext
	misses  int
}

func (f *fakeSource) TaskContext(tid uint32) (wire.EventContext, bool) {
	f.misses++
	ctx, ok := f.task[tid]
	return ctx, ok
}

func (f *fakeSource) ProcessContext(pid uint32) (wire.ProcessContext, bool) {
	ctx, ok := f.process[pid]
	return ctx, ok
}

func TestCache_PopulatesOnceThenCaches(t *testing.T) {
	src := &fakeSource{task: map[uint32]wire.EventContext{7: {Pid: 1, Tid: 7, Ppid: 1}}}
	c := contextcache.New(src, 0)

	ctx, ok := c.TaskContext(7)
	require.True(t, ok)
	require.EqualValues(t, 1, ctx.Ppid)

	_, ok = c.TaskContext(7)
	require.True(t, ok)
	require.Equal(t, 1, src.misses, "second lookup should hit the cache, not the source")
}

func TestCache_MissReturnsFalse(t *testing.T) {
	src := &fakeSource{}
	c := contextcache.New(src, 0)
	_, ok := c.TaskContext(999)
	require.False(t, ok)
}

func TestCache_InvalidateForcesRefetch(t *testing.T) {
	src := &fakeSource{task: map[uint32]wire.EventContext{7: {Tid: 7}}}
	c := contextcache.New(src, 0)

	_, _ = c.TaskContext(7)
	c.InvalidateTid(7)
	_, _ = c.TaskContext(7)

	require.Equal(t, 2, src.misses)
}
