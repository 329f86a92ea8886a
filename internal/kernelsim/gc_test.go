package kernelsim

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/contextcache"
	"github.com/nerrf-dev/probed/internal/offsets"
	"github.com/nerrf-dev/probed/internal/wire"
)

func TestGCReadsHeapFieldsByOffset(t *testing.T) {
	source := &fakeTaskSource{
		contexts: map[uint32]wire.EventContext{testTid: newEventContext(testTid, testTid, "system_server")},
		procs:    map[uint32]wire.ProcessContext{testTid: newProcessContext("/system/bin/app_process64")},
	}
	cache := contextcache.New(source, 0)
	events, sink := collectingSink()
	p := New(cache, sink, config.Thresholds{})
	p.SetFilter(wire.KindGarbageCollect, pidFilter(testTid, wire.KindGarbageCollect))

	layout, err := offsets.ForArch("amd64")
	require.NoError(t, err)

	heapMem := make([]byte, 2048)
	binary.LittleEndian.PutUint64(heapMem[layout.TargetFootprint.Offset:], 1<<20)
	binary.LittleEndian.PutUint64(heapMem[layout.NumBytesAllocated.Offset:], 1<<18)
	binary.LittleEndian.PutUint32(heapMem[layout.GcCause.Offset:], 2)
	binary.LittleEndian.PutUint64(heapMem[layout.DurationNs.Offset:], 4_000_000)
	binary.LittleEndian.PutUint64(heapMem[layout.FreedObjects.Offset:], 10)
	binary.LittleEndian.PutUint64(heapMem[layout.FreedBytes.Offset:], 2048)
	binary.LittleEndian.PutUint64(heapMem[layout.FreedLosObjects.Offset:], 1)
	binary.LittleEndian.PutUint64(heapMem[layout.FreedLosBytes.Offset:], 512)
	binary.LittleEndian.PutUint32(heapMem[layout.GcsCompleted.Offset:], 7)

	p.OnGCEnter(testTid, 1000, 0xdeadbeef)
	ok, err := p.OnGCExit(testTid, layout, heapMem)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, *events, 1)

	g := (*events)[0].GC
	assert.Equal(t, uint64(1<<20), g.TargetFootprint)
	assert.Equal(t, uint64(1<<18), g.NumBytesAllocated)
	assert.Equal(t, uint32(2), g.GcCause)
	assert.Equal(t, uint64(4_000_000), g.DurationNs)
	assert.Equal(t, uint64(10), g.FreedObjects)
	assert.Equal(t, int64(2048), g.FreedBytes)
	assert.Equal(t, uint64(1), g.FreedLosObjects)
	assert.Equal(t, int64(512), g.FreedLosBytes)
	assert.Equal(t, uint32(7), g.GcsCompleted)
}

func TestGCFailsLoudlyOnBufferTooShortForLayout(t *testing.T) {
	source := &fakeTaskSource{
		contexts: map[uint32]wire.EventContext{testTid: newEventContext(testTid, testTid, "system_server")},
		procs:    map[uint32]wire.ProcessContext{testTid: newProcessContext("/system/bin/app_process64")},
	}
	cache := contextcache.New(source, 0)
	_, sink := collectingSink()
	p := New(cache, sink, config.Thresholds{})
	p.SetFilter(wire.KindGarbageCollect, pidFilter(testTid, wire.KindGarbageCollect))

	layout, err := offsets.ForArch("amd64")
	require.NoError(t, err)

	p.OnGCEnter(testTid, 1000, 0xdeadbeef)
	ok, err := p.OnGCExit(testTid, layout, make([]byte, 4))
	assert.Error(t, err)
	assert.False(t, ok)
}
