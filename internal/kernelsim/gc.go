package kernelsim

import (
	"encoding/binary"

	"github.com/nerrf-dev/probed/internal/offsets"
	"github.com/nerrf-dev/probed/internal/wire"
)

// OnGCEnter records the heap pointer passed to Heap::CollectGarbage;
// every field needed at exit is read out of that pointer's target by
// offset, never by following further pointers (§9 Offset-based heap
// reads).
func (p *Pipeline) OnGCEnter(tid uint32, nowNs, heapPtr uint64) {
	if _, ok := p.allowed(wire.KindGarbageCollect, tid); !ok {
		return
	}
	p.setEnter(wire.EnterKey{Kind: wire.KindGarbageCollect, Tid: tid}, wire.EnterState{
		Initialized: true,
		StartNs:     nowNs,
		HeapPtr:     heapPtr,
	})
}

// OnGCExit reads heapMem (standing in for a read of heapPtr-relative
// kernel memory) through layout and emits the GarbageCollect payload. A
// layout/heapMem mismatch (buffer too short for a field's offset+size)
// fails loudly rather than silently truncating, per §9.
func (p *Pipeline) OnGCExit(tid uint32, layout offsets.HeapLayout, heapMem []byte) (bool, error) {
	_, ok := p.takeEnter(wire.EnterKey{Kind: wire.KindGarbageCollect, Tid: tid})
	if !ok {
		return false, nil
	}
	ctx, allowed := p.allowed(wire.KindGarbageCollect, tid)
	if !allowed {
		return false, nil
	}

	read := func(f offsets.Field) (uint64, error) {
		end := f.Offset + f.Size
		if end > uint64(len(heapMem)) {
			return 0, &offsetOutOfRangeError{field: f, bufLen: len(heapMem)}
		}
		buf := heapMem[f.Offset:end]
		switch f.Size {
		case 4:
			return uint64(binary.LittleEndian.Uint32(buf)), nil
		case 8:
			return binary.LittleEndian.Uint64(buf), nil
		default:
			return 0, &offsetOutOfRangeError{field: f, bufLen: len(heapMem)}
		}
	}

	var g wire.GarbageCollect
	var err error
	if g.TargetFootprint, err = read(layout.TargetFootprint); err != nil {
		return false, err
	}
	if g.NumBytesAllocated, err = read(layout.NumBytesAllocated); err != nil {
		return false, err
	}
	var v uint64
	if v, err = read(layout.GcCause); err != nil {
		return false, err
	}
	g.GcCause = uint32(v)
	if g.DurationNs, err = read(layout.DurationNs); err != nil {
		return false, err
	}
	if g.FreedObjects, err = read(layout.FreedObjects); err != nil {
		return false, err
	}
	if v, err = read(layout.FreedBytes); err != nil {
		return false, err
	}
	g.FreedBytes = int64(v)
	if g.FreedLosObjects, err = read(layout.FreedLosObjects); err != nil {
		return false, err
	}
	if v, err = read(layout.FreedLosBytes); err != nil {
		return false, err
	}
	g.FreedLosBytes = int64(v)
	if v, err = read(layout.GcsCompleted); err != nil {
		return false, err
	}
	g.GcsCompleted = uint32(v)

	p.emit(Emitted{Kind: wire.KindGarbageCollect, Context: ctx, GC: &g})
	return true, nil
}

type offsetOutOfRangeError struct {
	field  offsets.Field
	bufLen int
}

func (e *offsetOutOfRangeError) Error() string {
	return "kernelsim: heap field offset out of range for supplied buffer"
}
