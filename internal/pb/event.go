// Package pb defines the wire-level message shapes for the RPC surface
// in SPEC_FULL.md §6. Protobuf code generation is not run as part of
// this build (no protoc invocation), so these are hand-written Go
// structs rather than protoc-gen-go output; Timestamp fields still use
// the real google.golang.org/protobuf well-known type, and the wire
// encoding is handled by this package's JSON codec (see codec.go) which
// this module registers with grpc-go instead of the usual generated
// protobuf marshaling. DESIGN.md records the reasoning for this choice.
package pb

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/nerrf-dev/probed/internal/decode"
	"github.com/nerrf-dev/probed/internal/wire"
)

// EventContext is the wire projection of wire.EventContext: the kernel's
// monotonic timestamp is converted to wall-clock time via the daemon's
// recorded boot time (§6).
type EventContext struct {
	Pid       uint32               `json:"pid"`
	Tid       uint32               `json:"tid"`
	Timestamp *timestamppb.Timestamp `json:"timestamp"`
}

type WriteEvent struct {
	Source wire.WriteSource `json:"source"`
	Fd     uint64           `json:"fd"`
	Bytes  uint64           `json:"bytes"`
	Path   string           `json:"path"`
}

type BlockingEvent struct {
	SyscallID  uint64 `json:"syscall_id"`
	DurationNs uint64 `json:"duration_ns"`
}

type SignalEvent struct {
	TargetPid int32  `json:"target_pid"`
	Signal    uint32 `json:"signal"`
}

type FileDescriptorChangeEvent struct {
	OpenFds uint64                 `json:"open_fds"`
	Op      wire.FileDescriptorOp  `json:"op"`
}

type GarbageCollectEvent struct {
	TargetFootprint   uint64 `json:"target_footprint"`
	NumBytesAllocated uint64 `json:"num_bytes_allocated"`
	GcCause           uint32 `json:"gc_cause"`
	DurationNs        uint64 `json:"duration_ns"`
	FreedObjects      uint64 `json:"freed_objects"`
	FreedBytes        int64  `json:"freed_bytes"`
	FreedLosObjects   uint64 `json:"freed_los_objects"`
	FreedLosBytes     int64  `json:"freed_los_bytes"`
	GcsCompleted      uint32 `json:"gcs_completed"`
}

type JniReferencesEvent struct {
	Method wire.JniMethod `json:"method"`
}

// LogEvent carries one decoded event; exactly one kind-specific field
// is populated, mirroring the oneof described in §6.
type LogEvent struct {
	Context              EventContext               `json:"context"`
	Write                *WriteEvent                `json:"write,omitempty"`
	Blocking             *BlockingEvent             `json:"blocking,omitempty"`
	Signal               *SignalEvent               `json:"signal,omitempty"`
	FileDescriptorChange *FileDescriptorChangeEvent `json:"file_descriptor_change,omitempty"`
	GarbageCollect       *GarbageCollectEvent       `json:"garbage_collect,omitempty"`
	JniReferences        *JniReferencesEvent        `json:"jni_references,omitempty"`
}

// Event is the top-level message streamed by init_stream. The wire
// format's oneof allows for non-log event data in principle; this
// daemon only ever populates Log.
type Event struct {
	Log *LogEvent `json:"log,omitempty"`
}

// FromDecoded projects a decode.Decoded into the wire Event shape.
func FromDecoded(d decode.Decoded, bootTime time.Time) Event {
	wallTime := bootTime.Add(time.Duration(d.Context.TimestampNs) * time.Nanosecond)
	log := &LogEvent{
		Context: EventContext{
			Pid:       d.Context.Pid,
			Tid:       d.Context.Tid,
			Timestamp: timestamppb.New(wallTime),
		},
	}

	switch d.Kind {
	case wire.KindWrite:
		log.Write = &WriteEvent{Source: d.Write.Source, Fd: d.Write.Fd, Bytes: d.Write.Bytes, Path: d.Write.FdPathString()}
	case wire.KindBlocking:
		log.Blocking = &BlockingEvent{SyscallID: d.Blocking.SyscallID, DurationNs: d.Blocking.DurationNs}
	case wire.KindSignal:
		log.Signal = &SignalEvent{TargetPid: d.Signal.TargetPid, Signal: d.Signal.Signal}
	case wire.KindFileDescriptorChange:
		log.FileDescriptorChange = &FileDescriptorChangeEvent{OpenFds: d.FdChange.OpenFds, Op: d.FdChange.Op}
	case wire.KindGarbageCollect:
		log.GarbageCollect = &GarbageCollectEvent{
			TargetFootprint:   d.GC.TargetFootprint,
			NumBytesAllocated: d.GC.NumBytesAllocated,
			GcCause:           d.GC.GcCause,
			DurationNs:        d.GC.DurationNs,
			FreedObjects:      d.GC.FreedObjects,
			FreedBytes:        d.GC.FreedBytes,
			FreedLosObjects:   d.GC.FreedLosObjects,
			FreedLosBytes:     d.GC.FreedLosBytes,
			GcsCompleted:      d.GC.GcsCompleted,
		}
	case wire.KindJniReferences:
		log.JniReferences = &JniReferencesEvent{Method: d.Jni.Method}
	}

	return Event{Log: log}
}
