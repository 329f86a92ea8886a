// Package wire defines the fixed-layout kernel record types described in
// SPEC_FULL.md §3 DATA MODEL. These mirror the C/eBPF struct layouts the
// original daemon reads directly out of ring-buffer memory: fixed-size
// fields, no pointers, memcpy-friendly. The actual kernel programs are out
// of scope for a Go module (§1 Non-goals); this package is the decode-side
// and test-side contract those programs must satisfy.
package wire

import "fmt"

// EventKind discriminates the first byte of every kernel record. Values are
// stable across releases — never renumber.
type EventKind uint8

const (
	KindWrite EventKind = iota
	KindBlocking
	KindSignal
	KindFileDescriptorChange
	KindGarbageCollect
	KindJniReferences
)

// Mask returns the bit corresponding to this EventKind in a filter's
// (used_mask, eq_mask) pair.
func (k EventKind) Mask() uint64 { return 1 << uint(k) }

func (k EventKind) String() string {
	switch k {
	case KindWrite:
		return "write"
	case KindBlocking:
		return "blocking"
	case KindSignal:
		return "signal"
	case KindFileDescriptorChange:
		return "fd_change"
	case KindGarbageCollect:
		return "garbage_collect"
	case KindJniReferences:
		return "jni_references"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// AllKinds enumerates every supported event family, in wire-tag order.
var AllKinds = []EventKind{
	KindWrite, KindBlocking, KindSignal, KindFileDescriptorChange,
	KindGarbageCollect, KindJniReferences,
}

const (
	commLen    = 16
	cmdlineLen = 256
	exePathLen = 4096
)

// EventContext is attached to every emitted record.
type EventContext struct {
	Pid         uint32
	Tid         uint32
	Ppid        uint32
	Comm        [commLen]byte
	TimestampNs uint64
}

// CommString trims the trailing NUL padding off Comm.
func (c EventContext) CommString() string { return cString(c.Comm[:]) }

// ProcessContext is cached per pid; populated once on first touch.
type ProcessContext struct {
	Cmdline [cmdlineLen]byte
	ExePath [exePathLen]byte
}

func (p ProcessContext) CmdlineString() string { return cString(p.Cmdline[:]) }
func (p ProcessContext) ExePathString() string { return cString(p.ExePath[:]) }

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// WriteSource enumerates the syscalls the Write feature correlates.
type WriteSource uint8

const (
	WriteSourceWrite WriteSource = iota
	WriteSourceWrite64
	WriteSourceWritev
	WriteSourceWritev2
)

// Write is the kind-specific payload for a Write event.
type Write struct {
	Source  WriteSource
	Fd      uint64
	Bytes   uint64
	FdPath  [exePathLen]byte
}

func (w Write) FdPathString() string { return cString(w.FdPath[:]) }

// Blocking is the kind-specific payload for a Blocking event.
type Blocking struct {
	SyscallID  uint64
	DurationNs uint64
}

// Signal is the kind-specific payload for a Signal event.
type Signal struct {
	TargetPid int32
	Signal    uint32
}

// FileDescriptorOp enumerates whether an fd-tracking event is an open or a
// close.
type FileDescriptorOp uint8

const (
	FdOpOpen FileDescriptorOp = iota
	FdOpClose
	FdOpNone
)

// FileDescriptorChange is the kind-specific payload for an fd-count event.
type FileDescriptorChange struct {
	OpenFds uint64
	Op      FileDescriptorOp
}

// GarbageCollect is the kind-specific payload for a GC event, read from the
// ART heap structure via the build-time offset table (internal/offsets).
type GarbageCollect struct {
	TargetFootprint    uint64
	NumBytesAllocated  uint64
	GcCause            uint32
	DurationNs         uint64
	FreedObjects       uint64
	FreedBytes         int64
	FreedLosObjects    uint64
	FreedLosBytes      int64
	GcsCompleted       uint32
}

// JniMethod enumerates the four JNI reference probes.
type JniMethod uint8

const (
	JniAddLocal JniMethod = iota
	JniDeleteLocal
	JniAddGlobal
	JniDeleteGlobal
)

// JniReferences is the kind-specific payload for a JNI reference event;
// these are single-shot (no enter/exit pairing).
type JniReferences struct {
	Method JniMethod
}

// Record is a fixed-layout event of a specific kind, as it exists in the
// ring buffer: a kind tag, the common context, and kind-specific data.
// The total size must stay within the 8 KiB record budget (§3).
type Record[D any] struct {
	Kind    EventKind
	Context EventContext
	Data    D
}

// EnterState is the transient per-(kind,tid) bridge between an enter probe
// and its matching exit probe. Only the fields measurable at enter but
// needed at exit belong here — never whole records.
type EnterState struct {
	Initialized bool
	StartNs     uint64

	// Write
	WriteSource WriteSource
	WriteFd     uint64
	WriteBytes  uint64

	// Blocking
	SyscallID uint64

	// Signal
	SignalTargetPid int32
	SignalNumber    uint32

	// FileDescriptorChange
	FdOp FileDescriptorOp

	// JniReferences uses no enter state (single-event).

	// GarbageCollect
	HeapPtr uint64
}

// EnterKey identifies a transient EnterState slot. Keying by (kind, tid)
// rather than a shared per-CPU scratch lets preemption occur safely
// between the enter and exit probe invocations of the same logical call.
type EnterKey struct {
	Kind EventKind
	Tid  uint32
}
