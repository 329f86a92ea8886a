// Package decode implements the EventDecoder described in SPEC_FULL.md
// §6: every ring-buffer record begins with a single unsigned byte
// EventKind, followed by a fixed-size, kind-specific payload with
// stable field offsets on both supported 64-bit little-endian
// architectures. Decode turns that byte slice into the normalized Go
// value the dispatcher and RPC layer consume.
package decode

import (
	"bytes"
	"encoding/binary"

	"github.com/nerrf-dev/probed/internal/metrics"
	"github.com/nerrf-dev/probed/internal/nerrferr"
	"github.com/nerrf-dev/probed/internal/wire"
)

// Decoded is one normalized event, exactly one kind-specific field set
// matching Kind.
type Decoded struct {
	Kind     wire.EventKind
	Context  wire.EventContext
	Write    *wire.Write
	Blocking *wire.Blocking
	Signal   *wire.Signal
	FdChange *wire.FileDescriptorChange
	GC       *wire.GarbageCollect
	Jni      *wire.JniReferences
}

// Decode parses one raw ring-buffer record. Malformed records (too
// short, unknown kind, truncated payload) are reported as a
// *nerrferr.DecodeError and also counted in metrics.DecodeErrors;
// callers must drop the record and continue rather than treat this as
// fatal (§7 Policy).
func Decode(raw []byte) (Decoded, error) {
	if len(raw) < 1 {
		metrics.DecodeErrors.WithLabelValues("unknown").Inc()
		return Decoded{}, &nerrferr.DecodeError{Kind: "unknown", Reason: "record has no kind byte"}
	}

	kind := wire.EventKind(raw[0])
	r := bytes.NewReader(raw[1:])

	var ctx wire.EventContext
	if err := binary.Read(r, binary.LittleEndian, &ctx); err != nil {
		metrics.DecodeErrors.WithLabelValues(kind.String()).Inc()
		return Decoded{}, &nerrferr.DecodeError{Kind: kind.String(), Reason: "truncated context: " + err.Error()}
	}

	out := Decoded{Kind: kind, Context: ctx}

	switch kind {
	case wire.KindWrite:
		var w wire.Write
		if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
			return fail(kind, err)
		}
		out.Write = &w
	case wire.KindBlocking:
		var b wire.Blocking
		if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
			return fail(kind, err)
		}
		out.Blocking = &b
	case wire.KindSignal:
		var s wire.Signal
		if err := binary.Read(r, binary.LittleEndian, &s); err != nil {
			return fail(kind, err)
		}
		out.Signal = &s
	case wire.KindFileDescriptorChange:
		var fd wire.FileDescriptorChange
		if err := binary.Read(r, binary.LittleEndian, &fd); err != nil {
			return fail(kind, err)
		}
		out.FdChange = &fd
	case wire.KindGarbageCollect:
		var g wire.GarbageCollect
		if err := binary.Read(r, binary.LittleEndian, &g); err != nil {
			return fail(kind, err)
		}
		out.GC = &g
	case wire.KindJniReferences:
		var j wire.JniReferences
		if err := binary.Read(r, binary.LittleEndian, &j); err != nil {
			return fail(kind, err)
		}
		out.Jni = &j
	default:
		metrics.DecodeErrors.WithLabelValues(kind.String()).Inc()
		return Decoded{}, &nerrferr.DecodeError{Kind: kind.String(), Reason: "unrecognized event kind tag"}
	}

	return out, nil
}

func fail(kind wire.EventKind, err error) (Decoded, error) {
	metrics.DecodeErrors.WithLabelValues(kind.String()).Inc()
	return Decoded{}, &nerrferr.DecodeError{Kind: kind.String(), Reason: "truncated payload: " + err.Error()}
}

// Encode is the inverse of Decode, used by tests exercising the
// round-trip law in §8: decoding a record then re-encoding it must
// reproduce the same kind tag and context fields.
func Encode(d Decoded) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(d.Kind))
	if err := binary.Write(&buf, binary.LittleEndian, d.Context); err != nil {
		return nil, err
	}

	var payload any
	switch d.Kind {
	case wire.KindWrite:
		payload = d.Write
	case wire.KindBlocking:
		payload = d.Blocking
	case wire.KindSignal:
		payload = d.Signal
	case wire.KindFileDescriptorChange:
		payload = d.FdChange
	case wire.KindGarbageCollect:
		payload = d.GC
	case wire.KindJniReferences:
		payload = d.Jni
	default:
		return nil, &nerrferr.DecodeError{Kind: d.Kind.String(), Reason: "unrecognized event kind tag"}
	}

	if err := binary.Write(&buf, binary.LittleEndian, payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
