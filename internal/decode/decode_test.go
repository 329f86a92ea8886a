package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrf-dev/probed/internal/wire"
)

func sampleContext() wire.EventContext {
	var ctx wire.EventContext
	ctx.Pid, ctx.Tid, ctx.Ppid = 100, 101, 1
	copy(ctx.Comm[:], "sampled")
	ctx.TimestampNs = 123456789
	return ctx
}

func TestRoundTripEveryKind(t *testing.T) {
	cases := []Decoded{
		{Kind: wire.KindWrite, Context: sampleContext(), Write: &wire.Write{Source: wire.WriteSourceWritev, Fd: 4, Bytes: 99}},
		{Kind: wire.KindBlocking, Context: sampleContext(), Blocking: &wire.Blocking{SyscallID: 98, DurationNs: 55_000_000}},
		{Kind: wire.KindSignal, Context: sampleContext(), Signal: &wire.Signal{TargetPid: 777, Signal: 9}},
		{Kind: wire.KindFileDescriptorChange, Context: sampleContext(), FdChange: &wire.FileDescriptorChange{OpenFds: 7, Op: wire.FdOpOpen}},
		{Kind: wire.KindGarbageCollect, Context: sampleContext(), GC: &wire.GarbageCollect{TargetFootprint: 1024, FreedBytes: -5}},
		{Kind: wire.KindJniReferences, Context: sampleContext(), Jni: &wire.JniReferences{Method: wire.JniAddGlobal}},
	}

	for _, c := range cases {
		raw, err := Encode(c)
		require.NoError(t, err, c.Kind)

		got, err := Decode(raw)
		require.NoError(t, err, c.Kind)

		assert.Equal(t, c.Kind, got.Kind)
		assert.Equal(t, c.Context, got.Context)
		assert.Equal(t, c.Kind, wire.EventKind(raw[0]))
	}
}

func TestDecodeRejectsEmptyRecord(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	raw := make([]byte, 64)
	raw[0] = 0xFF
	_, err := Decode(raw)
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	c := Decoded{Kind: wire.KindWrite, Context: sampleContext(), Write: &wire.Write{Bytes: 1}}
	raw, err := Encode(c)
	require.NoError(t, err)

	_, err = Decode(raw[:len(raw)-10])
	assert.Error(t, err)
}
