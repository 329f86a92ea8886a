package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cilium/ebpf/ringbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrf-dev/probed/internal/decode"
	"github.com/nerrf-dev/probed/internal/dispatch"
	"github.com/nerrf-dev/probed/internal/wire"
)

// fakeReader replays a fixed queue of records, then blocks until
// closed, mimicking a ring buffer with no more data pending.
type fakeReader struct {
	mu     sync.Mutex
	queue  [][]byte
	closed bool
	block  chan struct{}
}

func newFakeReader(records ...[]byte) *fakeReader {
	return &fakeReader{queue: records, block: make(chan struct{})}
}

func (r *fakeReader) Read() (ringbuf.Record, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return ringbuf.Record{RawSample: next}, nil
	}
	closed := r.closed
	r.mu.Unlock()

	if closed {
		return ringbuf.Record{}, ringbuf.ErrClosed
	}
	<-r.block
	return ringbuf.Record{}, ringbuf.ErrClosed
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.block)
	}
	r.mu.Unlock()
	return nil
}

func writeRecord(t *testing.T) []byte {
	raw, err := decode.Encode(decode.Decoded{Kind: wire.KindWrite, Write: &wire.Write{Bytes: 42}})
	require.NoError(t, err)
	return raw
}

func TestActorDecodesAndForwardsRecords(t *testing.T) {
	d := dispatch.New(4)
	sub := d.Subscribe()

	reader := newFakeReader(writeRecord(t))
	actor := NewActor("write", reader, d)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- actor.Run(ctx) }()

	select {
	case ev := <-sub.Events:
		assert.Equal(t, wire.KindWrite, ev.Kind)
		assert.Equal(t, uint64(42), ev.Write.Bytes)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for decoded event")
	}

	cancel()
	reader.Close()
	require.NoError(t, <-done)
}

func TestActorReturnsTaskFailureOnReadError(t *testing.T) {
	reader := &erroringReader{err: errors.New("ring buffer torn down")}
	d := dispatch.New(4)
	actor := NewActor("blocking", reader, d)

	err := actor.Run(context.Background())
	assert.Error(t, err)
}

type erroringReader struct{ err error }

func (r *erroringReader) Read() (ringbuf.Record, error) { return ringbuf.Record{}, r.err }
func (r *erroringReader) Close() error                  { return nil }

func TestSupervisorRestartsFailingCollector(t *testing.T) {
	d := dispatch.New(4)
	s := NewSupervisor(d)

	attempts := 0
	var mu sync.Mutex

	open := func() (Reader, error) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()

		if n == 1 {
			return &erroringReader{err: errors.New("boom")}, nil
		}
		return newFakeReader(), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Spawn(ctx, "write", open))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts >= 2
	}, time.Second, 5*time.Millisecond, "supervisor must respawn after a collector failure")
}
