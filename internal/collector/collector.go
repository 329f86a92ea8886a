// Package collector implements the CollectorActor and Supervisor
// described in SPEC_FULL.md §4.6: one actor per ring buffer, decoding
// and forwarding every record to the EventDispatcher, with the
// supervisor restarting a failed collector without losing already
// buffered data or affecting any other event family.
package collector

import (
	"context"
	"errors"

	"github.com/cilium/ebpf/ringbuf"

	"github.com/nerrf-dev/probed/internal/decode"
	"github.com/nerrf-dev/probed/internal/dispatch"
	"github.com/nerrf-dev/probed/internal/log"
	"github.com/nerrf-dev/probed/internal/nerrferr"
)

// Reader is the subset of *ringbuf.Reader a CollectorActor depends on;
// tests substitute a fake that never touches a kernel map.
type Reader interface {
	Read() (ringbuf.Record, error)
	Close() error
}

// Actor owns one ring buffer's worth of records for a single event
// family. Run drains it until the reader is closed, the context is
// cancelled, or a read error that is not a plain close occurs.
type Actor struct {
	family string
	reader Reader
	sink   *dispatch.Dispatcher
}

// NewActor builds a collector for one named event family.
func NewActor(family string, reader Reader, sink *dispatch.Dispatcher) *Actor {
	return &Actor{family: family, reader: reader, sink: sink}
}

// Run implements the message loop from §4.6: await readability (the
// blocking Read call), drain what's available, decode, forward,
// repeat. Decode failures are counted and skipped; they never stop the
// loop. Run returns nil on an orderly close (context cancellation or
// reader.Close from elsewhere), and a *nerrferr.TaskFailure on any
// other read error, which the supervisor treats as a restart signal.
func (a *Actor) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		rec, err := a.reader.Read()
		if err != nil {
			if errors.Is(err, ringbuf.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return &nerrferr.TaskFailure{Actor: a.family, Err: err}
		}

		decoded, err := decode.Decode(rec.RawSample)
		if err != nil {
			log.L().Debugw("dropping malformed ring buffer record", "family", a.family, "error", err)
			continue
		}

		a.sink.Publish(decoded)
	}
}

// Close releases the underlying ring buffer reader.
func (a *Actor) Close() error { return a.reader.Close() }

