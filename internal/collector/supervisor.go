package collector

import (
	"context"
	"sync"

	"github.com/nerrf-dev/probed/internal/dispatch"
	"github.com/nerrf-dev/probed/internal/log"
	"github.com/nerrf-dev/probed/internal/metrics"
	"github.com/nerrf-dev/probed/internal/nerrferr"
)

// Open builds a fresh Reader for a named event family, e.g. re-opening
// a *ringbuf.Reader against the family's pinned map. Supervisor calls
// this once at Spawn and again on every restart.
type Open func() (Reader, error)

// Supervisor owns one Actor per configured ring buffer plus the shared
// EventDispatcher. A collector's failure triggers a respawn from its
// Open func, which re-reads the same underlying kernel ring buffer and
// so loses nothing already produced but not yet consumed; a
// dispatcher failure is not possible here since Dispatcher has no
// failure mode of its own, but OnFatal models the "fails upward" path
// from §4.6 for symmetry with the original actor design.
type Supervisor struct {
	dispatcher *dispatch.Dispatcher
	OnFatal    func(family string, err error)

	mu      sync.Mutex
	openers map[string]Open
	actors  map[string]*Actor
	wg      sync.WaitGroup
}

// NewSupervisor builds a Supervisor broadcasting through dispatcher.
func NewSupervisor(dispatcher *dispatch.Dispatcher) *Supervisor {
	return &Supervisor{
		dispatcher: dispatcher,
		openers:    make(map[string]Open),
		actors:     make(map[string]*Actor),
	}
}

// Spawn opens and starts a collector for family, restarting it
// automatically on failure until ctx is cancelled.
func (s *Supervisor) Spawn(ctx context.Context, family string, open Open) error {
	s.mu.Lock()
	s.openers[family] = open
	s.mu.Unlock()

	return s.spawn(ctx, family)
}

func (s *Supervisor) spawn(ctx context.Context, family string) error {
	s.mu.Lock()
	open := s.openers[family]
	s.mu.Unlock()

	reader, err := open()
	if err != nil {
		return &nerrferr.TaskFailure{Actor: family, Err: err}
	}

	actor := NewActor(family, reader, s.dispatcher)

	s.mu.Lock()
	s.actors[family] = actor
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		stop := context.AfterFunc(ctx, func() { _ = reader.Close() })
		runErr := actor.Run(ctx)
		stop()
		if runErr == nil || ctx.Err() != nil {
			return
		}

		metrics.CollectorRestarts.WithLabelValues(family).Inc()
		log.L().Warnw("collector actor failed, restarting", "family", family, "error", runErr)

		if respawnErr := s.spawn(ctx, family); respawnErr != nil && s.OnFatal != nil {
			s.OnFatal(family, respawnErr)
		}
	}()

	return nil
}

// Actor returns the currently live actor for family, if any; mostly
// useful for tests asserting a restart actually replaced the instance.
func (s *Supervisor) Actor(family string) *Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actors[family]
}

// Wait blocks until every spawned actor goroutine has returned, which
// happens once ctx is cancelled (or, in a test, once every reader
// reports closed).
func (s *Supervisor) Wait() { s.wg.Wait() }
