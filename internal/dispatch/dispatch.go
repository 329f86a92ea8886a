// Package dispatch implements the EventDispatcher described in
// SPEC_FULL.md §4.7: a single consumer of decoded events, fanning out
// to any number of RPC subscribers over bounded channels. A slow
// subscriber never blocks the pipeline; it drops its own oldest queued
// item and is told how many it missed.
package dispatch

import (
	"strconv"
	"sync"

	"github.com/nerrf-dev/probed/internal/decode"
	"github.com/nerrf-dev/probed/internal/metrics"
)

const defaultSubscriberBuffer = 256

// Subscription is a single subscriber's view onto the broadcast: Events
// delivers decoded events in arrival order; Lag delivers a running
// dropped-event count whenever this subscriber falls behind. Cancel
// unregisters the subscription; it is idempotent.
type Subscription struct {
	id     uint64
	Events <-chan decode.Decoded
	Lag    <-chan uint64

	d *Dispatcher
}

// Cancel drops this subscriber from the broadcast. Safe to call more
// than once.
func (s *Subscription) Cancel() {
	s.d.unsubscribe(s.id)
}

type subscriber struct {
	events  chan decode.Decoded
	lag     chan uint64
	dropped uint64
}

// Dispatcher is the single-writer broadcast hub. Publish is called from
// the collector loop; Subscribe is called by each RPC stream handler.
type Dispatcher struct {
	bufferSize int

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
}

// New builds a Dispatcher whose per-subscriber channel holds
// bufferSize events before the oldest is dropped (0 uses a sensible
// default).
func New(bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = defaultSubscriberBuffer
	}
	return &Dispatcher{bufferSize: bufferSize, subs: make(map[uint64]*subscriber)}
}

// Subscribe registers a new subscriber and returns its handle.
func (d *Dispatcher) Subscribe() *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++

	sub := &subscriber{
		events: make(chan decode.Decoded, d.bufferSize),
		lag:    make(chan uint64, 1),
	}
	d.subs[id] = sub

	return &Subscription{id: id, Events: sub.events, Lag: sub.lag, d: d}
}

func (d *Dispatcher) unsubscribe(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sub, ok := d.subs[id]
	if !ok {
		return
	}
	delete(d.subs, id)
	close(sub.events)
	close(sub.lag)
}

// Publish fans ev out to every current subscriber. A subscriber whose
// channel is full has its oldest buffered event dropped to make room;
// Publish itself never blocks, matching "the dispatcher never blocks
// the pipeline" (§4.7).
func (d *Dispatcher) Publish(ev decode.Decoded) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, sub := range d.subs {
		d.deliver(id, sub, ev)
	}
}

func (d *Dispatcher) deliver(id uint64, sub *subscriber, ev decode.Decoded) {
	select {
	case sub.events <- ev:
		return
	default:
	}

	// Buffer full: drop the oldest queued event to make room for ev,
	// then record the lag for this subscriber only.
	select {
	case <-sub.events:
		sub.dropped++
	default:
	}

	select {
	case sub.events <- ev:
	default:
		// Another goroutine drained concurrently in a way that left no
		// room; this subscriber simply misses ev too.
		sub.dropped++
	}

	metrics.SubscriberLag.WithLabelValues(subscriberLabel(id)).Inc()

	select {
	case sub.lag <- sub.dropped:
	default:
		// A lag notification is already pending and carries an older
		// count; skip rather than block. The running total reaches the
		// subscriber with the next notification after it drains this one.
	}
}

func subscriberLabel(id uint64) string {
	return "sub-" + strconv.FormatUint(id, 10)
}

// SubscriberCount reports the number of currently-registered
// subscribers, mostly useful for tests and diagnostics.
func (d *Dispatcher) SubscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}
