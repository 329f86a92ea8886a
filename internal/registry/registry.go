// Package registry implements the single-owner handle table described in
// SPEC_FULL.md §4.1, grounded on the original daemon's
// registry/single_owner.rs: every kernel object (program or map) has at
// most one live owner, handed out as a Guard that returns the object to
// its Entry on Close.
package registry

import (
	"sync/atomic"

	"github.com/nerrf-dev/probed/internal/nerrferr"
)

// Entry holds a single named object, takable by at most one Guard at a
// time. The zero value is not usable; use NewEntry.
type Entry[T any] struct {
	name string
	cell atomic.Pointer[T]
}

// NewEntry parks value under name, ready to be taken.
func NewEntry[T any](name string, value T) *Entry[T] {
	e := &Entry[T]{name: name}
	e.cell.Store(&value)
	return e
}

// Take atomically checks the entry out. Concurrent callers race on a
// single atomic swap, so exactly one observes success; the rest get
// ErrAlreadyTaken without blocking.
func (e *Entry[T]) Take() (*Guard[T], error) {
	v := e.cell.Swap(nil)
	if v == nil {
		return nil, nerrferr.ErrAlreadyTaken
	}
	return &Guard[T]{entry: e, value: v}, nil
}

// Name reports the pin name this entry was bound to.
func (e *Entry[T]) Name() string { return e.name }

// Guard is an RAII-style exclusive borrow of an Entry's object. It is not
// safe to copy; Close must be called exactly once, after which the
// object is parked back for the next Take.
type Guard[T any] struct {
	entry *Entry[T]
	value *T
}

// Get returns the guarded value. Calling Get after Close is a programming
// error; it returns the zero value.
func (g *Guard[T]) Get() *T {
	if g == nil {
		return nil
	}
	return g.value
}

// Close returns the object to its entry. It never fails and is safe to
// call more than once; calls after the first are no-ops.
func (g *Guard[T]) Close() {
	if g == nil || g.value == nil {
		return
	}
	g.entry.cell.Store(g.value)
	g.value = nil
}
