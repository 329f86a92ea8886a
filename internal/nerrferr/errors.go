// Package nerrferr defines the error taxonomy shared by the probe registry,
// feature set, and event pipeline. Errors below set_configuration are
// surfaced to its caller; errors inside the streaming pipeline are recovered
// locally and never bubble up as a process error.
package nerrferr

import "fmt"

// LoadError indicates the packaged probe bundle could not be opened or
// parsed. Fatal at startup.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load probe bundle %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PinError indicates a pinned program or map is missing, or its kind does
// not match what the registry expected. Fatal at startup.
type PinError struct {
	Name string
	Err  error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("pin %q: %v", e.Name, e.Err)
}

func (e *PinError) Unwrap() error { return e.Err }

// AttachError indicates the kernel refused to attach a probe for a feature.
// The feature is left detached; surfaced to the caller of set_configuration.
type AttachError struct {
	Feature     string
	AttachPoint string
	Err         error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("attach %s/%s: %v", e.Feature, e.AttachPoint, e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

// MapUpdateError indicates a filter or context map update failed. Surfaced
// to set_configuration; callers should reapply the full configuration to
// roll partial updates forward.
type MapUpdateError struct {
	Map string
	Key string
	Err error
}

func (e *MapUpdateError) Error() string {
	return fmt.Sprintf("update map %s key %s: %v", e.Map, e.Key, e.Err)
}

func (e *MapUpdateError) Unwrap() error { return e.Err }

// DecodeError indicates a ring-buffer record did not match its expected
// size or kind. The record is dropped and the collector continues.
type DecodeError struct {
	Kind   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Kind, e.Reason)
}

// ReserveError indicates the ring buffer was full at submission time. The
// record is dropped and an in-kernel counter is bumped.
type ReserveError struct {
	RingBuffer string
}

func (e *ReserveError) Error() string {
	return fmt.Sprintf("ring buffer %s full at reservation", e.RingBuffer)
}

// BroadcastLag is surfaced to a single slow subscriber as a control message
// on its own subscription; it never affects other subscribers.
type BroadcastLag struct {
	Dropped uint64
}

func (e *BroadcastLag) Error() string {
	return fmt.Sprintf("subscriber lagged, dropped %d events", e.Dropped)
}

// TaskFailure indicates an actor task failed. The supervisor restarts
// collectors on this error; it is fatal for the dispatcher.
type TaskFailure struct {
	Actor string
	Err   error
}

func (e *TaskFailure) Error() string {
	return fmt.Sprintf("actor %s failed: %v", e.Actor, e.Err)
}

func (e *TaskFailure) Unwrap() error { return e.Err }

// ErrAlreadyTaken is returned by registry Entry.Take (and so by
// Registry.TakeProgram and Registry.TakeMap) when the entry has a live
// guard checked out.
var ErrAlreadyTaken = fmt.Errorf("registry: item already taken")
