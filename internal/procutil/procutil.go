// Package procutil supplies the process-listing collaborator and the
// monotonic-to-wall-clock conversion the RPC layer needs (SPEC_FULL.md
// §6, §4.4). A full /proc walker is out of scope for this module's core
// (no committed process-lister implementation ships here); Lister is
// the seam production wiring plugs one into.
package procutil

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Process is one snapshotted process/thread-group entry.
type Process struct {
	Pid     uint32
	Ppid    uint32
	State   string
	Comm    string
	Cmdline string
}

// Lister is the external process-listing collaborator list_processes
// delegates to. Production wiring supplies an implementation backed by
// /proc or an equivalent on-device source; this module ships no such
// implementation, but defines the seam so internal/rpc can depend on an
// interface rather than a concrete walker.
type Lister interface {
	ListProcesses(ctx context.Context) ([]Process, error)
}

// BootTime derives the kernel's boot instant by reading
// CLOCK_MONOTONIC and subtracting it from the current wall-clock time,
// the same conversion the original daemon performs once at startup so
// every later CLOCK_MONOTONIC-based event timestamp can be rendered as
// a wall-clock Timestamp on the wire (§6).
func BootTime() (time.Time, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return time.Time{}, fmt.Errorf("procutil: read CLOCK_MONOTONIC: %w", err)
	}
	monotonic := time.Duration(ts.Sec)*time.Second + time.Duration(ts.Nsec)*time.Nanosecond
	return time.Now().Add(-monotonic), nil
}
