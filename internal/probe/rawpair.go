package probe

import (
	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/nerrferr"
	"github.com/nerrf-dev/probed/internal/registry"
)

// rawTracepointPair is the shape shared by Write, Blocking, Signal, and
// FileDescriptorChange: one raw-tracepoint program on sys_enter, one on
// sys_exit, both
// independently idempotent to attach and detach. The three features in
// the original daemon (features/write.rs, features/blocking.rs,
// features/signal.rs) each hand-roll this identical shape; Go's lack of a
// Rust-trait-with-default-methods equivalent makes it more idiomatic here
// to factor the shape once and embed it.
type rawTracepointPair struct {
	name config.FeatureName

	enterProg *registry.Guard[*ebpf.Program]
	exitProg  *registry.Guard[*ebpf.Program]

	enterLink link.Link
	exitLink  link.Link
}

func newRawTracepointPair(name config.FeatureName, enter, exit *registry.Guard[*ebpf.Program]) rawTracepointPair {
	return rawTracepointPair{name: name, enterProg: enter, exitProg: exit}
}

func (p *rawTracepointPair) attach() error {
	if p.enterLink == nil {
		l, err := link.AttachRawTracepoint(link.RawTracepointOptions{
			Name:    "sys_enter",
			Program: *p.enterProg.Get(),
		})
		if err != nil {
			return &nerrferr.AttachError{Feature: string(p.name), AttachPoint: "sys_enter", Err: err}
		}
		p.enterLink = l
	}

	if p.exitLink == nil {
		l, err := link.AttachRawTracepoint(link.RawTracepointOptions{
			Name:    "sys_exit",
			Program: *p.exitProg.Get(),
		})
		if err != nil {
			return &nerrferr.AttachError{Feature: string(p.name), AttachPoint: "sys_exit", Err: err}
		}
		p.exitLink = l
	}

	return nil
}

func (p *rawTracepointPair) detach() {
	closeLink(&p.enterLink)
	closeLink(&p.exitLink)
}

func (p *rawTracepointPair) attached() bool {
	return p.enterLink != nil && p.exitLink != nil
}
