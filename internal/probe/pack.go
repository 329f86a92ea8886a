// Package probe implements ProbePacks: per-feature collections of program
// guards and the links produced by attaching them (SPEC_FULL.md §4.2).
// Attach and Detach are idempotent on every Feature implementation here,
// grounded on the original daemon's features/{write,blocking,signal,
// sys_fd_tracking_feature,garbage_collection_feature,
// jni_reference_feature}.rs.
package probe

import (
	"github.com/cilium/ebpf/link"

	"github.com/nerrf-dev/probed/internal/config"
)

// Feature is the per-feature attach/detach/apply contract every ProbePack
// implements. init() is represented by each concrete constructor instead
// of a method, since Go has no associated-type generics to express it
// uniformly the way the Rust trait does.
type Feature interface {
	Name() config.FeatureName
	// Attach idempotently brings every required link up. It reports which
	// attach point failed via a *nerrferr.AttachError.
	Attach() error
	// Detach idempotently drops every held link.
	Detach()
	// Attached reports whether all required links are currently held.
	Attached() bool
	// Apply implements the Option<FeatureCfg> attach/detach contract:
	// cfg == nil detaches; non-nil attaches. pids carries the feature's
	// pid set from the configuration; none of the features in this
	// package writes it into a kernel map.
	Apply(cfg *config.FeatureCfg, pids []uint32) error
}

// closeLink closes a link.Link if non-nil and clears the slot, mirroring
// the Option<Link>::take() idiom in the original Rust detach() methods.
func closeLink(l *link.Link) {
	if l == nil || *l == nil {
		return
	}
	_ = (*l).Close()
	*l = nil
}
