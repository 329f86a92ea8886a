package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cilium/ebpf"

	"github.com/nerrf-dev/probed/internal/nerrferr"
)

// Kind distinguishes the pinned object types the registry can bind.
type Kind int

const (
	KindProgram Kind = iota
	KindMap
)

// Want describes one named pinned object the registry must find when
// binding to a pin directory, and what kind it is expected to be.
type Want struct {
	Name string
	Kind Kind
}

// Registry is the process-wide table of named, singly-owned handles
// loaded from a pin directory at startup (SPEC_FULL.md §4.1). It owns
// every kernel Program and Map exclusively; callers interact with guards.
type Registry struct {
	programs map[string]*Entry[*ebpf.Program]
	maps     map[string]*Entry[*ebpf.Map]
}

// Bind opens pinDir and constructs one Entry per wanted name. It fails
// with a *nerrferr.PinError if any required name is absent, or if the
// pinned object's kind does not match want.Kind.
func Bind(pinDir string, wants []Want) (*Registry, error) {
	if _, err := os.Stat(pinDir); err != nil {
		return nil, &nerrferr.PinError{Name: pinDir, Err: err}
	}

	r := &Registry{
		programs: make(map[string]*Entry[*ebpf.Program]),
		maps:     make(map[string]*Entry[*ebpf.Map]),
	}

	for _, w := range wants {
		path := filepath.Join(pinDir, w.Name)
		switch w.Kind {
		case KindProgram:
			prog, err := ebpf.LoadPinnedProgram(path, nil)
			if err != nil {
				return nil, &nerrferr.PinError{Name: w.Name, Err: err}
			}
			r.programs[w.Name] = NewEntry(w.Name, prog)
		case KindMap:
			m, err := ebpf.LoadPinnedMap(path, nil)
			if err != nil {
				return nil, &nerrferr.PinError{Name: w.Name, Err: err}
			}
			r.maps[w.Name] = NewEntry(w.Name, m)
		default:
			return nil, &nerrferr.PinError{Name: w.Name, Err: fmt.Errorf("unknown kind %d", w.Kind)}
		}
	}

	return r, nil
}

// TakeProgram checks out the named program. Fails with ErrAlreadyTaken if
// another guard already holds it.
func (r *Registry) TakeProgram(name string) (*Guard[*ebpf.Program], error) {
	e, ok := r.programs[name]
	if !ok {
		return nil, &nerrferr.PinError{Name: name, Err: fmt.Errorf("no such program")}
	}
	return e.Take()
}

// TakeMap checks out the named map.
func (r *Registry) TakeMap(name string) (*Guard[*ebpf.Map], error) {
	e, ok := r.maps[name]
	if !ok {
		return nil, &nerrferr.PinError{Name: name, Err: fmt.Errorf("no such map")}
	}
	return e.Take()
}

// ProgramNames and MapNames list what this registry knows about, mostly
// useful for diagnostics and tests.
func (r *Registry) ProgramNames() []string { return keys(r.programs) }
func (r *Registry) MapNames() []string     { return keys(r.maps) }

func keys[V any](m map[string]*Entry[V]) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
