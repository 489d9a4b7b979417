package tech

import (
	"slices"

	"github.com/matzehuels/cellgen/pkg/errors"
)

// Registry maps process names to process records.
type Registry struct {
	procs map[string]Process
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]Process)}
}

// Builtin returns a new registry holding the built-in processes.
func Builtin() *Registry {
	r := NewRegistry()
	for _, p := range []Process{MoCMOS(), TSMC180(), CMOS90()} {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}

// Register validates p and adds it, replacing any process of the same name.
func (r *Registry) Register(p Process) error {
	if _, err := New(p); err != nil {
		return err
	}
	r.procs[p.Name] = p
	return nil
}

// Lookup builds the technology registered under name.
func (r *Registry) Lookup(name string) (*Technology, error) {
	p, ok := r.procs[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeTechnologyNotFound, "technology %q not found", name)
	}
	return New(p)
}

// Process returns the raw record registered under name.
func (r *Registry) Process(name string) (Process, bool) {
	p, ok := r.procs[name]
	return p, ok
}

// Names returns the registered process names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.procs))
	for n := range r.procs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
