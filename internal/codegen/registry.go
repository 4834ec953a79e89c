package codegen

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Registry manages the available type support bindings
type Registry struct {
	bindings map[string]*Binding
}

// NewRegistry creates an empty binding registry
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]*Binding),
	}
}

// Register makes b available under name. Bindings with an inconsistent
// mapping table are rejected.
func (r *Registry) Register(name string, b *Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	r.bindings[name] = b
	return nil
}

// Get returns the binding registered under name
func (r *Registry) Get(name string) (*Binding, error) {
	b, exists := r.bindings[name]
	if !exists {
		return nil, errors.WithHintf(
			errors.Newf("unsupported type support: %s", name),
			"supported type supports: %v", r.Names(),
		)
	}
	return b, nil
}

// Names returns every registered name, aliases included, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
