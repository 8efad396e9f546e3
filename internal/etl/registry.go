package etl

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/census-tidy/internal/acs"
	"github.com/sells-group/census-tidy/internal/reshape"
)

// Registry maps fact names to their specs.
type Registry struct {
	facts map[string]reshape.FactSpec
	order []string // insertion order for deterministic iteration
}

// NewRegistry creates a registry holding every fact of the catalog.
func NewRegistry(cat *acs.Catalog) *Registry {
	r := &Registry{facts: make(map[string]reshape.FactSpec)}
	for _, f := range cat.Facts {
		r.Register(f)
	}
	return r
}

// Register adds a fact, replacing any fact of the same name in place.
func (r *Registry) Register(f reshape.FactSpec) {
	if _, ok := r.facts[f.Name]; !ok {
		r.order = append(r.order, f.Name)
	}
	r.facts[f.Name] = f
}

// Get returns a fact by name.
func (r *Registry) Get(name string) (reshape.FactSpec, error) {
	f, ok := r.facts[name]
	if !ok {
		return reshape.FactSpec{}, eris.Errorf("etl: unknown fact %q", name)
	}
	return f, nil
}

// Select returns the named facts, or all facts when names is empty. Named
// facts come back in registry order, each once.
func (r *Registry) Select(names []string) ([]reshape.FactSpec, error) {
	if len(names) == 0 {
		return r.All(), nil
	}

	want := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := r.Get(name); err != nil {
			return nil, err
		}
		want[name] = true
	}

	var result []reshape.FactSpec
	for _, name := range r.order {
		if want[name] {
			result = append(result, r.facts[name])
		}
	}
	return result, nil
}

// All returns every fact in registration order.
func (r *Registry) All() []reshape.FactSpec {
	result := make([]reshape.FactSpec, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.facts[name])
	}
	return result
}

// AllNames returns the fact names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
