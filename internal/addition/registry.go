package addition

import (
	"fmt"
	"sort"
	"sync"
)

// Creator builds a fresh strategy instance.
type Creator func() Strategy

type entry struct {
	selector int
	create   Creator
}

// Registry maps strategy names and numeric selectors to creators. Every
// Create call returns a new instance, since strategies carry per-run state.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns a registry holding the four built-in strategies under
// their command-line selectors:
//   - 1 "standard": blocking point-to-point
//   - 2 "scatter": collective scatter and gather
//   - 3 "async": non-blocking requests
//   - 4 "optimized": local sum first, early carry forwarding
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]entry)}
	_ = r.Register("standard", 1, func() Strategy { return NewStandard() })
	_ = r.Register("scatter", 2, func() Strategy { return NewScatter() })
	_ = r.Register("async", 3, func() Strategy { return NewAsync() })
	_ = r.Register("optimized", 4, func() Strategy { return NewOptimized() })
	return r
}

// Register adds or replaces a strategy.
//
// Parameters:
//   - name: The unique strategy name.
//   - selector: The numeric selector, unique among registered strategies.
//   - create: Builds a fresh instance.
//
// Returns:
//   - error: An error if create is nil or the selector is taken by another name.
func (r *Registry) Register(name string, selector int, create Creator) error {
	if create == nil {
		return fmt.Errorf("addition: nil creator for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for other, e := range r.entries {
		if e.selector == selector && other != name {
			return fmt.Errorf("addition: selector %d already used by %q", selector, other)
		}
	}
	r.entries[name] = entry{selector: selector, create: create}
	return nil
}

// Create returns a new instance of the named strategy.
func (r *Registry) Create(name string) (Strategy, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %s", name)
	}
	return e.create(), nil
}

// MustCreate is like Create but panics on an unknown name.
func (r *Registry) MustCreate(name string) Strategy {
	s, err := r.Create(name)
	if err != nil {
		panic(err)
	}
	return s
}

// BySelector returns the name registered under selector.
func (r *Registry) BySelector(selector int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, e := range r.entries {
		if e.selector == selector {
			return name, true
		}
	}
	return "", false
}

// List returns the registered names in selector order, which is also the
// order a full run executes them in.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return r.entries[names[i]].selector < r.entries[names[j]].selector
	})
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Selector returns the selector name is registered under.
func (r *Registry) Selector(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.selector, ok
}
