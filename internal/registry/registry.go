// Package registry holds the Strategy Registry: a name-to-factory map
// seeded with builtin strategies and extensible with externally loaded
// (WASM) plugins. A Registry is a plain value constructed once per process
// and passed by reference; there is no global/singleton registry.
package registry

import (
	"fmt"
	"sort"

	"github.com/contextslicer/contextslicer/internal/strategies"
)

// Factory constructs a fresh Strategy instance. Strategies are stateless,
// so most factories simply return a shared instance, but the signature
// allows per-call construction (e.g. a WASM plugin needing its own module
// instance).
type Factory func() (strategies.Strategy, error)

// Registry maps strategy names to factories.
type Registry struct {
	factories map[string]Factory
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewWithBuiltins constructs a Registry seeded with all 13 builtin
// strategies.
func NewWithBuiltins() *Registry {
	r := New()
	for _, s := range builtinStrategies() {
		s := s
		r.Register(s.Name(), func() (strategies.Strategy, error) { return s, nil })
	}
	return r
}

// Register adds or replaces a factory under name.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Build constructs the named strategy.
func (r *Registry) Build(name string) (strategies.Strategy, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return factory()
}

// Names returns every registered strategy name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func builtinStrategies() []strategies.Strategy {
	return []strategies.Strategy{
		strategies.NewExplicit(),
		strategies.NewInventory(),
		strategies.NewSkeleton(),
		strategies.NewKeyword(),
		strategies.NewSymbols(),
		strategies.NewAST(),
		strategies.NewConfig(),
		strategies.NewDiff(),
		strategies.NewGraph(),
		strategies.NewComplexity(),
		strategies.NewDocs(),
		strategies.NewSemantic(),
		strategies.NewForest(),
	}
}
