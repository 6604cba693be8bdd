// Package registry maps trend source names to factories so the agent
// configuration can select sources by name instead of wiring types.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/flipper/pkg/ports"
)

// Params carries the shared inputs a factory may use. Factories ignore
// the fields they have no use for.
type Params struct {
	// Token authenticates sources that accept a credential.
	Token string

	// Queries overrides a source's default search terms.
	Queries []string
}

// Factory builds a trend source from the resolved parameters.
type Factory func(p Params) (ports.TrendSource, error)

// Registry manages the available trend sources.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a trend source factory to the registry.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// Build looks up a trend source by name and constructs it.
// Returns an error if the source is not registered.
func (r *Registry) Build(name string, p Params) (ports.TrendSource, error) {
	r.mu.RLock()
	fn, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("trend source not found: %s", name)
	}

	return fn(p)
}

// Names returns the registered source names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
