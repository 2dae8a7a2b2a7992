// Package provider hosts backend provider adapters and their registry.
package provider

import (
	"sort"
	"sync"

	"github.com/omniscience-ai/omniscience/internal/application/ports"
)

// Registry holds the configured backend providers by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ports.ProviderPort
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ports.ProviderPort)}
}

// Register adds a provider under its info name, replacing any previous
// registration.
func (r *Registry) Register(p ports.ProviderPort) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Info().Name] = p
}

// Get returns the provider with the given name, or nil.
func (r *Registry) Get(name string) ports.ProviderPort {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
