package llm

import (
	"fmt"

	"autoblogger/internal/ports"
)

// Registry keeps a mapping from provider names to their clients.
type Registry struct {
	providers map[string]ports.ContentProvider
}

var _ ports.ProviderResolver = (*Registry)(nil)

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]ports.ContentProvider{}}
}

// Register adds or replaces a provider client.
func (r *Registry) Register(provider ports.ContentProvider) {
	if r.providers == nil {
		r.providers = map[string]ports.ContentProvider{}
	}
	r.providers[provider.Name()] = provider
}

// ResolveProvider returns a client by name or an error if it is absent.
func (r *Registry) ResolveProvider(name string) (ports.ContentProvider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("provider %s is not registered", name)
}
