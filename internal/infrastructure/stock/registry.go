package stock

import (
	"fmt"

	"autoblogger/internal/ports"
)

// Registry keeps a mapping from image provider names to their clients.
type Registry struct {
	searchers map[string]ports.ImageSearcher
}

var _ ports.SearcherResolver = (*Registry)(nil)

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{searchers: map[string]ports.ImageSearcher{}}
}

// Register adds or replaces a searcher client.
func (r *Registry) Register(searcher ports.ImageSearcher) {
	if r.searchers == nil {
		r.searchers = map[string]ports.ImageSearcher{}
	}
	r.searchers[searcher.Name()] = searcher
}

// ResolveSearcher returns a client by name or an error if it is absent.
func (r *Registry) ResolveSearcher(name string) (ports.ImageSearcher, error) {
	if searcher, ok := r.searchers[name]; ok {
		return searcher, nil
	}
	return nil, fmt.Errorf("image provider %s is not registered", name)
}
