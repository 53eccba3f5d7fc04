package provider

import (
	"fmt"
	"sort"

	"folioscope/internal/domain"
)

// Registry maps perp exchange identifiers to their providers. Lookups
// after construction are read-only, so no locking is needed.
type Registry struct {
	providers map[domain.PerpExchange]domain.PerpProvider
}

// NewRegistry builds a registry from the given providers, keyed by each
// provider's own exchange identifier.
func NewRegistry(providers ...domain.PerpProvider) *Registry {
	r := &Registry{providers: make(map[domain.PerpExchange]domain.PerpProvider, len(providers))}
	for _, p := range providers {
		r.providers[p.Exchange()] = p
	}
	return r
}

// Get returns the provider registered for the exchange.
func (r *Registry) Get(ex domain.PerpExchange) (domain.PerpProvider, error) {
	p, ok := r.providers[ex]
	if !ok {
		return nil, fmt.Errorf("perp provider %q: %w", ex, domain.ErrUnsupported)
	}
	return p, nil
}

// Exchanges lists the registered exchange identifiers in stable order.
func (r *Registry) Exchanges() []domain.PerpExchange {
	out := make([]domain.PerpExchange, 0, len(r.providers))
	for ex := range r.providers {
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
