package memory

import (
	"context"
	"time"

	"folioscope/internal/domain"
)

// PriceCache adapts the generic TTL cache to the shared spot price cache
// interface. It is the default backend when no Redis address is
// configured; single-process deployments need nothing more.
type PriceCache struct {
	cache *Cache[domain.PriceData]
	ttl   time.Duration
}

// NewPriceCache creates an in-process spot price cache with the given
// TTL.
func NewPriceCache(ttl time.Duration) *PriceCache {
	return &PriceCache{
		cache: New[domain.PriceData](),
		ttl:   ttl,
	}
}

// SetPrice implements domain.SpotPriceCache.
func (c *PriceCache) SetPrice(_ context.Context, id string, data domain.PriceData) error {
	c.cache.Set(id, data, c.ttl)
	return nil
}

// GetPrice implements domain.SpotPriceCache.
func (c *PriceCache) GetPrice(_ context.Context, id string) (domain.PriceData, error) {
	entry, ok := c.cache.Get(id)
	if !ok {
		return domain.PriceData{}, domain.ErrNotFound
	}
	return entry.Data, nil
}

// GetPrices implements domain.SpotPriceCache. Missing ids are simply
// absent from the result.
func (c *PriceCache) GetPrices(_ context.Context, ids []string) (map[string]domain.PriceData, error) {
	out := make(map[string]domain.PriceData, len(ids))
	for _, id := range ids {
		if entry, ok := c.cache.Get(id); ok {
			out[id] = entry.Data
		}
	}
	return out, nil
}

// Clear implements domain.SpotPriceCache.
func (c *PriceCache) Clear(_ context.Context) error {
	c.cache.Clear()
	return nil
}
