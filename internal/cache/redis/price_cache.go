package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"folioscope/internal/domain"
)

const priceKeyPrefix = "spotprice:"

// PriceCache implements domain.SpotPriceCache on Redis. Each price is a
// JSON value under "spotprice:{id}" with the TTL applied by Redis
// itself, so every replica sees the same expiry.
type PriceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPriceCache creates a PriceCache backed by the given client.
func NewPriceCache(c *Client, ttl time.Duration) *PriceCache {
	return &PriceCache{rdb: c.Underlying(), ttl: ttl}
}

func priceKey(id string) string {
	return priceKeyPrefix + id
}

// SetPrice implements domain.SpotPriceCache.
func (pc *PriceCache) SetPrice(ctx context.Context, id string, data domain.PriceData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("redis: encode price %s: %w", id, err)
	}
	if err := pc.rdb.Set(ctx, priceKey(id), payload, pc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set price %s: %w", id, err)
	}
	return nil
}

// GetPrice implements domain.SpotPriceCache.
func (pc *PriceCache) GetPrice(ctx context.Context, id string) (domain.PriceData, error) {
	payload, err := pc.rdb.Get(ctx, priceKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PriceData{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.PriceData{}, fmt.Errorf("redis: get price %s: %w", id, err)
	}

	var data domain.PriceData
	if err := json.Unmarshal(payload, &data); err != nil {
		return domain.PriceData{}, fmt.Errorf("redis: decode price %s: %w", id, err)
	}
	return data, nil
}

// GetPrices implements domain.SpotPriceCache using one MGET. Missing or
// undecodable ids are omitted from the result.
func (pc *PriceCache) GetPrices(ctx context.Context, ids []string) (map[string]domain.PriceData, error) {
	if len(ids) == 0 {
		return map[string]domain.PriceData{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = priceKey(id)
	}

	values, err := pc.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get prices: %w", err)
	}

	out := make(map[string]domain.PriceData, len(ids))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var data domain.PriceData
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			continue
		}
		out[ids[i]] = data
	}
	return out, nil
}

// Clear implements domain.SpotPriceCache by scanning and deleting every
// price key. SCAN keeps the operation incremental on large keyspaces.
func (pc *PriceCache) Clear(ctx context.Context) error {
	iter := pc.rdb.Scan(ctx, 0, priceKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := pc.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis: clear price %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis: clear prices: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SpotPriceCache = (*PriceCache)(nil)
