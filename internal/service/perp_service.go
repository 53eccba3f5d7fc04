// Package service holds the use-case layer: orchestration of providers,
// price oracles, stores and notifications into the operations the HTTP
// API exposes.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"folioscope/internal/demo"
	"folioscope/internal/domain"
	"folioscope/internal/provider"
	"folioscope/internal/settle"
)

// PerpExchangeService fans one account out to its enabled perp
// exchanges. Exchanges settle independently; a dead exchange becomes a
// tagged source error while the others still contribute positions.
type PerpExchangeService struct {
	registry *provider.Registry
	demoMode bool
	logger   *slog.Logger
}

// NewPerpExchangeService creates the perp fan-out service.
func NewPerpExchangeService(registry *provider.Registry, demoMode bool, logger *slog.Logger) *PerpExchangeService {
	return &PerpExchangeService{
		registry: registry,
		demoMode: demoMode,
		logger:   logger.With("service", "perp"),
	}
}

// FetchAccountPerps implements provider.PerpFanout. Only exchanges the
// account has explicitly enabled are queried.
func (s *PerpExchangeService) FetchAccountPerps(ctx context.Context, account domain.Account) ([]domain.Position, map[string]domain.PriceData, []domain.SourceError) {
	var tasks []settle.Task[domain.PerpFetchResult]
	var errs []domain.SourceError

	for _, ex := range account.PerpExchanges {
		source := fmt.Sprintf("%s (%s)", ex, account.Name)

		if s.demoMode || account.UseDemoData {
			ex := ex
			tasks = append(tasks, settle.Task[domain.PerpFetchResult]{
				Source: source,
				Run: func(ctx context.Context) (domain.PerpFetchResult, error) {
					return demo.PerpResult(ex, account.Address, account.ID), nil
				},
			})
			continue
		}

		p, err := s.registry.Get(ex)
		if err != nil {
			errs = append(errs, domain.SourceError{Source: source, Message: err.Error()})
			continue
		}
		tasks = append(tasks, settle.Task[domain.PerpFetchResult]{
			Source: source,
			Run: func(ctx context.Context) (domain.PerpFetchResult, error) {
				return p.FetchPositions(ctx, account.Address, account.ID), nil
			},
		})
	}

	prices := map[string]domain.PriceData{}
	var positions []domain.Position

	for _, res := range settle.All(ctx, tasks) {
		if res.Value.Err != "" {
			s.logger.Warn("perp exchange fetch failed", "source", res.Source, "error", res.Value.Err)
			errs = append(errs, domain.SourceError{Source: res.Source, Message: res.Value.Err})
			continue
		}
		positions = append(positions, res.Value.Positions...)
		for k, v := range res.Value.Prices {
			prices[k] = v
		}
	}

	return positions, prices, errs
}
