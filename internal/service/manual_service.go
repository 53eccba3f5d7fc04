package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"folioscope/internal/domain"
)

// ManualPositionService manages user-entered positions: cash balances,
// brokerage holdings, and anything else no provider can see.
type ManualPositionService struct {
	store  domain.ManualPositionStore
	logger *slog.Logger
}

// NewManualPositionService creates the manual position service.
func NewManualPositionService(store domain.ManualPositionStore, logger *slog.Logger) *ManualPositionService {
	return &ManualPositionService{
		store:  store,
		logger: logger.With("service", "manual_positions"),
	}
}

// Create validates and persists a manual position.
func (s *ManualPositionService) Create(ctx context.Context, p domain.Position) (domain.Position, error) {
	if err := validateManualPosition(p); err != nil {
		return domain.Position{}, err
	}

	p.ID = uuid.NewString()
	if err := s.store.Create(ctx, p); err != nil {
		return domain.Position{}, fmt.Errorf("manual positions: create: %w", err)
	}
	return p, nil
}

// Update validates and persists changes to a manual position.
func (s *ManualPositionService) Update(ctx context.Context, p domain.Position) (domain.Position, error) {
	if err := validateManualPosition(p); err != nil {
		return domain.Position{}, err
	}
	if err := s.store.Update(ctx, p); err != nil {
		return domain.Position{}, fmt.Errorf("manual positions: update: %w", err)
	}
	return p, nil
}

// Delete removes a manual position.
func (s *ManualPositionService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("manual positions: delete: %w", err)
	}
	return nil
}

// List returns every manual position.
func (s *ManualPositionService) List(ctx context.Context) ([]domain.Position, error) {
	return s.store.List(ctx)
}

func validateManualPosition(p domain.Position) error {
	if strings.TrimSpace(p.Symbol) == "" {
		return fmt.Errorf("manual positions: symbol must not be empty: %w", domain.ErrInvalid)
	}
	if p.Amount < 0 {
		return fmt.Errorf("manual positions: amount must not be negative: %w", domain.ErrInvalid)
	}
	switch p.Type {
	case domain.PositionTypeCrypto, domain.PositionTypeStock, domain.PositionTypeCash,
		domain.PositionTypeManual, domain.PositionTypeETF:
		return nil
	default:
		return fmt.Errorf("manual positions: type %q: %w", p.Type, domain.ErrUnsupported)
	}
}
