package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"folioscope/internal/domain"
)

// SnapshotService records point-in-time portfolio valuations for
// history charting and ships aged snapshots to cold storage.
type SnapshotService struct {
	portfolio *PortfolioService
	store     domain.SnapshotStore
	archiver  domain.SnapshotArchiver // nil disables archival
	notifier  Notifier
	logger    *slog.Logger
}

// NewSnapshotService creates the snapshot service.
func NewSnapshotService(portfolio *PortfolioService, store domain.SnapshotStore, archiver domain.SnapshotArchiver, notifier Notifier, logger *slog.Logger) *SnapshotService {
	return &SnapshotService{
		portfolio: portfolio,
		store:     store,
		archiver:  archiver,
		notifier:  notifier,
		logger:    logger.With("service", "snapshots"),
	}
}

// Take assembles the current portfolio view and persists it as a
// snapshot with its asset and debt totals.
func (s *SnapshotService) Take(ctx context.Context) (domain.Snapshot, error) {
	view, err := s.portfolio.GetPortfolio(ctx, false)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshots: assemble view: %w", err)
	}

	payload, err := json.Marshal(view)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshots: encode view: %w", err)
	}

	snap := domain.Snapshot{
		ID:            uuid.NewString(),
		TakenAt:       time.Now(),
		PositionCount: len(view.Positions),
		Payload:       payload,
	}
	for _, p := range view.Positions {
		value := p.Amount * view.Prices[p.PriceKey].Price
		if p.IsDebt {
			snap.TotalDebt += value
		} else {
			snap.TotalValue += value
		}
	}

	if err := s.store.Create(ctx, snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshots: persist: %w", err)
	}

	s.logger.Info("snapshot taken",
		"id", snap.ID, "positions", snap.PositionCount,
		"totalValue", snap.TotalValue, "totalDebt", snap.TotalDebt)

	if s.notifier != nil {
		s.notifier.Broadcast(domain.RefreshEvent{
			Event:     "snapshot_taken",
			At:        snap.TakenAt,
			Positions: snap.PositionCount,
		})
	}
	return snap, nil
}

// List returns snapshots taken since the given time, newest first.
func (s *SnapshotService) List(ctx context.Context, since time.Time, limit int) ([]domain.Snapshot, error) {
	return s.store.List(ctx, since, limit)
}

// Archive moves snapshots older than the retention window to cold
// storage. A nil archiver makes this a no-op.
func (s *SnapshotService) Archive(ctx context.Context, retention time.Duration) (int, error) {
	if s.archiver == nil {
		return 0, nil
	}
	cutoff := time.Now().Add(-retention)
	moved, err := s.archiver.ArchiveBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("snapshots: archive: %w", err)
	}
	if moved > 0 {
		s.logger.Info("snapshots archived", "count", moved, "cutoff", cutoff)
	}
	return moved, nil
}
