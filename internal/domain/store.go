package domain

import (
	"context"
	"time"
)

// AccountStore persists user-configured accounts.
type AccountStore interface {
	Create(ctx context.Context, a Account) error
	Update(ctx context.Context, a Account) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Account, error)
	List(ctx context.Context) ([]Account, error)
}

// ManualPositionStore persists manually entered positions (type manual or
// cash). These are user-owned: mutated only through explicit user actions,
// never overwritten by the aggregation pipeline.
type ManualPositionStore interface {
	Create(ctx context.Context, p Position) error
	Update(ctx context.Context, p Position) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Position, error)
	// DeleteByAccount removes all manual positions owned by an account,
	// used when the account itself is deleted.
	DeleteByAccount(ctx context.Context, accountID string) error
}

// Snapshot is one point-in-time portfolio valuation kept for charting.
type Snapshot struct {
	ID            string    `json:"id"`
	TakenAt       time.Time `json:"takenAt"`
	TotalValue    float64   `json:"totalValue"`
	TotalDebt     float64   `json:"totalDebt"`
	PositionCount int       `json:"positionCount"`
	Payload       []byte    `json:"-"` // full PortfolioView JSON
}

// SnapshotStore persists portfolio snapshots.
type SnapshotStore interface {
	Create(ctx context.Context, s Snapshot) error
	List(ctx context.Context, since time.Time, limit int) ([]Snapshot, error)
	// ListBefore returns snapshots older than the cutoff, for archival.
	ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// SnapshotArchiver moves aged snapshots to cold storage.
type SnapshotArchiver interface {
	ArchiveBefore(ctx context.Context, cutoff time.Time) (int, error)
}
