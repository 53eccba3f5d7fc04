package domain

import (
	"context"
	"time"
)

// SpotPriceCache stores oracle prices shared across aggregation passes.
// Implementations: in-process TTL cache (default) or Redis when several
// backend replicas should share one price window.
type SpotPriceCache interface {
	SetPrice(ctx context.Context, id string, data PriceData) error
	GetPrice(ctx context.Context, id string) (PriceData, error)
	GetPrices(ctx context.Context, ids []string) (map[string]PriceData, error)
	Clear(ctx context.Context) error
}

// RefreshEvent is pushed to connected WebSocket clients when portfolio
// data changes server-side.
type RefreshEvent struct {
	Event     string    `json:"event"` // "portfolio_refreshed", "snapshot_taken"
	At        time.Time `json:"at"`
	Positions int       `json:"positions,omitempty"`
	Errors    int       `json:"errors,omitempty"`
}
