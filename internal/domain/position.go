package domain

import "time"

// PositionType classifies what kind of holding a position represents.
type PositionType string

const (
	PositionTypeCrypto PositionType = "crypto"
	PositionTypeStock  PositionType = "stock"
	PositionTypeCash   PositionType = "cash"
	PositionTypeManual PositionType = "manual"
	PositionTypeETF    PositionType = "etf"
)

// Position is the canonical unit of portfolio value: one quantifiable
// holding (asset or liability) attributed to an account.
//
// ID is a deterministic composite string (accountID plus source-specific
// discriminators) so that re-fetching the same underlying balance yields
// the same ID. Within one aggregation pass an ID is unique; a second
// occurrence of the same ID accumulates into the existing amount rather
// than creating a duplicate.
//
// Amount is always the absolute size. Direction is carried by IsDebt,
// never by the sign of Amount: a long and a short of the same symbol in
// the same account are two distinct positions and are never netted during
// aggregation.
type Position struct {
	ID           string       `json:"id"`
	Type         PositionType `json:"type"`
	Symbol       string       `json:"symbol"`
	Name         string       `json:"name"`
	Amount       float64      `json:"amount"`
	AccountID    string       `json:"accountId,omitempty"`
	Chain        string       `json:"chain,omitempty"`
	Protocol     string       `json:"protocol,omitempty"`
	IsDebt       bool         `json:"isDebt"`
	PriceKey     string       `json:"priceKey,omitempty"`
	CostBasis    float64      `json:"costBasis,omitempty"`
	PurchaseDate *time.Time   `json:"purchaseDate,omitempty"`
}

// PortfolioView is the data contract consumed by the UI layer: the flat
// position list plus every price discovered while building it, keyed by a
// provider-qualified price key.
type PortfolioView struct {
	Positions []Position           `json:"positions"`
	Prices    map[string]PriceData `json:"prices"`
	Errors    []SourceError        `json:"errors,omitempty"`
	IsDemo    bool                 `json:"isDemo,omitempty"`
	FetchedAt time.Time            `json:"fetchedAt"`
}

// SourceError records a single upstream source failure that degraded, but
// did not abort, an aggregation pass.
type SourceError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}
