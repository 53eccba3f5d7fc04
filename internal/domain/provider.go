package domain

import "context"

// PerpFetchResult is what a perpetuals-exchange provider returns for one
// account. A failed fetch yields an empty result with Err set: callers
// treat that as "no data available", not as a crash.
type PerpFetchResult struct {
	Positions    []Position
	Prices       map[string]PriceData
	AccountValue float64 // exchange-reported total asset value, liability-aware
	Err          string  // empty on success
}

// PerpProvider is the common interface every perpetuals-exchange provider
// implements. Adding an exchange is a registry entry, not a switch edit.
type PerpProvider interface {
	// Exchange returns the identifier this provider is registered under.
	Exchange() PerpExchange

	// FetchPositions returns all open perp positions and collateral
	// balances for the given address, attributed to accountID. It never
	// returns a Go error: failures are folded into PerpFetchResult.Err.
	FetchPositions(ctx context.Context, address, accountID string) PerpFetchResult

	// HasActivity reports whether the address has any presence on the
	// exchange. Used to skip idle exchanges cheaply.
	HasActivity(ctx context.Context, address string) bool
}
