package domain

import "time"

// WalletBalance is one raw token balance as reported by the wallet
// aggregator, before spam/dust filtering and deduplication.
type WalletBalance struct {
	Symbol     string
	Name       string
	Chain      string
	Amount     float64
	Price      float64 // 0 means unknown, not worthless
	IsVerified bool
	IsScam     bool
	LogoURL    string
}

// TokenAmount is one token leg inside a DeFi protocol position.
type TokenAmount struct {
	Symbol     string
	Chain      string
	Amount     float64
	Price      float64
	DetailType string     // e.g. "lending", "vesting", "locked"
	UnlockAt   *time.Time // earliest unlock for vesting/locked legs
}

// DefiPosition is one protocol's aggregated holdings for one wallet:
// supplied collateral, outstanding debt, and unclaimed rewards. It is an
// intermediate shape consumed only by the wallet aggregation pipeline and
// is never persisted.
type DefiPosition struct {
	Protocol string
	Chain    string
	Supply   []TokenAmount
	Debt     []TokenAmount
	Rewards  []TokenAmount
}
