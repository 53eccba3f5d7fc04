package domain

import "time"

// AccountKind identifies what sort of data source an account is.
type AccountKind string

const (
	AccountKindWallet    AccountKind = "wallet"
	AccountKindCex       AccountKind = "cex"
	AccountKindBrokerage AccountKind = "brokerage"
	AccountKindManual    AccountKind = "manual"
)

// CexExchange is a closed enumeration of supported centralized exchanges.
type CexExchange string

const (
	CexBinance  CexExchange = "binance"
	CexCoinbase CexExchange = "coinbase"
)

// PerpExchange is a closed enumeration of supported perpetual-futures
// exchanges. Providers register themselves under one of these identifiers;
// an account opts in to each exchange explicitly.
type PerpExchange string

const (
	PerpLighter     PerpExchange = "lighter"
	PerpEthereal    PerpExchange = "ethereal"
	PerpHyperliquid PerpExchange = "hyperliquid"
)

// Account is a configured data source: a wallet address with a chain set,
// a CEX credential pair, or a manual/brokerage placeholder. Accounts own
// zero or more positions through Position.AccountID.
//
// Accounts are user-owned state: created, edited, and deleted through the
// settings API, never mutated by the aggregation pipeline.
type Account struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Kind          AccountKind    `json:"kind"`
	Address       string         `json:"address,omitempty"`
	Chains        []string       `json:"chains,omitempty"`
	PerpExchanges []PerpExchange `json:"perpExchanges,omitempty"`
	Exchange      CexExchange    `json:"exchange,omitempty"`
	APIKey        string         `json:"-"`
	APISecret     string         `json:"-"` // encrypted at rest
	Active        bool           `json:"active"`
	UseDemoData   bool           `json:"useDemoData"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// PerpEnabled reports whether the given perp exchange has been explicitly
// enabled on this account. No exchange is ever queried by default.
func (a Account) PerpEnabled(ex PerpExchange) bool {
	for _, e := range a.PerpExchanges {
		if e == ex {
			return true
		}
	}
	return false
}
