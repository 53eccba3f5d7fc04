package domain

import "time"

// PriceData is a source+symbol keyed price point in USD. It is ephemeral:
// cached with a short TTL and never persisted beyond the cache.
type PriceData struct {
	Symbol           string    `json:"symbol"`
	Price            float64   `json:"price"`
	Change24h        float64   `json:"change24h"`
	ChangePercent24h float64   `json:"changePercent24h"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// Provider-qualified price key builders. Every price discovered during an
// aggregation pass is written into one shared prices map under one of
// these keys, so the final merge can resolve valuation regardless of
// which source supplied the token.

// WalletPriceKey keys a price reported by the wallet aggregator for a
// token on a specific chain.
func WalletPriceKey(symbol, chain string) string {
	return "debank-" + symbol + "-" + chain
}

// PerpPriceKey keys an index or entry price reported by a perpetuals
// exchange.
func PerpPriceKey(exchange PerpExchange, symbol string) string {
	return string(exchange) + "-perp-" + symbol
}

// SolanaPriceKey keys a price reported by a Solana balance provider.
func SolanaPriceKey(symbol string) string {
	return "helius-" + symbol + "-sol"
}

// SpotPriceKey keys a price from the spot price oracle.
func SpotPriceKey(id string) string {
	return "spot-" + id
}

// CexPriceKey keys a price attributed to a centralized exchange balance.
func CexPriceKey(exchange CexExchange, symbol string) string {
	return string(exchange) + "-" + symbol
}
