// Package provider turns raw platform client responses into canonical
// positions and prices. Each provider owns the normalization rules for
// one upstream: deterministic position IDs, absolute amounts with debt
// carried as a flag, and provider-qualified price keys. Providers never
// return transport errors to callers; failures degrade into tagged
// source errors so one bad upstream cannot blank the portfolio.
package provider

import (
	"fmt"
	"strings"

	"folioscope/internal/domain"
)

// stablecoins are collateral tokens valued at 1.0 USD without a price
// lookup. Perp exchanges hold margin in these almost exclusively.
var stablecoins = map[string]bool{
	"USDC":  true,
	"USDT":  true,
	"DAI":   true,
	"USDE":  true,
	"USDB":  true,
	"FDUSD": true,
}

func isStablecoin(symbol string) bool {
	return stablecoins[strings.ToUpper(symbol)]
}

// exchangeLabel is the human-readable exchange name used in position
// display names.
func exchangeLabel(ex domain.PerpExchange) string {
	switch ex {
	case domain.PerpLighter:
		return "Lighter"
	case domain.PerpEthereal:
		return "Ethereal"
	case domain.PerpHyperliquid:
		return "Hyperliquid"
	default:
		return string(ex)
	}
}

// perpBase strips the market suffix from a perp market symbol, e.g.
// "ETH-PERP" -> "ETH". Symbols without the suffix pass through.
func perpBase(marketSymbol string) string {
	return strings.TrimSuffix(marketSymbol, "-PERP")
}

// direction renders the debt flag as an ID fragment so that a long and
// a short of the same symbol keep distinct deterministic IDs.
func direction(isDebt bool) string {
	if isDebt {
		return "short"
	}
	return "long"
}

// perpPositionName labels an open perp position, e.g. "ETH Perp (Lighter)".
func perpPositionName(base string, ex domain.PerpExchange) string {
	return fmt.Sprintf("%s Perp (%s)", base, exchangeLabel(ex))
}

// marginName labels a collateral balance, e.g. "USDC Margin (Lighter)".
func marginName(symbol string, ex domain.PerpExchange) string {
	return fmt.Sprintf("%s Margin (%s)", symbol, exchangeLabel(ex))
}

// failedResult folds an upstream failure into an empty result.
func failedResult(err error) domain.PerpFetchResult {
	return domain.PerpFetchResult{
		Prices: map[string]domain.PriceData{},
		Err:    err.Error(),
	}
}
