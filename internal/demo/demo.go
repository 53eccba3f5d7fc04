// Package demo generates deterministic synthetic portfolio data. It is
// the universal fallback whenever a live source is unavailable: no API
// key configured, demo mode explicitly enabled, or an upstream fetch
// failed. The same address always yields the same synthetic portfolio,
// which makes demo mode stable across refreshes and tests reproducible.
package demo

import (
	"hash/fnv"
	"time"

	"folioscope/internal/domain"
)

// seed derives a small deterministic multiplier in [0.5, 1.5) from the
// address bytes. An explicit hash of the bytes, not a parse of the string
// representation, so checksummed and lower-case forms of the same EVM
// address agree after normalization by the caller.
func seed(address string) float64 {
	h := fnv.New32a()
	h.Write([]byte(address))
	return 0.5 + float64(h.Sum32()%1000)/1000.0
}

// demoPrices is the synthetic price table, also used by the price
// services to backfill ids whose live lookup failed.
var demoPrices = map[string]domain.PriceData{
	"bitcoin":   {Symbol: "BTC", Price: 67000, Change24h: 1200, ChangePercent24h: 1.82},
	"ethereum":  {Symbol: "ETH", Price: 3200, Change24h: -45, ChangePercent24h: -1.39},
	"solana":    {Symbol: "SOL", Price: 145, Change24h: 3.1, ChangePercent24h: 2.18},
	"usd-coin":  {Symbol: "USDC", Price: 1.0},
	"tether":    {Symbol: "USDT", Price: 1.0},
	"dai":       {Symbol: "DAI", Price: 1.0},
	"chainlink": {Symbol: "LINK", Price: 14.2, Change24h: 0.3, ChangePercent24h: 2.16},
	"uniswap":   {Symbol: "UNI", Price: 7.8, Change24h: -0.12, ChangePercent24h: -1.51},
	"aave":      {Symbol: "AAVE", Price: 92.5, Change24h: 2.4, ChangePercent24h: 2.66},
}

// Price returns the synthetic price table entry for a provider id, with
// ok=false for ids outside the table.
func Price(id string) (domain.PriceData, bool) {
	p, ok := demoPrices[id]
	return p, ok
}

// WalletTokens returns a synthetic set of raw wallet token balances for
// the address. Output is bit-identical across calls with the same input.
func WalletTokens(address string) []domain.WalletBalance {
	m := seed(address)
	return []domain.WalletBalance{
		{Symbol: "ETH", Name: "Ethereum", Chain: "eth", Amount: 2.5 * m, Price: 3200, IsVerified: true},
		{Symbol: "USDC", Name: "USD Coin", Chain: "eth", Amount: 5000 * m, Price: 1.0, IsVerified: true},
		{Symbol: "LINK", Name: "Chainlink", Chain: "eth", Amount: 150 * m, Price: 14.2, IsVerified: true},
		{Symbol: "UNI", Name: "Uniswap", Chain: "arb", Amount: 80 * m, Price: 7.8, IsVerified: true},
	}
}

// DefiPositions returns a synthetic set of protocol positions for the
// address: an Aave-style supply/debt pair and a staking reward leg.
func DefiPositions(address string) []domain.DefiPosition {
	m := seed(address)
	return []domain.DefiPosition{
		{
			Protocol: "Aave V3",
			Chain:    "eth",
			Supply: []domain.TokenAmount{
				{Symbol: "WETH", Chain: "eth", Amount: 1.2 * m, Price: 3200},
			},
			Debt: []domain.TokenAmount{
				{Symbol: "USDC", Chain: "eth", Amount: 1500 * m, Price: 1.0},
			},
		},
		{
			Protocol: "Lido",
			Chain:    "eth",
			Supply: []domain.TokenAmount{
				{Symbol: "stETH", Chain: "eth", Amount: 0.8 * m, Price: 3190},
			},
			Rewards: []domain.TokenAmount{
				{Symbol: "LDO", Chain: "eth", Amount: 12 * m, Price: 1.9},
			},
		},
	}
}

// SolanaTokens returns a synthetic set of Solana token balances.
func SolanaTokens(address string) []domain.WalletBalance {
	m := seed(address)
	return []domain.WalletBalance{
		{Symbol: "SOL", Name: "Solana", Chain: "sol", Amount: 30 * m, Price: 145, IsVerified: true},
		{Symbol: "USDC", Name: "USD Coin", Chain: "sol", Amount: 900 * m, Price: 1.0, IsVerified: true},
	}
}

// PerpResult returns a synthetic perp exchange result: one long, one
// short, and a margin balance, attributed to accountID.
func PerpResult(exchange domain.PerpExchange, address, accountID string) domain.PerpFetchResult {
	m := seed(address)
	now := time.Unix(0, 0) // fixed timestamp keeps output bit-identical
	prices := map[string]domain.PriceData{
		domain.PerpPriceKey(exchange, "ETH"): {Symbol: "ETH", Price: 3200, LastUpdated: now},
		domain.PerpPriceKey(exchange, "BTC"): {Symbol: "BTC", Price: 67000, LastUpdated: now},
	}
	ex := string(exchange)
	return domain.PerpFetchResult{
		Positions: []domain.Position{
			{
				ID:        accountID + "-" + ex + "-0-ETH-long",
				Type:      domain.PositionTypeCrypto,
				Symbol:    "ETH",
				Name:      "ETH Perp (" + ex + ")",
				Amount:    1.5 * m,
				AccountID: accountID,
				IsDebt:    false,
				PriceKey:  domain.PerpPriceKey(exchange, "ETH"),
			},
			{
				ID:        accountID + "-" + ex + "-0-BTC-short",
				Type:      domain.PositionTypeCrypto,
				Symbol:    "BTC",
				Name:      "BTC Perp (" + ex + ")",
				Amount:    0.1 * m,
				AccountID: accountID,
				IsDebt:    true,
				PriceKey:  domain.PerpPriceKey(exchange, "BTC"),
			},
			{
				ID:        accountID + "-" + ex + "-0-USDC-margin",
				Type:      domain.PositionTypeCrypto,
				Symbol:    "USDC",
				Name:      "USDC (Margin)",
				Amount:    4000 * m,
				AccountID: accountID,
				PriceKey:  domain.PerpPriceKey(exchange, "USDC"),
			},
		},
		Prices:       prices,
		AccountValue: 4000 * m,
	}
}
