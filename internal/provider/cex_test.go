package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/domain"
)

type fakeFetcher struct {
	balances []CexBalance
	err      error
}

func (f fakeFetcher) FetchBalances(ctx context.Context) ([]CexBalance, error) {
	return f.balances, f.err
}

func fetcherFactory(f fakeFetcher) FetcherFactory {
	return func(apiKey, apiSecret string) BalanceFetcher { return f }
}

func TestCexFetchAccountPositions(t *testing.T) {
	p := NewCexWithFetchers(map[domain.CexExchange]FetcherFactory{
		domain.CexBinance: fetcherFactory(fakeFetcher{balances: []CexBalance{
			{Symbol: "BTC", Amount: 0.25},
			{Symbol: "USDC", Amount: 1500},
			{Symbol: "DUST", Amount: 0},
		}}),
	}, "", testLogger())

	account := domain.Account{ID: "acct1", Name: "Main", Kind: domain.AccountKindCex, Exchange: domain.CexBinance, Active: true}
	positions, prices, err := p.FetchAccountPositions(context.Background(), account)

	require.NoError(t, err)
	require.Len(t, positions, 2)

	btc := positions[0]
	assert.Equal(t, "acct1-binance-BTC", btc.ID)
	assert.Equal(t, "Bitcoin", btc.Name)
	assert.Equal(t, 0.25, btc.Amount)

	usdc := positions[1]
	assert.Equal(t, 1.0, prices[usdc.PriceKey].Price, "stablecoins pinned to 1.0")
	_, hasBTCPrice := prices[btc.PriceKey]
	assert.False(t, hasBTCPrice, "non-stable prices left to the spot oracle")
}

func TestCexFetchAllIsolatesFailures(t *testing.T) {
	p := NewCexWithFetchers(map[domain.CexExchange]FetcherFactory{
		domain.CexBinance:  fetcherFactory(fakeFetcher{err: errors.New("invalid key")}),
		domain.CexCoinbase: fetcherFactory(fakeFetcher{balances: []CexBalance{{Symbol: "ETH", Amount: 3}}}),
	}, "", testLogger())

	accounts := []domain.Account{
		{ID: "a1", Name: "Binance", Kind: domain.AccountKindCex, Exchange: domain.CexBinance, Active: true},
		{ID: "a2", Name: "Coinbase", Kind: domain.AccountKindCex, Exchange: domain.CexCoinbase, Active: true},
		{ID: "a3", Name: "Inactive", Kind: domain.AccountKindCex, Exchange: domain.CexCoinbase, Active: false},
	}

	positions, _, errs := p.FetchAll(context.Background(), accounts)

	require.Len(t, positions, 1, "healthy exchange survives the failed one")
	assert.Equal(t, "a2-coinbase-ETH", positions[0].ID)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Source, "Binance")
}

func TestCexUnsupportedExchange(t *testing.T) {
	p := NewCexWithFetchers(map[domain.CexExchange]FetcherFactory{}, "", testLogger())

	account := domain.Account{ID: "a1", Kind: domain.AccountKindCex, Exchange: "kraken", Active: true}
	_, _, err := p.FetchAccountPositions(context.Background(), account)
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}
