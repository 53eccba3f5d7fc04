package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/platform/ethereal"
)

type fakeEtherealAPI struct {
	subs      []ethereal.Subaccount
	products  []ethereal.Product
	positions map[string][]ethereal.PerpPosition
	balances  map[string][]ethereal.Balance
}

func (f *fakeEtherealAPI) GetSubaccounts(ctx context.Context, address string) ([]ethereal.Subaccount, error) {
	return f.subs, nil
}

func (f *fakeEtherealAPI) GetProducts(ctx context.Context) ([]ethereal.Product, error) {
	return f.products, nil
}

func (f *fakeEtherealAPI) GetPositions(ctx context.Context, subaccountID string) ([]ethereal.PerpPosition, error) {
	return f.positions[subaccountID], nil
}

func (f *fakeEtherealAPI) GetBalances(ctx context.Context, subaccountID string) ([]ethereal.Balance, error) {
	return f.balances[subaccountID], nil
}

func TestEtherealMarginEstimateWhenBalancesMissing(t *testing.T) {
	api := &fakeEtherealAPI{
		subs:     []ethereal.Subaccount{{ID: "sub1", Name: "main"}},
		products: []ethereal.Product{{ID: "p1", Ticker: "ETHUSD", BaseAsset: "ETH", IndexPrice: 3250}},
		positions: map[string][]ethereal.PerpPosition{
			"sub1": {{ProductID: "p1", Ticker: "ETHUSD", Size: -2, EntryPrice: 3100, Notional: 6500}},
		},
		balances: map[string][]ethereal.Balance{},
	}

	p := NewEthereal(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	require.Empty(t, result.Err)
	require.Len(t, result.Positions, 2)

	short := result.Positions[0]
	assert.Equal(t, "acct1-ethereal-main-ETH-short", short.ID)
	assert.True(t, short.IsDebt)
	assert.Equal(t, 2.0, short.Amount)
	assert.Equal(t, 3250.0, result.Prices[short.PriceKey].Price)

	estimate := result.Positions[1]
	assert.Equal(t, "acct1-ethereal-main-margin-estimate", estimate.ID)
	assert.Equal(t, 650.0, estimate.Amount, "one tenth of open notional")
	assert.Equal(t, 650.0, result.AccountValue)
}

func TestEtherealNoEstimateWhenBalancesPresent(t *testing.T) {
	api := &fakeEtherealAPI{
		subs:     []ethereal.Subaccount{{ID: "sub1", Name: "main"}},
		products: []ethereal.Product{{ID: "p1", Ticker: "ETHUSD", BaseAsset: "ETH", IndexPrice: 3250}},
		positions: map[string][]ethereal.PerpPosition{
			"sub1": {{ProductID: "p1", Ticker: "ETHUSD", Size: 1, EntryPrice: 3100, Notional: 3250}},
		},
		balances: map[string][]ethereal.Balance{
			"sub1": {{TokenName: "USDe", Amount: 1200}},
		},
	}

	p := NewEthereal(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	require.Empty(t, result.Err)
	require.Len(t, result.Positions, 2)
	for _, pos := range result.Positions {
		assert.NotContains(t, pos.ID, "margin-estimate")
	}
	assert.Equal(t, 1200.0, result.AccountValue)
}

func TestEtherealNonStableCollateralDefersToOracle(t *testing.T) {
	api := &fakeEtherealAPI{
		subs: []ethereal.Subaccount{{ID: "sub1", Name: "main"}},
		balances: map[string][]ethereal.Balance{
			"sub1": {{TokenName: "WETH", Amount: 2}},
		},
	}

	p := NewEthereal(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	require.Empty(t, result.Err)
	require.Len(t, result.Positions, 1)

	pos := result.Positions[0]
	assert.Equal(t, "WETH", pos.Symbol)
	assert.NotEmpty(t, pos.PriceKey)
	assert.NotContains(t, result.Prices, pos.PriceKey,
		"unpriced collateral leaves the key open for the spot oracle")
}

func TestEtherealNoSubaccounts(t *testing.T) {
	p := NewEthereal(&fakeEtherealAPI{}, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	assert.Empty(t, result.Err)
	assert.Empty(t, result.Positions)
	assert.Zero(t, result.AccountValue)
}
