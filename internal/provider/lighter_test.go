package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/domain"
	"folioscope/internal/platform/lighter"
)

type fakeLighterAPI struct {
	details    []lighter.OrderBookDetail
	detailsErr error
	subs       []lighter.SubAccount
	subsErr    error
	single     lighter.SubAccount
	singleErr  error
}

func (f *fakeLighterAPI) GetOrderBookDetails(ctx context.Context) ([]lighter.OrderBookDetail, error) {
	return f.details, f.detailsErr
}

func (f *fakeLighterAPI) GetAccountsByL1Address(ctx context.Context, address string) ([]lighter.SubAccount, error) {
	return f.subs, f.subsErr
}

func (f *fakeLighterAPI) GetAccount(ctx context.Context, address string) (lighter.SubAccount, error) {
	return f.single, f.singleErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLighterFetchPositions(t *testing.T) {
	api := &fakeLighterAPI{
		details: []lighter.OrderBookDetail{
			{Symbol: "ETH", IndexPrice: 3250},
			{Symbol: "BTC", IndexPrice: 68000},
		},
		subs: []lighter.SubAccount{
			{
				Index:           3,
				TotalAssetValue: 12000,
				Positions: []lighter.PerpPosition{
					{Symbol: "ETH-PERP", Sign: 1, Position: 2, AvgEntryPrice: 3100},
					{Symbol: "BTC-PERP", Sign: -1, Position: 0.5, AvgEntryPrice: 65000},
					{Symbol: "SOL-PERP", Sign: 1, Position: 0},
				},
				Assets: []lighter.SpotAsset{
					{Symbol: "USDC", Balance: 5000},
					{Symbol: "ETH", Balance: 0},
				},
			},
		},
	}

	p := NewLighter(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	require.Empty(t, result.Err)
	require.Len(t, result.Positions, 3) // zero-size position skipped, zero balance skipped
	assert.Equal(t, 12000.0, result.AccountValue)

	long := result.Positions[0]
	assert.Equal(t, "acct1-lighter-3-ETH-long", long.ID)
	assert.Equal(t, "ETH", long.Symbol)
	assert.Equal(t, 2.0, long.Amount)
	assert.False(t, long.IsDebt)
	assert.Equal(t, 3250.0, result.Prices[long.PriceKey].Price, "index price preferred over entry price")

	short := result.Positions[1]
	assert.Equal(t, "acct1-lighter-3-BTC-short", short.ID)
	assert.True(t, short.IsDebt)
	assert.Equal(t, 0.5, short.Amount, "amount stays absolute for shorts")

	margin := result.Positions[2]
	assert.Equal(t, "acct1-lighter-3-USDC", margin.ID)
	assert.Equal(t, "USDC Margin (Lighter)", margin.Name)
	assert.Equal(t, 1.0, result.Prices[margin.PriceKey].Price)
}

func TestLighterEntryPriceFallback(t *testing.T) {
	api := &fakeLighterAPI{
		detailsErr: errors.New("rate limited"),
		subs: []lighter.SubAccount{
			{Index: 0, Positions: []lighter.PerpPosition{
				{Symbol: "ETH-PERP", Sign: 1, Position: 1, AvgEntryPrice: 3100},
			}},
		},
	}

	p := NewLighter(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	require.Empty(t, result.Err)
	require.Len(t, result.Positions, 1)
	key := domain.PerpPriceKey(domain.PerpLighter, "ETH")
	assert.Equal(t, 3100.0, result.Prices[key].Price, "entry price used when index prices unavailable")
}

func TestLighterNonStableAssetDefersToOracle(t *testing.T) {
	api := &fakeLighterAPI{
		detailsErr: errors.New("rate limited"),
		subs: []lighter.SubAccount{{
			Index:  1,
			Assets: []lighter.SpotAsset{{Symbol: "ETH", Balance: 2}},
		}},
	}

	p := NewLighter(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	require.Empty(t, result.Err)
	require.Len(t, result.Positions, 1)
	assert.NotContains(t, result.Prices, result.Positions[0].PriceKey,
		"unpriced asset leaves the key open for the spot oracle")
}

func TestLighterSingleAccountFallback(t *testing.T) {
	api := &fakeLighterAPI{
		single: lighter.SubAccount{
			Index:           0,
			TotalAssetValue: 800,
			Assets:          []lighter.SpotAsset{{Symbol: "USDC", Balance: 800}},
		},
	}

	p := NewLighter(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	require.Empty(t, result.Err)
	require.Len(t, result.Positions, 1)
	assert.Equal(t, 800.0, result.AccountValue)
}

func TestLighterNoPresence(t *testing.T) {
	api := &fakeLighterAPI{singleErr: domain.ErrNotFound}

	p := NewLighter(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	assert.Empty(t, result.Err, "an unknown address is emptiness, not an error")
	assert.Empty(t, result.Positions)
}

func TestLighterUpstreamFailure(t *testing.T) {
	api := &fakeLighterAPI{
		subsErr:   errors.New("boom"),
		singleErr: errors.New("boom"),
	}

	p := NewLighter(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	assert.NotEmpty(t, result.Err)
	assert.Empty(t, result.Positions)
}
