package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/platform/hyperliquid"
)

type fakeHyperliquidAPI struct {
	state    hyperliquid.ClearinghouseState
	stateErr error
	mids     map[string]float64
	midsErr  error
}

func (f *fakeHyperliquidAPI) GetClearinghouseState(ctx context.Context, address string) (hyperliquid.ClearinghouseState, error) {
	return f.state, f.stateErr
}

func (f *fakeHyperliquidAPI) GetAllMids(ctx context.Context) (map[string]float64, error) {
	return f.mids, f.midsErr
}

func TestHyperliquidFetchPositions(t *testing.T) {
	api := &fakeHyperliquidAPI{
		mids: map[string]float64{"ETH": 3260},
		state: hyperliquid.ClearinghouseState{
			MarginSummary: hyperliquid.MarginSummary{AccountValue: 9500},
			Withdrawable:  4200,
			AssetPositions: []hyperliquid.AssetPosition{
				{Position: hyperliquid.PerpPosition{Coin: "ETH", Szi: -1.5, EntryPx: 3100}},
				{Position: hyperliquid.PerpPosition{Coin: "BTC", Szi: 0}},
			},
		},
	}

	p := NewHyperliquid(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	require.Empty(t, result.Err)
	require.Len(t, result.Positions, 2)
	assert.Equal(t, 9500.0, result.AccountValue)

	short := result.Positions[0]
	assert.Equal(t, "acct1-hyperliquid-ETH-short", short.ID)
	assert.True(t, short.IsDebt)
	assert.Equal(t, 1.5, short.Amount)
	assert.Equal(t, 3260.0, result.Prices[short.PriceKey].Price, "mid price preferred over entry price")

	margin := result.Positions[1]
	assert.Equal(t, "acct1-hyperliquid-USDC", margin.ID)
	assert.Equal(t, 4200.0, margin.Amount)
	assert.Equal(t, 1.0, result.Prices[margin.PriceKey].Price)
}

func TestHyperliquidEntryPriceFallback(t *testing.T) {
	api := &fakeHyperliquidAPI{
		midsErr: errors.New("timeout"),
		state: hyperliquid.ClearinghouseState{
			AssetPositions: []hyperliquid.AssetPosition{
				{Position: hyperliquid.PerpPosition{Coin: "ETH", Szi: 1, EntryPx: 3100}},
			},
		},
	}

	p := NewHyperliquid(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	require.Empty(t, result.Err)
	require.Len(t, result.Positions, 1)
	assert.Equal(t, 3100.0, result.Prices[result.Positions[0].PriceKey].Price)
}

func TestHyperliquidStateFailure(t *testing.T) {
	api := &fakeHyperliquidAPI{stateErr: errors.New("boom")}

	p := NewHyperliquid(api, testLogger())
	result := p.FetchPositions(context.Background(), "0xAbC0000000000000000000000000000000000001", "acct1")

	assert.NotEmpty(t, result.Err)
	assert.Empty(t, result.Positions)
}
