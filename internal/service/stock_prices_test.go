package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/platform/finnhub"
)

type fakeFinnhub struct {
	configured bool
	quotes     map[string]finnhub.Quote
	err        error
	calls      int
}

func (f *fakeFinnhub) Configured() bool { return f.configured }

func (f *fakeFinnhub) GetQuote(ctx context.Context, symbol string) (finnhub.Quote, error) {
	f.calls++
	if f.err != nil {
		return finnhub.Quote{}, f.err
	}
	return f.quotes[symbol], nil
}

func (f *fakeFinnhub) SearchSymbols(ctx context.Context, query string) ([]finnhub.SearchResult, error) {
	return nil, nil
}

func TestStockQuotesLiveAndCached(t *testing.T) {
	api := &fakeFinnhub{configured: true, quotes: map[string]finnhub.Quote{
		"AAPL": {Current: 231.2, Change: 2.1, ChangePercent: 0.92},
	}}
	s := NewStockPriceService(api, time.Minute, testLogger())

	quotes := s.GetQuotes(context.Background(), []string{"aapl"})
	require.Contains(t, quotes, "AAPL", "symbols normalize to upper case")
	assert.Equal(t, 231.2, quotes["AAPL"].Price)

	s.GetQuotes(context.Background(), []string{"AAPL"})
	assert.Equal(t, 1, api.calls, "second lookup served from cache")
}

func TestStockQuotesFallbackWhenUnconfigured(t *testing.T) {
	s := NewStockPriceService(&fakeFinnhub{}, time.Minute, testLogger())

	quotes := s.GetQuotes(context.Background(), []string{"VOO", "OBSCURE"})
	assert.Contains(t, quotes, "VOO")
	assert.NotContains(t, quotes, "OBSCURE")
}

func TestStockQuotesFallbackOnError(t *testing.T) {
	api := &fakeFinnhub{configured: true, err: errors.New("down")}
	s := NewStockPriceService(api, time.Minute, testLogger())

	quotes := s.GetQuotes(context.Background(), []string{"SPY"})
	require.Contains(t, quotes, "SPY")
	assert.Equal(t, fallbackQuotes["SPY"].Price, quotes["SPY"].Price)
}
