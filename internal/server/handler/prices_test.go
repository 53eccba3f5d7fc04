package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/domain"
	"folioscope/internal/platform/finnhub"
)

type fakeCryptoPrices struct {
	prices map[string]domain.PriceData
	ids    []string
}

func (f *fakeCryptoPrices) GetPrices(ctx context.Context, ids []string) map[string]domain.PriceData {
	f.ids = ids
	return f.prices
}

type fakeStockPrices struct {
	quotes  map[string]domain.PriceData
	results []finnhub.SearchResult
	err     error
}

func (f *fakeStockPrices) GetQuotes(ctx context.Context, symbols []string) map[string]domain.PriceData {
	return f.quotes
}

func (f *fakeStockPrices) Search(ctx context.Context, query string) ([]finnhub.SearchResult, error) {
	return f.results, f.err
}

func TestGetCryptoPricesSplitsIDs(t *testing.T) {
	crypto := &fakeCryptoPrices{prices: map[string]domain.PriceData{
		"bitcoin": {Price: 97000},
	}}
	h := NewPriceHandler(crypto, &fakeStockPrices{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/prices/crypto?ids=bitcoin,%20ethereum", nil)
	rec := httptest.NewRecorder()

	h.GetCryptoPrices(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, crypto.ids)

	var resp pricesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 97000.0, resp.Prices["bitcoin"].Price)
}

func TestGetCryptoPricesRequiresIDs(t *testing.T) {
	h := NewPriceHandler(&fakeCryptoPrices{}, &fakeStockPrices{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/prices/crypto", nil)
	rec := httptest.NewRecorder()

	h.GetCryptoPrices(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchSymbolsUnconfigured(t *testing.T) {
	stocks := &fakeStockPrices{err: domain.ErrNotConfigured}
	h := NewPriceHandler(&fakeCryptoPrices{}, stocks, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/prices/stocks/search?q=apple", nil)
	rec := httptest.NewRecorder()

	h.SearchSymbols(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
