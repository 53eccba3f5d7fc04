package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/domain"
)

type fakePortfolioService struct {
	view         domain.PortfolioView
	err          error
	forceRefresh bool
}

func (f *fakePortfolioService) GetPortfolio(ctx context.Context, forceRefresh bool) (domain.PortfolioView, error) {
	f.forceRefresh = forceRefresh
	return f.view, f.err
}

func TestGetPortfolio(t *testing.T) {
	svc := &fakePortfolioService{view: domain.PortfolioView{
		Positions: []domain.Position{{ID: "p1", Symbol: "ETH", Amount: 2}},
		Prices:    map[string]domain.PriceData{"spot-ethereum": {Price: 3000}},
		FetchedAt: time.Now(),
	}}
	h := NewPortfolioHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rec := httptest.NewRecorder()

	h.GetPortfolio(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.forceRefresh)

	var view domain.PortfolioView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Positions, 1)
	assert.Equal(t, "ETH", view.Positions[0].Symbol)
	assert.Equal(t, 3000.0, view.Prices["spot-ethereum"].Price)
}

func TestGetPortfolioForceRefresh(t *testing.T) {
	svc := &fakePortfolioService{}
	h := NewPortfolioHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio?forceRefresh=true", nil)
	rec := httptest.NewRecorder()

	h.GetPortfolio(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.forceRefresh)
}

func TestGetPortfolioError(t *testing.T) {
	svc := &fakePortfolioService{err: errors.New("storage down")}
	h := NewPortfolioHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rec := httptest.NewRecorder()

	h.GetPortfolio(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "storage down", "internal details stay out of responses")
}
