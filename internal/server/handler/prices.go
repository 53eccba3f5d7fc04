package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"folioscope/internal/domain"
	"folioscope/internal/platform/finnhub"
)

// CryptoPriceService defines what the price handler needs from the
// spot price oracle.
type CryptoPriceService interface {
	GetPrices(ctx context.Context, ids []string) map[string]domain.PriceData
}

// StockPriceService defines what the price handler needs from the
// stock quote service.
type StockPriceService interface {
	GetQuotes(ctx context.Context, symbols []string) map[string]domain.PriceData
	Search(ctx context.Context, query string) ([]finnhub.SearchResult, error)
}

// PriceHandler serves on-demand price lookups outside the portfolio
// view, for the UI's add-position flows.
type PriceHandler struct {
	crypto CryptoPriceService
	stocks StockPriceService
	logger *slog.Logger
}

// NewPriceHandler creates a PriceHandler with the given services and
// logger.
func NewPriceHandler(crypto CryptoPriceService, stocks StockPriceService, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{
		crypto: crypto,
		stocks: stocks,
		logger: logger,
	}
}

// pricesResponse wraps a price lookup response.
type pricesResponse struct {
	Prices map[string]domain.PriceData `json:"prices"`
}

// GetCryptoPrices returns spot prices for a comma-separated list of
// oracle ids. Unknown ids are omitted from the result.
// GET /api/prices/crypto?ids=bitcoin,ethereum
func (h *PriceHandler) GetCryptoPrices(w http.ResponseWriter, r *http.Request) {
	ids := queryList(r, "ids")
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "ids query parameter required")
		return
	}

	prices := h.crypto.GetPrices(r.Context(), ids)
	if prices == nil {
		prices = map[string]domain.PriceData{}
	}

	writeJSON(w, http.StatusOK, pricesResponse{Prices: prices})
}

// GetStockQuotes returns quotes for a comma-separated list of stock or
// ETF symbols. Symbols without a quote are omitted from the result.
// GET /api/prices/stocks?symbols=AAPL,VOO
func (h *PriceHandler) GetStockQuotes(w http.ResponseWriter, r *http.Request) {
	symbols := queryList(r, "symbols")
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols query parameter required")
		return
	}

	quotes := h.stocks.GetQuotes(r.Context(), symbols)
	if quotes == nil {
		quotes = map[string]domain.PriceData{}
	}

	writeJSON(w, http.StatusOK, pricesResponse{Prices: quotes})
}

// searchResponse wraps the symbol search response.
type searchResponse struct {
	Results []finnhub.SearchResult `json:"results"`
}

// SearchSymbols proxies a free-text symbol search to the quote
// provider.
// GET /api/prices/stocks/search?q=apple
func (h *PriceHandler) SearchSymbols(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q query parameter required")
		return
	}

	results, err := h.stocks.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "stock quote provider not configured")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: symbol search failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "symbol search failed")
		return
	}

	if results == nil {
		results = []finnhub.SearchResult{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}
