package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"folioscope/internal/cache/memory"
	"folioscope/internal/domain"
	"folioscope/internal/platform/finnhub"
	"folioscope/internal/settle"
)

// FinnhubAPI is the slice of the stock quote client this service needs.
type FinnhubAPI interface {
	Configured() bool
	GetQuote(ctx context.Context, symbol string) (finnhub.Quote, error)
	SearchSymbols(ctx context.Context, query string) ([]finnhub.SearchResult, error)
}

// fallbackQuotes keeps common tickers renderable when the quote API is
// unconfigured or down. Values are static and obviously stale; they
// exist so demo portfolios chart something plausible.
var fallbackQuotes = map[string]domain.PriceData{
	"AAPL": {Symbol: "AAPL", Price: 228.5},
	"MSFT": {Symbol: "MSFT", Price: 425.1},
	"GOOG": {Symbol: "GOOG", Price: 178.3},
	"AMZN": {Symbol: "AMZN", Price: 186.4},
	"NVDA": {Symbol: "NVDA", Price: 122.8},
	"TSLA": {Symbol: "TSLA", Price: 248.9},
	"SPY":  {Symbol: "SPY", Price: 560.2},
	"VOO":  {Symbol: "VOO", Price: 514.7},
	"VTI":  {Symbol: "VTI", Price: 276.3},
	"QQQ":  {Symbol: "QQQ", Price: 482.6},
}

// StockPriceService resolves stock and ETF quotes with a short cache
// window. Symbols fan out concurrently since the quote API only serves
// one symbol per call.
type StockPriceService struct {
	api    FinnhubAPI
	cache  *memory.Cache[domain.PriceData]
	ttl    time.Duration
	logger *slog.Logger
}

// NewStockPriceService creates the stock quote service.
func NewStockPriceService(api FinnhubAPI, ttl time.Duration, logger *slog.Logger) *StockPriceService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StockPriceService{
		api:    api,
		cache:  memory.New[domain.PriceData](),
		ttl:    ttl,
		logger: logger.With("service", "stock_prices"),
	}
}

// GetQuotes returns a quote for every requested ticker, keyed by the
// upper-cased symbol. Unresolvable symbols fall back to the static table
// when present and are otherwise omitted.
func (s *StockPriceService) GetQuotes(ctx context.Context, symbols []string) map[string]domain.PriceData {
	out := make(map[string]domain.PriceData, len(symbols))

	var missing []string
	for _, raw := range dedupe(symbols) {
		symbol := strings.ToUpper(raw)
		if entry, ok := s.cache.Get(symbol); ok {
			out[symbol] = entry.Data
			continue
		}
		missing = append(missing, symbol)
	}
	if len(missing) == 0 {
		return out
	}

	if !s.api.Configured() {
		for _, symbol := range missing {
			if fallback, ok := fallbackQuotes[symbol]; ok {
				out[symbol] = fallback
			}
		}
		return out
	}

	var tasks []settle.Task[finnhub.Quote]
	for _, symbol := range missing {
		symbol := symbol
		tasks = append(tasks, settle.Task[finnhub.Quote]{
			Source: symbol,
			Run: func(ctx context.Context) (finnhub.Quote, error) {
				return s.api.GetQuote(ctx, symbol)
			},
		})
	}

	now := time.Now()
	for _, res := range settle.All(ctx, tasks) {
		if !res.Ok() || res.Value.Current == 0 {
			if res.Err != nil {
				s.logger.Warn("stock quote fetch failed", "symbol", res.Source, "error", res.Err)
			}
			if fallback, ok := fallbackQuotes[res.Source]; ok {
				out[res.Source] = fallback
			}
			continue
		}

		data := domain.PriceData{
			Symbol:           res.Source,
			Price:            res.Value.Current,
			Change24h:        res.Value.Change,
			ChangePercent24h: res.Value.ChangePercent,
			LastUpdated:      now,
		}
		out[res.Source] = data
		s.cache.Set(res.Source, data, s.ttl)
	}

	return out
}

// Search proxies ticker symbol search to the quote API.
func (s *StockPriceService) Search(ctx context.Context, query string) ([]finnhub.SearchResult, error) {
	if !s.api.Configured() {
		return nil, domain.ErrNotConfigured
	}
	return s.api.SearchSymbols(ctx, query)
}
