package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"folioscope/internal/cache/memory"
	"folioscope/internal/domain"
	"folioscope/internal/provider"
)

const viewCacheKey = "portfolio_view"

// symbolToSpotID maps exchange tickers to spot oracle provider ids.
// Symbols outside the map simply do not get an oracle price.
var symbolToSpotID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"WETH":  "ethereum",
	"SOL":   "solana",
	"USDC":  "usd-coin",
	"USDT":  "tether",
	"DAI":   "dai",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"AAVE":  "aave",
	"DOGE":  "dogecoin",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"LTC":   "litecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"ATOM":  "cosmos",
}

// WalletAggregator is the wallet pipeline as the portfolio service sees
// it.
type WalletAggregator interface {
	FetchAll(ctx context.Context, accounts []domain.Account, forceRefresh bool) provider.WalletResult
	ClearCache()
}

// CexAggregator is the CEX balance provider as the portfolio service
// sees it.
type CexAggregator interface {
	FetchAll(ctx context.Context, accounts []domain.Account) ([]domain.Position, map[string]domain.PriceData, []domain.SourceError)
}

// Notifier pushes refresh events to connected clients. A nil notifier is
// allowed and means no push channel is wired.
type Notifier interface {
	Broadcast(event domain.RefreshEvent)
}

// PortfolioService assembles the full portfolio view: wallet and CEX
// aggregation, manual positions, and price resolution, behind a short
// view cache so bursts of UI requests hit upstreams once.
type PortfolioService struct {
	accounts domain.AccountStore
	manual   domain.ManualPositionStore
	wallet   WalletAggregator
	cex      CexAggregator
	crypto   *CryptoPriceService
	stocks   *StockPriceService
	notifier Notifier

	viewCache *memory.Cache[domain.PortfolioView]
	viewTTL   time.Duration

	logger *slog.Logger
}

// NewPortfolioService creates the portfolio orchestrator.
func NewPortfolioService(
	accounts domain.AccountStore,
	manual domain.ManualPositionStore,
	wallet WalletAggregator,
	cex CexAggregator,
	crypto *CryptoPriceService,
	stocks *StockPriceService,
	notifier Notifier,
	viewTTL time.Duration,
	logger *slog.Logger,
) *PortfolioService {
	if viewTTL <= 0 {
		viewTTL = time.Minute
	}
	return &PortfolioService{
		accounts:  accounts,
		manual:    manual,
		wallet:    wallet,
		cex:       cex,
		crypto:    crypto,
		stocks:    stocks,
		notifier:  notifier,
		viewCache: memory.New[domain.PortfolioView](),
		viewTTL:   viewTTL,
		logger:    logger.With("service", "portfolio"),
	}
}

// GetPortfolio returns the assembled portfolio view. forceRefresh drops
// every cache layer first so the pass hits live sources.
func (s *PortfolioService) GetPortfolio(ctx context.Context, forceRefresh bool) (domain.PortfolioView, error) {
	if !forceRefresh {
		if entry, ok := s.viewCache.Get(viewCacheKey); ok {
			return entry.Data, nil
		}
	} else {
		s.wallet.ClearCache()
		if err := s.crypto.Clear(ctx); err != nil {
			s.logger.Warn("price cache clear failed", "error", err)
		}
	}

	return s.assemble(ctx, forceRefresh)
}

// Refresh rebuilds the view past the view cache but leaves the provider
// and price caches to their own TTLs. The background loop uses this so
// a tick never drops caches the user did not ask to drop.
func (s *PortfolioService) Refresh(ctx context.Context) (domain.PortfolioView, error) {
	return s.assemble(ctx, false)
}

func (s *PortfolioService) assemble(ctx context.Context, forceRefresh bool) (domain.PortfolioView, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return domain.PortfolioView{}, fmt.Errorf("portfolio: list accounts: %w", err)
	}

	walletRes := s.wallet.FetchAll(ctx, accounts, forceRefresh)

	view := domain.PortfolioView{
		Positions: walletRes.Positions,
		Prices:    walletRes.Prices,
		Errors:    walletRes.Errors,
		IsDemo:    walletRes.IsDemo,
		FetchedAt: time.Now(),
	}
	if view.Prices == nil {
		view.Prices = map[string]domain.PriceData{}
	}

	cexPositions, cexPrices, cexErrs := s.cex.FetchAll(ctx, accounts)
	view.Positions = append(view.Positions, cexPositions...)
	for k, v := range cexPrices {
		view.Prices[k] = v
	}
	view.Errors = append(view.Errors, cexErrs...)

	s.appendManualPositions(ctx, &view)
	s.resolveSpotPrices(ctx, &view)
	s.resolveStockQuotes(ctx, &view)

	s.viewCache.Set(viewCacheKey, view, s.viewTTL)

	if s.notifier != nil {
		s.notifier.Broadcast(domain.RefreshEvent{
			Event:     "portfolio_refreshed",
			At:        view.FetchedAt,
			Positions: len(view.Positions),
			Errors:    len(view.Errors),
		})
	}

	return view, nil
}

// appendManualPositions merges user-entered positions into the view,
// assigning price keys by position type.
func (s *PortfolioService) appendManualPositions(ctx context.Context, view *domain.PortfolioView) {
	manual, err := s.manual.List(ctx)
	if err != nil {
		s.logger.Error("manual position list failed", "error", err)
		view.Errors = append(view.Errors, domain.SourceError{Source: "storage", Message: err.Error()})
		return
	}

	for _, p := range manual {
		symbol := strings.ToUpper(p.Symbol)
		if p.PriceKey == "" {
			switch p.Type {
			case domain.PositionTypeStock, domain.PositionTypeETF:
				p.PriceKey = "stock-" + symbol
			case domain.PositionTypeCash:
				p.PriceKey = "cash-" + symbol
			default:
				if id, ok := symbolToSpotID[symbol]; ok {
					p.PriceKey = domain.SpotPriceKey(id)
				}
			}
		}
		if p.Type == domain.PositionTypeCash {
			view.Prices[p.PriceKey] = domain.PriceData{Symbol: symbol, Price: 1.0, LastUpdated: view.FetchedAt}
		}
		view.Positions = append(view.Positions, p)
	}
}

// resolveSpotPrices fills prices for positions whose price key has no
// usable entry yet, via one batched oracle call. A zero-price entry
// counts as missing; a source that could not price a token must not
// block the oracle from doing so.
func (s *PortfolioService) resolveSpotPrices(ctx context.Context, view *domain.PortfolioView) {
	needed := map[string][]string{} // spot id -> price keys waiting on it
	var ids []string

	for _, p := range view.Positions {
		if p.PriceKey == "" {
			continue
		}
		if existing, ok := view.Prices[p.PriceKey]; ok && existing.Price > 0 {
			continue
		}
		id, ok := symbolToSpotID[strings.ToUpper(p.Symbol)]
		if !ok {
			continue
		}
		if _, seen := needed[id]; !seen {
			ids = append(ids, id)
		}
		needed[id] = append(needed[id], p.PriceKey)
	}
	if len(ids) == 0 {
		return
	}

	resolved := s.crypto.GetPrices(ctx, ids)
	for id, keys := range needed {
		data, ok := resolved[id]
		if !ok {
			continue
		}
		for _, key := range keys {
			view.Prices[key] = data
		}
	}
}

// resolveStockQuotes fills quotes for stock and ETF positions.
func (s *PortfolioService) resolveStockQuotes(ctx context.Context, view *domain.PortfolioView) {
	var symbols []string
	for _, p := range view.Positions {
		if p.Type != domain.PositionTypeStock && p.Type != domain.PositionTypeETF {
			continue
		}
		if existing, ok := view.Prices[p.PriceKey]; ok && existing.Price > 0 {
			continue
		}
		symbols = append(symbols, strings.ToUpper(p.Symbol))
	}
	if len(symbols) == 0 {
		return
	}

	for symbol, data := range s.stocks.GetQuotes(ctx, symbols) {
		view.Prices["stock-"+symbol] = data
	}
}
