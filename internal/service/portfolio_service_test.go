package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/cache/memory"
	"folioscope/internal/domain"
	"folioscope/internal/platform/coingecko"
	"folioscope/internal/platform/finnhub"
	"folioscope/internal/provider"
)

type fakeAccountStore struct {
	accounts []domain.Account
	err      error
}

func (f *fakeAccountStore) Create(ctx context.Context, a domain.Account) error { return nil }
func (f *fakeAccountStore) Update(ctx context.Context, a domain.Account) error { return nil }
func (f *fakeAccountStore) Delete(ctx context.Context, id string) error        { return nil }
func (f *fakeAccountStore) Get(ctx context.Context, id string) (domain.Account, error) {
	return domain.Account{}, domain.ErrNotFound
}
func (f *fakeAccountStore) List(ctx context.Context) ([]domain.Account, error) {
	return f.accounts, f.err
}

type fakeManualStore struct {
	positions []domain.Position
}

func (f *fakeManualStore) Create(ctx context.Context, p domain.Position) error { return nil }
func (f *fakeManualStore) Update(ctx context.Context, p domain.Position) error { return nil }
func (f *fakeManualStore) Delete(ctx context.Context, id string) error         { return nil }
func (f *fakeManualStore) DeleteByAccount(ctx context.Context, accountID string) error {
	return nil
}
func (f *fakeManualStore) List(ctx context.Context) ([]domain.Position, error) {
	return f.positions, nil
}

type fakeWalletAgg struct {
	result     provider.WalletResult
	fetchCalls int
	clearCalls int
	lastForce  bool
}

func (f *fakeWalletAgg) FetchAll(ctx context.Context, accounts []domain.Account, forceRefresh bool) provider.WalletResult {
	f.fetchCalls++
	f.lastForce = forceRefresh
	return f.result
}

func (f *fakeWalletAgg) ClearCache() { f.clearCalls++ }

type fakeCexAgg struct {
	positions []domain.Position
	prices    map[string]domain.PriceData
	errs      []domain.SourceError
}

func (f *fakeCexAgg) FetchAll(ctx context.Context, accounts []domain.Account) ([]domain.Position, map[string]domain.PriceData, []domain.SourceError) {
	return f.positions, f.prices, f.errs
}

type fakeNotifier struct {
	events []domain.RefreshEvent
}

func (f *fakeNotifier) Broadcast(event domain.RefreshEvent) {
	f.events = append(f.events, event)
}

func newTestPortfolio(wallet *fakeWalletAgg, cex *fakeCexAgg, manual *fakeManualStore, notifier Notifier) *PortfolioService {
	gecko := &fakeGecko{prices: map[string]coingecko.SimplePrice{
		"bitcoin":  {USD: 67500, USD24hChange: 1.8},
		"ethereum": {USD: 3210},
	}}
	crypto := NewCryptoPriceService(gecko, memory.NewPriceCache(time.Minute), testLogger())
	stocks := NewStockPriceService(&fakeFinnhub{configured: true, quotes: map[string]finnhub.Quote{
		"AAPL": {Current: 231.2},
	}}, time.Minute, testLogger())

	return NewPortfolioService(
		&fakeAccountStore{}, manual, wallet, cex, crypto, stocks, notifier, time.Minute, testLogger())
}

func TestGetPortfolioMergesAllSources(t *testing.T) {
	walletKey := domain.WalletPriceKey("ETH", "eth")
	wallet := &fakeWalletAgg{result: provider.WalletResult{
		Positions: []domain.Position{{ID: "w1-wallet-eth-ETH", Symbol: "ETH", Amount: 2, PriceKey: walletKey}},
		Prices:    map[string]domain.PriceData{walletKey: {Symbol: "ETH", Price: 3200}},
	}}
	cex := &fakeCexAgg{
		positions: []domain.Position{{
			ID: "c1-binance-BTC", Type: domain.PositionTypeCrypto,
			Symbol: "BTC", Amount: 0.5, PriceKey: domain.CexPriceKey(domain.CexBinance, "BTC"),
		}},
	}
	manual := &fakeManualStore{positions: []domain.Position{
		{ID: "m1", Type: domain.PositionTypeCash, Symbol: "USD", Amount: 10000},
		{ID: "m2", Type: domain.PositionTypeStock, Symbol: "AAPL", Amount: 12},
	}}
	notifier := &fakeNotifier{}

	s := newTestPortfolio(wallet, cex, manual, notifier)
	view, err := s.GetPortfolio(context.Background(), false)

	require.NoError(t, err)
	assert.Len(t, view.Positions, 4)

	assert.Equal(t, 3200.0, view.Prices[walletKey].Price)
	assert.Equal(t, 67500.0, view.Prices[domain.CexPriceKey(domain.CexBinance, "BTC")].Price,
		"cex position priced through the spot oracle")
	assert.Equal(t, 1.0, view.Prices["cash-USD"].Price)
	assert.Equal(t, 231.2, view.Prices["stock-AAPL"].Price)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "portfolio_refreshed", notifier.events[0].Event)
	assert.Equal(t, 4, notifier.events[0].Positions)
}

func TestGetPortfolioViewCache(t *testing.T) {
	wallet := &fakeWalletAgg{result: provider.WalletResult{}}
	s := newTestPortfolio(wallet, &fakeCexAgg{}, &fakeManualStore{}, nil)

	_, err := s.GetPortfolio(context.Background(), false)
	require.NoError(t, err)
	_, err = s.GetPortfolio(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, wallet.fetchCalls, "second request served from the view cache")

	_, err = s.GetPortfolio(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, wallet.fetchCalls)
	assert.True(t, wallet.lastForce)
	assert.Equal(t, 1, wallet.clearCalls, "forceRefresh drops the wallet caches")
}

func TestGetPortfolioZeroPriceBackfilledByOracle(t *testing.T) {
	key := domain.PerpPriceKey(domain.PerpEthereal, "WETH")
	wallet := &fakeWalletAgg{result: provider.WalletResult{
		Positions: []domain.Position{{ID: "a1-ethereal-main-WETH", Symbol: "WETH", Amount: 2, PriceKey: key}},
		Prices:    map[string]domain.PriceData{key: {Symbol: "WETH", Price: 0}},
	}}

	s := newTestPortfolio(wallet, &fakeCexAgg{}, &fakeManualStore{}, nil)
	view, err := s.GetPortfolio(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, 3210.0, view.Prices[key].Price,
		"a zero-price entry must not block the oracle backfill")
}

func TestRefreshBypassesViewCacheOnly(t *testing.T) {
	wallet := &fakeWalletAgg{result: provider.WalletResult{}}
	s := newTestPortfolio(wallet, &fakeCexAgg{}, &fakeManualStore{}, nil)

	_, err := s.GetPortfolio(context.Background(), false)
	require.NoError(t, err)

	view, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, view.FetchedAt.IsZero())

	assert.Equal(t, 2, wallet.fetchCalls, "refresh bypasses the view cache")
	assert.False(t, wallet.lastForce)
	assert.Zero(t, wallet.clearCalls, "refresh leaves provider caches alone")

	_, err = s.GetPortfolio(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, wallet.fetchCalls, "refresh repopulates the view cache")
}

func TestRefreshKeepsPriceCache(t *testing.T) {
	gecko := &fakeGecko{prices: map[string]coingecko.SimplePrice{"bitcoin": {USD: 67500}}}
	crypto := NewCryptoPriceService(gecko, memory.NewPriceCache(time.Minute), testLogger())
	stocks := NewStockPriceService(&fakeFinnhub{}, time.Minute, testLogger())
	wallet := &fakeWalletAgg{result: provider.WalletResult{
		Positions: []domain.Position{{
			ID: "c1-binance-BTC", Symbol: "BTC", Amount: 1,
			PriceKey: domain.CexPriceKey(domain.CexBinance, "BTC"),
		}},
	}}
	s := NewPortfolioService(
		&fakeAccountStore{}, &fakeManualStore{}, wallet, &fakeCexAgg{},
		crypto, stocks, nil, time.Minute, testLogger())

	_, err := s.GetPortfolio(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, gecko.calls, 1)

	_, err = s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, gecko.calls, 1, "refresh serves prices from the cache")
}

func TestGetPortfolioAccountStoreFailure(t *testing.T) {
	s := NewPortfolioService(
		&fakeAccountStore{err: errors.New("connection refused")},
		&fakeManualStore{}, &fakeWalletAgg{}, &fakeCexAgg{},
		NewCryptoPriceService(&fakeGecko{}, memory.NewPriceCache(time.Minute), testLogger()),
		NewStockPriceService(&fakeFinnhub{}, time.Minute, testLogger()),
		nil, time.Minute, testLogger())

	_, err := s.GetPortfolio(context.Background(), false)
	assert.Error(t, err)
}
