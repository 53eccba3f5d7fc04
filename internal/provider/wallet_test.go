package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioscope/internal/domain"
	"folioscope/internal/platform/debank"
	"folioscope/internal/platform/helius"
	"folioscope/internal/platform/solscan"
)

type fakeDebankAPI struct {
	configured   bool
	tokens       []debank.RawToken
	tokensErr    error
	protocols    []debank.RawProtocol
	protocolsErr error
	tokenCalls   int
}

func (f *fakeDebankAPI) Configured() bool { return f.configured }

func (f *fakeDebankAPI) GetWalletTokens(ctx context.Context, address string) ([]debank.RawToken, error) {
	f.tokenCalls++
	return f.tokens, f.tokensErr
}

func (f *fakeDebankAPI) GetWalletProtocols(ctx context.Context, address string) ([]debank.RawProtocol, error) {
	return f.protocols, f.protocolsErr
}

type fakeHeliusAPI struct {
	configured bool
	balances   helius.Balances
	err        error
}

func (f *fakeHeliusAPI) Configured() bool { return f.configured }

func (f *fakeHeliusAPI) GetBalances(ctx context.Context, address string) (helius.Balances, error) {
	return f.balances, f.err
}

type fakeSolscanAPI struct {
	holdings []solscan.TokenHolding
	err      error
}

func (f *fakeSolscanAPI) GetAccountTokens(ctx context.Context, address string) ([]solscan.TokenHolding, error) {
	return f.holdings, f.err
}

type fakePerpFanout struct {
	positions []domain.Position
	prices    map[string]domain.PriceData
	errors    []domain.SourceError
}

func (f *fakePerpFanout) FetchAccountPerps(ctx context.Context, account domain.Account) ([]domain.Position, map[string]domain.PriceData, []domain.SourceError) {
	return f.positions, f.prices, f.errors
}

const evmAddr = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func walletAccount() domain.Account {
	return domain.Account{ID: "w1", Name: "Main Wallet", Kind: domain.AccountKindWallet, Address: evmAddr, Active: true}
}

func newTestWallet(db DebankAPI, hl HeliusAPI, ss SolscanAPI, perps PerpFanout) *Wallet {
	return NewWallet(db, hl, ss, perps, WalletConfig{
		ExcludeProtocolHeld: true,
		AllowedOverlap:      []string{"USDC", "ETH"},
	}, testLogger())
}

func TestWalletProtocolOverlapExclusion(t *testing.T) {
	db := &fakeDebankAPI{
		configured: true,
		protocols: []debank.RawProtocol{
			{
				ID: "aave3", Name: "Aave V3", Chain: "eth",
				PortfolioItem: []debank.PortfolioItem{
					{
						DetailTypes: []string{"lending"},
						Detail: debank.ItemDetail{
							SupplyTokens: []debank.ItemToken{{Chain: "eth", Symbol: "WETH", Amount: 2, Price: 3200}},
							BorrowTokens: []debank.ItemToken{{Chain: "eth", Symbol: "USDT", Amount: 1000, Price: 1}},
						},
					},
				},
			},
		},
		tokens: []debank.RawToken{
			{Chain: "eth", Symbol: "WETH", Name: "Wrapped Ether", Amount: 0.5, Price: 3200, IsVerified: true},
			{Chain: "eth", Symbol: "USDC", Name: "USD Coin", Amount: 100, Price: 1, IsVerified: true},
			{Chain: "eth", Symbol: "DAI", Name: "Dai", Amount: 50, Price: 1, IsVerified: true},
		},
	}

	w := newTestWallet(db, &fakeHeliusAPI{}, &fakeSolscanAPI{}, nil)
	result := w.FetchAll(context.Background(), []domain.Account{walletAccount()}, false)

	require.Empty(t, result.Errors)
	ids := make(map[string]domain.Position)
	for _, p := range result.Positions {
		ids[p.ID] = p
	}

	supply, ok := ids["w1-aave-v3-eth-WETH-supply"]
	require.True(t, ok)
	assert.Equal(t, 2.0, supply.Amount)
	assert.False(t, supply.IsDebt)

	debt, ok := ids["w1-aave-v3-eth-USDT-debt"]
	require.True(t, ok)
	assert.True(t, debt.IsDebt)
	assert.Equal(t, 1000.0, debt.Amount, "debt amount stays absolute")

	_, walletWETH := ids["w1-wallet-eth-WETH"]
	assert.False(t, walletWETH, "protocol-held token excluded from raw wallet balances")

	_, walletUSDC := ids["w1-wallet-eth-USDC"]
	assert.True(t, walletUSDC, "allow-listed symbols survive the overlap exclusion")

	_, walletDAI := ids["w1-wallet-eth-DAI"]
	assert.True(t, walletDAI)
}

func TestWalletSpamAndDustFilters(t *testing.T) {
	db := &fakeDebankAPI{
		configured: true,
		tokens: []debank.RawToken{
			{Chain: "eth", Symbol: "ETH", Name: "Ethereum", Amount: 1, Price: 3200},
			{Chain: "eth", Symbol: "VISIT-SITE.XYZ", Name: "claim reward", Amount: 99999, Price: 5},
			{Chain: "eth", Symbol: "SCAM", Name: "Totally Real", Amount: 10, Price: 1, IsScam: true},
			{Chain: "eth", Symbol: "PEPE", Name: "Pepe", Amount: 100, Price: 0.00000001},
			{Chain: "eth", Symbol: "MYSTERY", Name: "No Price Yet", Amount: 42, Price: 0},
		},
	}

	w := newTestWallet(db, &fakeHeliusAPI{}, &fakeSolscanAPI{}, nil)
	result := w.FetchAll(context.Background(), []domain.Account{walletAccount()}, false)

	symbols := make(map[string]bool)
	for _, p := range result.Positions {
		symbols[p.Symbol] = true
	}

	assert.True(t, symbols["ETH"])
	assert.False(t, symbols["VISIT-SITE.XYZ"], "spam heuristics applied")
	assert.False(t, symbols["SCAM"], "source scam flag honored")
	assert.False(t, symbols["PEPE"], "dust below the value floor dropped")
	assert.True(t, symbols["MYSTERY"], "unknown price is not a zero value")
}

func TestWalletDemoFallbackIsDeterministic(t *testing.T) {
	db := &fakeDebankAPI{configured: false}

	w := newTestWallet(db, &fakeHeliusAPI{}, &fakeSolscanAPI{}, nil)
	first := w.FetchAll(context.Background(), []domain.Account{walletAccount()}, false)
	second := w.FetchAll(context.Background(), []domain.Account{walletAccount()}, false)

	assert.True(t, first.IsDemo)
	assert.NotEmpty(t, first.Positions)
	assert.Equal(t, first.Positions, second.Positions, "same address always yields the same synthetic portfolio")
}

func TestWalletUpstreamErrorDegradesToDemo(t *testing.T) {
	db := &fakeDebankAPI{
		configured:   true,
		protocolsErr: domain.NewUpstreamError("debank", 429, "rate limited"),
		tokensErr:    domain.NewUpstreamError("debank", 429, "rate limited"),
	}

	w := newTestWallet(db, &fakeHeliusAPI{}, &fakeSolscanAPI{}, nil)
	result := w.FetchAll(context.Background(), []domain.Account{walletAccount()}, false)

	assert.True(t, result.IsDemo)
	assert.NotEmpty(t, result.Positions, "demo data replaces the failed source")
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Source, "debank")
}

func TestWalletTokenCaching(t *testing.T) {
	db := &fakeDebankAPI{
		configured: true,
		tokens:     []debank.RawToken{{Chain: "eth", Symbol: "ETH", Name: "Ethereum", Amount: 1, Price: 3200}},
	}

	w := newTestWallet(db, &fakeHeliusAPI{}, &fakeSolscanAPI{}, nil)
	accounts := []domain.Account{walletAccount()}

	w.FetchAll(context.Background(), accounts, false)
	w.FetchAll(context.Background(), accounts, false)
	assert.Equal(t, 1, db.tokenCalls, "second pass served from cache")

	w.FetchAll(context.Background(), accounts, true)
	assert.Equal(t, 2, db.tokenCalls, "forceRefresh bypasses the cache")
}

func TestWalletSolanaFallbackChain(t *testing.T) {
	account := domain.Account{ID: "s1", Name: "Sol Wallet", Kind: domain.AccountKindWallet,
		Address: "4Nd1mYQFmF2hVqerGzoGxEzW6NeVRyJnd45rnMuGWgzP", Active: true}

	t.Run("secondary source used when primary fails", func(t *testing.T) {
		hl := &fakeHeliusAPI{configured: true, err: errors.New("down")}
		ss := &fakeSolscanAPI{holdings: []solscan.TokenHolding{
			{TokenSymbol: "JUP", TokenName: "Jupiter", Amount: solscan.Amount{UIAmount: 20}, PriceUSDT: 0.8},
		}}

		w := newTestWallet(&fakeDebankAPI{}, hl, ss, nil)
		result := w.FetchAll(context.Background(), []domain.Account{account}, false)

		require.Empty(t, result.Errors)
		require.Len(t, result.Positions, 1)
		assert.Equal(t, "s1-sol-JUP", result.Positions[0].ID)
		assert.Equal(t, 0.8, result.Prices[domain.SolanaPriceKey("JUP")].Price)
	})

	t.Run("demo data when both sources fail", func(t *testing.T) {
		hl := &fakeHeliusAPI{configured: true, err: errors.New("down")}
		ss := &fakeSolscanAPI{err: errors.New("also down")}

		w := newTestWallet(&fakeDebankAPI{}, hl, ss, nil)
		result := w.FetchAll(context.Background(), []domain.Account{account}, false)

		assert.True(t, result.IsDemo)
		assert.NotEmpty(t, result.Positions)
		assert.NotEmpty(t, result.Errors)
	})
}

func TestWalletPerpMerge(t *testing.T) {
	perpKey := domain.PerpPriceKey(domain.PerpLighter, "ETH")
	perps := &fakePerpFanout{
		positions: []domain.Position{{
			ID: "w1-lighter-0-ETH-long", Type: domain.PositionTypeCrypto,
			Symbol: "ETH", Amount: 2, AccountID: "w1", PriceKey: perpKey,
		}},
		prices: map[string]domain.PriceData{perpKey: {Symbol: "ETH", Price: 3250}},
	}

	account := walletAccount()
	account.PerpExchanges = []domain.PerpExchange{domain.PerpLighter}

	db := &fakeDebankAPI{
		configured: true,
		tokens:     []debank.RawToken{{Chain: "eth", Symbol: "ETH", Name: "Ethereum", Amount: 1, Price: 3200}},
	}

	w := newTestWallet(db, &fakeHeliusAPI{}, &fakeSolscanAPI{}, perps)
	result := w.FetchAll(context.Background(), []domain.Account{account}, false)

	ids := make(map[string]bool)
	for _, p := range result.Positions {
		ids[p.ID] = true
	}
	assert.True(t, ids["w1-wallet-eth-ETH"])
	assert.True(t, ids["w1-lighter-0-ETH-long"])
	assert.Equal(t, 3250.0, result.Prices[perpKey].Price)
}

func TestAggregatorAccumulatesDuplicateIDs(t *testing.T) {
	agg := newAggregator()
	agg.add(domain.Position{ID: "a-1", Symbol: "ETH", Amount: 1})
	agg.add(domain.Position{ID: "a-1", Symbol: "ETH", Amount: 2.5})
	agg.add(domain.Position{ID: "a-2", Symbol: "ETH", Amount: 4, IsDebt: true})

	require.Len(t, agg.positions, 2)
	assert.Equal(t, 3.5, agg.positions[0].Amount, "same ID accumulates instead of duplicating")
	assert.Equal(t, 4.0, agg.positions[1].Amount, "distinct direction keeps a distinct position")
}
