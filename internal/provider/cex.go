package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"folioscope/internal/crypto"
	"folioscope/internal/domain"
	"folioscope/internal/platform/binance"
	"folioscope/internal/platform/coinbase"
	"folioscope/internal/settle"
)

// CexBalance is one asset balance normalized across exchanges: free and
// held amounts already summed.
type CexBalance struct {
	Symbol string
	Amount float64
}

// BalanceFetcher fetches every asset balance for one credentialed
// exchange account.
type BalanceFetcher interface {
	FetchBalances(ctx context.Context) ([]CexBalance, error)
}

// FetcherFactory builds a BalanceFetcher bound to one credential pair.
type FetcherFactory func(apiKey, apiSecret string) BalanceFetcher

// cexAssetNames maps common exchange tickers to display names. Unknown
// tickers fall back to the ticker itself.
var cexAssetNames = map[string]string{
	"BTC":   "Bitcoin",
	"ETH":   "Ethereum",
	"SOL":   "Solana",
	"USDC":  "USD Coin",
	"USDT":  "Tether",
	"DAI":   "Dai",
	"LINK":  "Chainlink",
	"UNI":   "Uniswap",
	"AAVE":  "Aave",
	"DOGE":  "Dogecoin",
	"ADA":   "Cardano",
	"XRP":   "XRP",
	"LTC":   "Litecoin",
	"DOT":   "Polkadot",
	"AVAX":  "Avalanche",
	"MATIC": "Polygon",
	"ATOM":  "Cosmos",
}

// Cex fetches spot balances from every configured centralized exchange
// account. Accounts fan out concurrently with settle-all semantics: one
// exchange failing or one bad credential never hides the others.
type Cex struct {
	fetchers   map[domain.CexExchange]FetcherFactory
	passphrase string // decrypts API secrets stored encrypted at rest
	logger     *slog.Logger
}

// NewCex creates the CEX balance provider with the default per-exchange
// clients.
func NewCex(binanceURL, coinbaseURL, passphrase string, logger *slog.Logger) *Cex {
	return &Cex{
		fetchers: map[domain.CexExchange]FetcherFactory{
			domain.CexBinance: func(apiKey, apiSecret string) BalanceFetcher {
				return binanceFetcher{client: binance.NewClient(binanceURL, apiKey, apiSecret)}
			},
			domain.CexCoinbase: func(apiKey, apiSecret string) BalanceFetcher {
				return coinbaseFetcher{client: coinbase.NewClient(coinbaseURL, apiKey, apiSecret)}
			},
		},
		passphrase: passphrase,
		logger:     logger.With("provider", "cex"),
	}
}

// NewCexWithFetchers creates the provider with explicit fetcher
// factories.
func NewCexWithFetchers(fetchers map[domain.CexExchange]FetcherFactory, passphrase string, logger *slog.Logger) *Cex {
	return &Cex{fetchers: fetchers, passphrase: passphrase, logger: logger.With("provider", "cex")}
}

// FetchAccountPositions returns positions for one exchange account.
// Stablecoin prices are pinned to 1.0; everything else is left to the
// spot price oracle via the cex price key.
func (p *Cex) FetchAccountPositions(ctx context.Context, account domain.Account) ([]domain.Position, map[string]domain.PriceData, error) {
	factory, ok := p.fetchers[account.Exchange]
	if !ok {
		return nil, nil, fmt.Errorf("exchange %q: %w", account.Exchange, domain.ErrUnsupported)
	}

	secret, err := p.resolveSecret(account)
	if err != nil {
		return nil, nil, err
	}

	balances, err := factory(account.APIKey, secret).FetchBalances(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	prices := map[string]domain.PriceData{}
	var positions []domain.Position

	for _, bal := range balances {
		if bal.Amount <= 0 {
			continue
		}

		name, ok := cexAssetNames[bal.Symbol]
		if !ok {
			name = bal.Symbol
		}

		key := domain.CexPriceKey(account.Exchange, bal.Symbol)
		positions = append(positions, domain.Position{
			ID:        fmt.Sprintf("%s-%s-%s", account.ID, account.Exchange, bal.Symbol),
			Type:      domain.PositionTypeCrypto,
			Symbol:    bal.Symbol,
			Name:      name,
			Amount:    bal.Amount,
			AccountID: account.ID,
			PriceKey:  key,
		})
		if isStablecoin(bal.Symbol) {
			prices[key] = domain.PriceData{Symbol: bal.Symbol, Price: 1.0, LastUpdated: now}
		}
	}

	return positions, prices, nil
}

// FetchAll fans out over every active CEX account and merges the
// settled results. Inactive accounts are skipped; failed accounts
// surface as tagged source errors.
func (p *Cex) FetchAll(ctx context.Context, accounts []domain.Account) ([]domain.Position, map[string]domain.PriceData, []domain.SourceError) {
	type fetched struct {
		positions []domain.Position
		prices    map[string]domain.PriceData
	}

	var tasks []settle.Task[fetched]
	for _, account := range accounts {
		if account.Kind != domain.AccountKindCex || !account.Active {
			continue
		}
		account := account
		tasks = append(tasks, settle.Task[fetched]{
			Source: fmt.Sprintf("%s (%s)", account.Name, account.Exchange),
			Run: func(ctx context.Context) (fetched, error) {
				positions, prices, err := p.FetchAccountPositions(ctx, account)
				return fetched{positions: positions, prices: prices}, err
			},
		})
	}

	prices := map[string]domain.PriceData{}
	var positions []domain.Position
	var errs []domain.SourceError

	for _, res := range settle.All(ctx, tasks) {
		if !res.Ok() {
			p.logger.Warn("cex account fetch failed", "source", res.Source, "error", res.Err)
			errs = append(errs, domain.SourceError{Source: res.Source, Message: res.Err.Error()})
			continue
		}
		positions = append(positions, res.Value.positions...)
		for k, v := range res.Value.prices {
			prices[k] = v
		}
	}

	return positions, prices, errs
}

// resolveSecret returns the usable API secret for an account, decrypting
// blobs written by the encryption-at-rest path and passing through
// plaintext secrets from before it existed.
func (p *Cex) resolveSecret(account domain.Account) (string, error) {
	if !crypto.IsEncryptedSecret(account.APISecret) {
		return account.APISecret, nil
	}
	if p.passphrase == "" {
		return "", fmt.Errorf("account %s: secret is encrypted but no passphrase is configured", account.ID)
	}
	secret, err := crypto.DecryptSecret(account.APISecret, p.passphrase)
	if err != nil {
		return "", fmt.Errorf("account %s: %w", account.ID, err)
	}
	return secret, nil
}

type binanceFetcher struct {
	client *binance.Client
}

func (f binanceFetcher) FetchBalances(ctx context.Context) ([]CexBalance, error) {
	balances, err := f.client.GetBalances(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CexBalance, 0, len(balances))
	for _, b := range balances {
		out = append(out, CexBalance{Symbol: b.Asset, Amount: b.Free + b.Locked})
	}
	return out, nil
}

type coinbaseFetcher struct {
	client *coinbase.Client
}

func (f coinbaseFetcher) FetchBalances(ctx context.Context) ([]CexBalance, error) {
	accounts, err := f.client.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CexBalance, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, CexBalance{Symbol: a.Currency, Amount: a.AvailableBalance.Value + a.Hold.Value})
	}
	return out, nil
}
