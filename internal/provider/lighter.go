package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"folioscope/internal/addr"
	"folioscope/internal/domain"
	"folioscope/internal/platform/lighter"
)

// LighterAPI is the slice of the Lighter client this provider needs.
type LighterAPI interface {
	GetOrderBookDetails(ctx context.Context) ([]lighter.OrderBookDetail, error)
	GetAccountsByL1Address(ctx context.Context, address string) ([]lighter.SubAccount, error)
	GetAccount(ctx context.Context, address string) (lighter.SubAccount, error)
}

// Lighter normalizes Lighter sub-accounts into positions. An L1 address
// may own several sub-accounts; every one contributes positions and
// collateral under its own index so IDs stay stable across fetches.
type Lighter struct {
	api    LighterAPI
	logger *slog.Logger
}

// NewLighter creates the Lighter perp provider.
func NewLighter(api LighterAPI, logger *slog.Logger) *Lighter {
	return &Lighter{api: api, logger: logger.With("provider", string(domain.PerpLighter))}
}

// Exchange implements domain.PerpProvider.
func (p *Lighter) Exchange() domain.PerpExchange {
	return domain.PerpLighter
}

// FetchPositions implements domain.PerpProvider.
func (p *Lighter) FetchPositions(ctx context.Context, address, accountID string) domain.PerpFetchResult {
	address = addr.Checksum(address)

	// Index prices are preferred over entry prices but their absence
	// must not lose the positions themselves.
	indexPrices := map[string]float64{}
	details, err := p.api.GetOrderBookDetails(ctx)
	if err != nil {
		p.logger.Warn("index prices unavailable, falling back to entry prices", "error", err)
	} else {
		for _, d := range details {
			indexPrices[d.Symbol] = d.IndexPrice
		}
	}

	subs, err := p.api.GetAccountsByL1Address(ctx, address)
	if err != nil || len(subs) == 0 {
		// Some addresses resolve only through the single-account lookup.
		sub, fallbackErr := p.api.GetAccount(ctx, address)
		switch {
		case fallbackErr == nil:
			subs = []lighter.SubAccount{sub}
		case errors.Is(fallbackErr, domain.ErrNotFound):
			// No presence on the exchange at all.
			return domain.PerpFetchResult{Prices: map[string]domain.PriceData{}}
		default:
			if err == nil {
				err = fallbackErr
			}
			return failedResult(fmt.Errorf("resolve sub-accounts for %s: %w", address, err))
		}
	}

	now := time.Now()
	result := domain.PerpFetchResult{Prices: map[string]domain.PriceData{}}

	for _, sub := range subs {
		result.AccountValue += sub.TotalAssetValue

		for _, pos := range sub.Positions {
			if pos.Position == 0 {
				continue
			}
			base := perpBase(pos.Symbol)
			isDebt := pos.Sign < 0

			price := indexPrices[base]
			if price == 0 {
				price = pos.AvgEntryPrice
			}

			key := domain.PerpPriceKey(domain.PerpLighter, base)
			result.Positions = append(result.Positions, domain.Position{
				ID:        fmt.Sprintf("%s-lighter-%d-%s-%s", accountID, sub.Index, base, direction(isDebt)),
				Type:      domain.PositionTypeCrypto,
				Symbol:    base,
				Name:      perpPositionName(base, domain.PerpLighter),
				Amount:    math.Abs(pos.Position),
				AccountID: accountID,
				IsDebt:    isDebt,
				PriceKey:  key,
			})
			result.Prices[key] = domain.PriceData{Symbol: base, Price: price, LastUpdated: now}
		}

		for _, asset := range sub.Assets {
			if asset.Balance <= 0 {
				continue
			}

			name := marginName(asset.Symbol, domain.PerpLighter)
			price := 1.0
			if !isStablecoin(asset.Symbol) {
				name = fmt.Sprintf("%s (%s)", asset.Symbol, exchangeLabel(domain.PerpLighter))
				price = indexPrices[asset.Symbol]
			}

			key := domain.PerpPriceKey(domain.PerpLighter, asset.Symbol)
			result.Positions = append(result.Positions, domain.Position{
				ID:        fmt.Sprintf("%s-lighter-%d-%s", accountID, sub.Index, asset.Symbol),
				Type:      domain.PositionTypeCrypto,
				Symbol:    asset.Symbol,
				Name:      name,
				Amount:    asset.Balance,
				AccountID: accountID,
				PriceKey:  key,
			})
			// An unknown price is left out of the map entirely so the
			// spot oracle can fill it in later.
			if price > 0 {
				result.Prices[key] = domain.PriceData{Symbol: asset.Symbol, Price: price, LastUpdated: now}
			}
		}
	}

	return result
}

// HasActivity implements domain.PerpProvider.
func (p *Lighter) HasActivity(ctx context.Context, address string) bool {
	subs, err := p.api.GetAccountsByL1Address(ctx, addr.Checksum(address))
	if err != nil {
		return false
	}
	for _, sub := range subs {
		if sub.TotalAssetValue > 0 || len(sub.Positions) > 0 {
			return true
		}
	}
	return false
}
