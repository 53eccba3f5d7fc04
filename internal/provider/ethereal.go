package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"folioscope/internal/addr"
	"folioscope/internal/domain"
	"folioscope/internal/platform/ethereal"
)

// EtherealAPI is the slice of the Ethereal client this provider needs.
type EtherealAPI interface {
	GetSubaccounts(ctx context.Context, address string) ([]ethereal.Subaccount, error)
	GetProducts(ctx context.Context) ([]ethereal.Product, error)
	GetPositions(ctx context.Context, subaccountID string) ([]ethereal.PerpPosition, error)
	GetBalances(ctx context.Context, subaccountID string) ([]ethereal.Balance, error)
}

// Ethereal normalizes Ethereal sub-accounts into positions. The exchange
// reports no account-level total, so account value is reconstructed from
// collateral balances; when a sub-account has open positions but no
// balance records at all, margin is estimated at one tenth of the open
// notional (10x max leverage) so the account does not show as empty.
type Ethereal struct {
	api    EtherealAPI
	logger *slog.Logger
}

// NewEthereal creates the Ethereal perp provider.
func NewEthereal(api EtherealAPI, logger *slog.Logger) *Ethereal {
	return &Ethereal{api: api, logger: logger.With("provider", string(domain.PerpEthereal))}
}

// Exchange implements domain.PerpProvider.
func (p *Ethereal) Exchange() domain.PerpExchange {
	return domain.PerpEthereal
}

// FetchPositions implements domain.PerpProvider.
func (p *Ethereal) FetchPositions(ctx context.Context, address, accountID string) domain.PerpFetchResult {
	address = addr.Checksum(address)

	subs, err := p.api.GetSubaccounts(ctx, address)
	if err != nil {
		return failedResult(fmt.Errorf("get subaccounts for %s: %w", address, err))
	}
	if len(subs) == 0 {
		return domain.PerpFetchResult{Prices: map[string]domain.PriceData{}}
	}

	products := map[string]ethereal.Product{}
	if list, err := p.api.GetProducts(ctx); err != nil {
		p.logger.Warn("product index prices unavailable, falling back to entry prices", "error", err)
	} else {
		for _, prod := range list {
			products[prod.ID] = prod
		}
	}

	now := time.Now()
	result := domain.PerpFetchResult{Prices: map[string]domain.PriceData{}}

	for _, sub := range subs {
		subTag := sub.Name
		if subTag == "" {
			subTag = sub.ID
		}

		positions, err := p.api.GetPositions(ctx, sub.ID)
		if err != nil {
			return failedResult(fmt.Errorf("get positions for subaccount %s: %w", subTag, err))
		}

		var notional float64
		for _, pos := range positions {
			if pos.Size == 0 {
				continue
			}
			prod, hasProduct := products[pos.ProductID]
			base := prod.BaseAsset
			if base == "" {
				base = strings.TrimSuffix(pos.Ticker, "USD")
			}
			isDebt := pos.Size < 0

			price := pos.EntryPrice
			if hasProduct && prod.IndexPrice > 0 {
				price = prod.IndexPrice
			}
			notional += math.Abs(pos.Notional)

			key := domain.PerpPriceKey(domain.PerpEthereal, base)
			result.Positions = append(result.Positions, domain.Position{
				ID:        fmt.Sprintf("%s-ethereal-%s-%s-%s", accountID, subTag, base, direction(isDebt)),
				Type:      domain.PositionTypeCrypto,
				Symbol:    base,
				Name:      perpPositionName(base, domain.PerpEthereal),
				Amount:    math.Abs(pos.Size),
				AccountID: accountID,
				IsDebt:    isDebt,
				PriceKey:  key,
			})
			result.Prices[key] = domain.PriceData{Symbol: base, Price: price, LastUpdated: now}
		}

		balances, err := p.api.GetBalances(ctx, sub.ID)
		if err != nil {
			return failedResult(fmt.Errorf("get balances for subaccount %s: %w", subTag, err))
		}

		for _, bal := range balances {
			if bal.Amount <= 0 {
				continue
			}
			key := domain.PerpPriceKey(domain.PerpEthereal, bal.TokenName)
			price := 0.0
			if isStablecoin(bal.TokenName) {
				price = 1.0
			}
			result.Positions = append(result.Positions, domain.Position{
				ID:        fmt.Sprintf("%s-ethereal-%s-%s", accountID, subTag, bal.TokenName),
				Type:      domain.PositionTypeCrypto,
				Symbol:    bal.TokenName,
				Name:      marginName(bal.TokenName, domain.PerpEthereal),
				Amount:    bal.Amount,
				AccountID: accountID,
				PriceKey:  key,
			})
			// An unknown price is left out of the map entirely so the
			// spot oracle can fill it in later.
			if price > 0 {
				result.Prices[key] = domain.PriceData{Symbol: bal.TokenName, Price: price, LastUpdated: now}
			}
			result.AccountValue += bal.Amount * price
		}

		// The balance endpoint sometimes returns nothing for a
		// sub-account that clearly has margin backing open positions.
		// Estimate it at notional/10 rather than reporting zero equity.
		if len(balances) == 0 && notional > 0 {
			estimated := notional / 10
			key := domain.PerpPriceKey(domain.PerpEthereal, "USDe")
			result.Positions = append(result.Positions, domain.Position{
				ID:        fmt.Sprintf("%s-ethereal-%s-margin-estimate", accountID, subTag),
				Type:      domain.PositionTypeCrypto,
				Symbol:    "USDe",
				Name:      "USDe Margin (Ethereal, estimated)",
				Amount:    estimated,
				AccountID: accountID,
				PriceKey:  key,
			})
			result.Prices[key] = domain.PriceData{Symbol: "USDe", Price: 1.0, LastUpdated: now}
			result.AccountValue += estimated
		}
	}

	return result
}

// HasActivity implements domain.PerpProvider.
func (p *Ethereal) HasActivity(ctx context.Context, address string) bool {
	subs, err := p.api.GetSubaccounts(ctx, addr.Checksum(address))
	return err == nil && len(subs) > 0
}
