package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"folioscope/internal/addr"
	"folioscope/internal/domain"
	"folioscope/internal/platform/hyperliquid"
)

// HyperliquidAPI is the slice of the Hyperliquid client this provider
// needs.
type HyperliquidAPI interface {
	GetClearinghouseState(ctx context.Context, address string) (hyperliquid.ClearinghouseState, error)
	GetAllMids(ctx context.Context) (map[string]float64, error)
}

// Hyperliquid normalizes the clearinghouse state into positions. The
// exchange reports a liability-aware account value directly, which is
// passed through untouched.
type Hyperliquid struct {
	api    HyperliquidAPI
	logger *slog.Logger
}

// NewHyperliquid creates the Hyperliquid perp provider.
func NewHyperliquid(api HyperliquidAPI, logger *slog.Logger) *Hyperliquid {
	return &Hyperliquid{api: api, logger: logger.With("provider", string(domain.PerpHyperliquid))}
}

// Exchange implements domain.PerpProvider.
func (p *Hyperliquid) Exchange() domain.PerpExchange {
	return domain.PerpHyperliquid
}

// FetchPositions implements domain.PerpProvider.
func (p *Hyperliquid) FetchPositions(ctx context.Context, address, accountID string) domain.PerpFetchResult {
	address = addr.Checksum(address)

	mids := map[string]float64{}
	if m, err := p.api.GetAllMids(ctx); err != nil {
		p.logger.Warn("mid prices unavailable, falling back to entry prices", "error", err)
	} else {
		mids = m
	}

	state, err := p.api.GetClearinghouseState(ctx, address)
	if err != nil {
		return failedResult(fmt.Errorf("get clearinghouse state for %s: %w", address, err))
	}

	now := time.Now()
	result := domain.PerpFetchResult{
		Prices:       map[string]domain.PriceData{},
		AccountValue: state.MarginSummary.AccountValue,
	}

	for _, ap := range state.AssetPositions {
		pos := ap.Position
		if pos.Szi == 0 {
			continue
		}
		isDebt := pos.Szi < 0

		price := mids[pos.Coin]
		if price == 0 {
			price = pos.EntryPx
		}

		key := domain.PerpPriceKey(domain.PerpHyperliquid, pos.Coin)
		result.Positions = append(result.Positions, domain.Position{
			ID:        fmt.Sprintf("%s-hyperliquid-%s-%s", accountID, pos.Coin, direction(isDebt)),
			Type:      domain.PositionTypeCrypto,
			Symbol:    pos.Coin,
			Name:      perpPositionName(pos.Coin, domain.PerpHyperliquid),
			Amount:    math.Abs(pos.Szi),
			AccountID: accountID,
			IsDebt:    isDebt,
			PriceKey:  key,
		})
		result.Prices[key] = domain.PriceData{Symbol: pos.Coin, Price: price, LastUpdated: now}
	}

	if state.Withdrawable > 0 {
		key := domain.PerpPriceKey(domain.PerpHyperliquid, "USDC")
		result.Positions = append(result.Positions, domain.Position{
			ID:        fmt.Sprintf("%s-hyperliquid-USDC", accountID),
			Type:      domain.PositionTypeCrypto,
			Symbol:    "USDC",
			Name:      marginName("USDC", domain.PerpHyperliquid),
			Amount:    state.Withdrawable,
			AccountID: accountID,
			PriceKey:  key,
		})
		result.Prices[key] = domain.PriceData{Symbol: "USDC", Price: 1.0, LastUpdated: now}
	}

	return result
}

// HasActivity implements domain.PerpProvider.
func (p *Hyperliquid) HasActivity(ctx context.Context, address string) bool {
	state, err := p.api.GetClearinghouseState(ctx, addr.Checksum(address))
	if err != nil {
		return false
	}
	return state.MarginSummary.AccountValue > 0 || len(state.AssetPositions) > 0
}
