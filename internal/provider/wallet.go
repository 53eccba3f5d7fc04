package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"folioscope/internal/addr"
	"folioscope/internal/cache/memory"
	"folioscope/internal/demo"
	"folioscope/internal/domain"
	"folioscope/internal/platform/debank"
	"folioscope/internal/platform/helius"
	"folioscope/internal/platform/solscan"
	"folioscope/internal/settle"
	"folioscope/internal/spam"
)

// DebankAPI is the slice of the wallet aggregator client the pipeline
// needs.
type DebankAPI interface {
	Configured() bool
	GetWalletTokens(ctx context.Context, address string) ([]debank.RawToken, error)
	GetWalletProtocols(ctx context.Context, address string) ([]debank.RawProtocol, error)
}

// HeliusAPI is the primary Solana balance source.
type HeliusAPI interface {
	Configured() bool
	GetBalances(ctx context.Context, address string) (helius.Balances, error)
}

// SolscanAPI is the secondary Solana balance source.
type SolscanAPI interface {
	GetAccountTokens(ctx context.Context, address string) ([]solscan.TokenHolding, error)
}

// PerpFanout fans one wallet account out to its enabled perp exchanges
// and returns the merged, already-settled result.
type PerpFanout interface {
	FetchAccountPerps(ctx context.Context, account domain.Account) ([]domain.Position, map[string]domain.PriceData, []domain.SourceError)
}

// WalletConfig tunes filtering and caching in the wallet pipeline.
type WalletConfig struct {
	// DustMinUSD is the value floor for wallet tokens with a known
	// price. Tokens with price 0 are retained regardless of amount.
	DustMinUSD float64

	// AllowedOverlap lists symbols that may appear both as a raw wallet
	// balance and inside a protocol position without being dropped.
	AllowedOverlap []string

	// ExcludeProtocolHeld drops wallet tokens whose symbol+chain was
	// already counted inside a protocol position for the same wallet.
	ExcludeProtocolHeld bool

	// CacheTTL bounds how long raw upstream responses are reused.
	CacheTTL time.Duration

	// DemoMode forces synthetic data for every account.
	DemoMode bool
}

// WalletResult is the merged output of one aggregation pass over wallet
// accounts.
type WalletResult struct {
	Positions []domain.Position
	Prices    map[string]domain.PriceData
	Errors    []domain.SourceError
	IsDemo    bool
}

// Wallet is the wallet aggregation pipeline. For each wallet account it
// runs protocols, then raw tokens, then perp exchanges, in that order:
// protocol holdings must be known before raw tokens are filtered so
// that double counting can be excluded. Accounts themselves fan out
// concurrently; ordering only holds within one wallet.
type Wallet struct {
	debank  DebankAPI
	helius  HeliusAPI
	solscan SolscanAPI
	perps   PerpFanout

	cfg            WalletConfig
	allowedOverlap map[string]bool

	tokenCache    *memory.Cache[[]domain.WalletBalance]
	protocolCache *memory.Cache[[]domain.DefiPosition]
	solanaCache   *memory.Cache[[]domain.WalletBalance]

	logger *slog.Logger
}

// NewWallet creates the wallet aggregation pipeline.
func NewWallet(debankAPI DebankAPI, heliusAPI HeliusAPI, solscanAPI SolscanAPI, perps PerpFanout, cfg WalletConfig, logger *slog.Logger) *Wallet {
	if cfg.DustMinUSD <= 0 {
		cfg.DustMinUSD = 0.01
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	allowed := make(map[string]bool, len(cfg.AllowedOverlap))
	for _, sym := range cfg.AllowedOverlap {
		allowed[strings.ToUpper(sym)] = true
	}

	return &Wallet{
		debank:         debankAPI,
		helius:         heliusAPI,
		solscan:        solscanAPI,
		perps:          perps,
		cfg:            cfg,
		allowedOverlap: allowed,
		tokenCache:     memory.New[[]domain.WalletBalance](),
		protocolCache:  memory.New[[]domain.DefiPosition](),
		solanaCache:    memory.New[[]domain.WalletBalance](),
		logger:         logger.With("provider", "wallet"),
	}
}

// ClearCache drops every cached upstream response. Called on manual
// refresh so the next pass hits live sources.
func (w *Wallet) ClearCache() {
	w.tokenCache.Clear()
	w.protocolCache.Clear()
	w.solanaCache.Clear()
}

// FetchAll aggregates every active wallet account into one position set.
// Accounts settle independently: a failed account contributes a tagged
// error (and possibly demo data) instead of aborting the pass.
func (w *Wallet) FetchAll(ctx context.Context, accounts []domain.Account, forceRefresh bool) WalletResult {
	var tasks []settle.Task[*aggregator]
	for _, account := range accounts {
		if account.Kind != domain.AccountKindWallet || !account.Active {
			continue
		}
		account := account
		tasks = append(tasks, settle.Task[*aggregator]{
			Source: account.Name,
			Run: func(ctx context.Context) (*aggregator, error) {
				return w.fetchAccount(ctx, account, forceRefresh), nil
			},
		})
	}

	merged := newAggregator()
	result := WalletResult{Prices: merged.prices}
	for _, res := range settle.All(ctx, tasks) {
		merged.merge(res.Value)
		result.IsDemo = result.IsDemo || res.Value.isDemo
	}
	result.Positions = merged.positions
	result.Errors = merged.errors
	return result
}

// fetchAccount builds one wallet account's aggregator. It never fails:
// upstream errors degrade to tagged source errors plus demo data.
func (w *Wallet) fetchAccount(ctx context.Context, account domain.Account, forceRefresh bool) *aggregator {
	agg := newAggregator()

	switch addr.Classify(account.Address) {
	case addr.FamilyEVM:
		w.fetchEVMAccount(ctx, agg, account, forceRefresh)
	case addr.FamilySolana:
		w.fetchSolanaAccount(ctx, agg, account, forceRefresh)
	default:
		w.logger.Warn("skipping account with unsupported address format",
			"account", account.Name, "address", account.Address)
	}

	return agg
}

func (w *Wallet) fetchEVMAccount(ctx context.Context, agg *aggregator, account domain.Account, forceRefresh bool) {
	address := addr.Checksum(account.Address)
	useDemo := w.cfg.DemoMode || account.UseDemoData || !w.debank.Configured()

	// Protocols first: their holdings feed the overlap exclusion below.
	var defi []domain.DefiPosition
	if useDemo {
		defi = demo.DefiPositions(address)
		agg.isDemo = true
	} else {
		var err error
		defi, err = w.fetchProtocols(ctx, address, forceRefresh)
		if err != nil {
			w.logger.Warn("protocol fetch failed, using demo data",
				"account", account.Name, "error", err)
			agg.fail("debank ("+account.Name+")", err)
			defi = demo.DefiPositions(address)
			agg.isDemo = true
		}
	}
	w.emitDefiPositions(agg, account.ID, defi)

	var tokens []domain.WalletBalance
	if agg.isDemo {
		tokens = demo.WalletTokens(address)
	} else {
		var err error
		tokens, err = w.fetchTokens(ctx, address, forceRefresh)
		if err != nil {
			w.logger.Warn("token fetch failed, using demo data",
				"account", account.Name, "error", err)
			agg.fail("debank ("+account.Name+")", err)
			tokens = demo.WalletTokens(address)
			agg.isDemo = true
		}
	}
	w.emitWalletTokens(agg, account.ID, tokens)

	if len(account.PerpExchanges) > 0 && w.perps != nil {
		positions, prices, errs := w.perps.FetchAccountPerps(ctx, account)
		for _, p := range positions {
			agg.add(p)
		}
		for k, v := range prices {
			agg.prices[k] = v
		}
		agg.errors = append(agg.errors, errs...)
	}
}

func (w *Wallet) fetchSolanaAccount(ctx context.Context, agg *aggregator, account domain.Account, forceRefresh bool) {
	address := strings.TrimSpace(account.Address)

	var tokens []domain.WalletBalance
	if w.cfg.DemoMode || account.UseDemoData {
		tokens = demo.SolanaTokens(address)
		agg.isDemo = true
	} else {
		var err error
		tokens, err = w.fetchSolanaTokens(ctx, address, forceRefresh)
		if err != nil {
			w.logger.Warn("solana balance fetch failed, using demo data",
				"account", account.Name, "error", err)
			agg.fail("solana ("+account.Name+")", err)
			tokens = demo.SolanaTokens(address)
			agg.isDemo = true
		}
	}

	for _, bal := range tokens {
		if !w.keepToken(agg, bal, false) {
			continue
		}
		key := domain.SolanaPriceKey(bal.Symbol)
		agg.add(domain.Position{
			ID:        fmt.Sprintf("%s-sol-%s", account.ID, bal.Symbol),
			Type:      domain.PositionTypeCrypto,
			Symbol:    bal.Symbol,
			Name:      bal.Name,
			Amount:    bal.Amount,
			AccountID: account.ID,
			Chain:     "sol",
			PriceKey:  key,
		})
		agg.addPrice(key, bal.Symbol, bal.Price)
	}
}

// fetchProtocols returns the normalized protocol positions for one
// address, reusing a cached copy unless forceRefresh is set.
func (w *Wallet) fetchProtocols(ctx context.Context, address string, forceRefresh bool) ([]domain.DefiPosition, error) {
	cacheKey := "protocols_" + address
	if !forceRefresh {
		if entry, ok := w.protocolCache.Get(cacheKey); ok {
			return entry.Data, nil
		}
	}

	raws, err := w.debank.GetWalletProtocols(ctx, address)
	if err != nil {
		return nil, err
	}

	defi := normalizeProtocols(raws)
	w.protocolCache.Set(cacheKey, defi, w.cfg.CacheTTL)
	return defi, nil
}

func (w *Wallet) fetchTokens(ctx context.Context, address string, forceRefresh bool) ([]domain.WalletBalance, error) {
	cacheKey := "tokens_" + address
	if !forceRefresh {
		if entry, ok := w.tokenCache.Get(cacheKey); ok {
			return entry.Data, nil
		}
	}

	raws, err := w.debank.GetWalletTokens(ctx, address)
	if err != nil {
		return nil, err
	}

	tokens := make([]domain.WalletBalance, 0, len(raws))
	for _, t := range raws {
		tokens = append(tokens, domain.WalletBalance{
			Symbol:     t.Symbol,
			Name:       t.Name,
			Chain:      t.Chain,
			Amount:     t.Amount,
			Price:      t.Price,
			IsVerified: t.IsVerified,
			IsScam:     t.IsScam,
			LogoURL:    t.LogoURL,
		})
	}

	w.tokenCache.Set(cacheKey, tokens, w.cfg.CacheTTL)
	return tokens, nil
}

// fetchSolanaTokens tries the primary source first and falls back to the
// secondary when the primary errors or reports an empty wallet.
func (w *Wallet) fetchSolanaTokens(ctx context.Context, address string, forceRefresh bool) ([]domain.WalletBalance, error) {
	cacheKey := "solana_tokens_" + address
	if !forceRefresh {
		if entry, ok := w.solanaCache.Get(cacheKey); ok {
			return entry.Data, nil
		}
	}

	var tokens []domain.WalletBalance
	if w.helius.Configured() {
		balances, err := w.helius.GetBalances(ctx, address)
		if err != nil {
			w.logger.Warn("primary solana source failed, trying secondary", "error", err)
		} else {
			tokens = solanaBalances(balances)
		}
	}

	if len(tokens) == 0 {
		holdings, err := w.solscan.GetAccountTokens(ctx, address)
		if err != nil {
			return nil, err
		}
		for _, h := range holdings {
			if h.TokenSymbol == "" {
				continue
			}
			tokens = append(tokens, domain.WalletBalance{
				Symbol: h.TokenSymbol,
				Name:   h.TokenName,
				Chain:  "sol",
				Amount: h.Amount.UIAmount,
				Price:  h.PriceUSDT,
			})
		}
	}

	w.solanaCache.Set(cacheKey, tokens, w.cfg.CacheTTL)
	return tokens, nil
}

// solanaBalances converts the primary source's response, including the
// native balance reported in lamports.
func solanaBalances(balances helius.Balances) []domain.WalletBalance {
	var tokens []domain.WalletBalance
	if balances.NativeBalance > 0 {
		tokens = append(tokens, domain.WalletBalance{
			Symbol: "SOL",
			Name:   "Solana",
			Chain:  "sol",
			Amount: float64(balances.NativeBalance) / 1e9,
		})
	}
	for _, t := range balances.Tokens {
		if t.Symbol == "" {
			continue
		}
		amount := t.Amount
		if t.Decimals > 0 {
			amount = t.Amount / math.Pow10(t.Decimals)
		}
		tokens = append(tokens, domain.WalletBalance{
			Symbol: t.Symbol,
			Name:   t.Name,
			Chain:  "sol",
			Amount: amount,
			Price:  t.PriceUSD,
		})
	}
	return tokens
}

// normalizeProtocols flattens raw protocol responses into per-protocol
// supply/debt/reward legs, merging legs of the same symbol and chain.
// Vesting legs keep their earliest unlock time through the merge.
func normalizeProtocols(raws []debank.RawProtocol) []domain.DefiPosition {
	defi := make([]domain.DefiPosition, 0, len(raws))
	for _, raw := range raws {
		pos := domain.DefiPosition{Protocol: raw.Name, Chain: raw.Chain}

		supply := newLegMerger()
		debt := newLegMerger()
		rewards := newLegMerger()

		for _, item := range raw.PortfolioItem {
			detailType := ""
			if len(item.DetailTypes) > 0 {
				detailType = item.DetailTypes[0]
			}

			var unlockAt *time.Time
			if item.Detail.EndAt > 0 {
				t := time.Unix(item.Detail.EndAt, 0).UTC()
				unlockAt = &t
			}

			for _, tok := range item.Detail.SupplyTokens {
				supply.add(tok, detailType, unlockAt)
			}
			for _, tok := range item.Detail.BorrowTokens {
				debt.add(tok, detailType, nil)
			}
			for _, tok := range item.Detail.RewardTokens {
				rewards.add(tok, detailType, nil)
			}
		}

		pos.Supply = supply.legs()
		pos.Debt = debt.legs()
		pos.Rewards = rewards.legs()
		if len(pos.Supply) == 0 && len(pos.Debt) == 0 && len(pos.Rewards) == 0 {
			continue
		}
		defi = append(defi, pos)
	}
	return defi
}

// emitDefiPositions turns protocol legs into positions. Rewards fold
// into the supply side; every supplied or rewarded symbol is marked so
// the raw token pass can exclude it.
func (w *Wallet) emitDefiPositions(agg *aggregator, accountID string, defi []domain.DefiPosition) {
	for _, pos := range defi {
		proto := slug(pos.Protocol)

		emitLeg := func(leg domain.TokenAmount, kind string, isDebt bool) {
			if leg.Amount <= 0 || spam.IsSpamToken(leg.Symbol, "") {
				return
			}
			chain := leg.Chain
			if chain == "" {
				chain = pos.Chain
			}

			name := fmt.Sprintf("%s (%s)", leg.Symbol, pos.Protocol)
			idKind := kind
			if leg.UnlockAt != nil {
				// Vesting balances stay distinct from liquid supply.
				name = fmt.Sprintf("%s (%s, unlocks %s)", leg.Symbol, pos.Protocol, leg.UnlockAt.Format("2006-01-02"))
				idKind = "vesting"
			}

			key := domain.WalletPriceKey(leg.Symbol, chain)
			agg.add(domain.Position{
				ID:        fmt.Sprintf("%s-%s-%s-%s-%s", accountID, proto, chain, leg.Symbol, idKind),
				Type:      domain.PositionTypeCrypto,
				Symbol:    leg.Symbol,
				Name:      name,
				Amount:    leg.Amount,
				AccountID: accountID,
				Chain:     chain,
				Protocol:  pos.Protocol,
				IsDebt:    isDebt,
				PriceKey:  key,
			})
			agg.addPrice(key, leg.Symbol, leg.Price)
			if !isDebt {
				agg.protocolHeld[heldKey(leg.Symbol, chain)] = true
			}
		}

		for _, leg := range pos.Supply {
			emitLeg(leg, "supply", false)
		}
		for _, leg := range pos.Rewards {
			emitLeg(leg, "supply", false)
		}
		for _, leg := range pos.Debt {
			emitLeg(leg, "debt", true)
		}
	}
}

func (w *Wallet) emitWalletTokens(agg *aggregator, accountID string, tokens []domain.WalletBalance) {
	for _, bal := range tokens {
		if !w.keepToken(agg, bal, true) {
			continue
		}
		key := domain.WalletPriceKey(bal.Symbol, bal.Chain)
		agg.add(domain.Position{
			ID:        fmt.Sprintf("%s-wallet-%s-%s", accountID, bal.Chain, bal.Symbol),
			Type:      domain.PositionTypeCrypto,
			Symbol:    bal.Symbol,
			Name:      bal.Name,
			Amount:    bal.Amount,
			AccountID: accountID,
			Chain:     bal.Chain,
			PriceKey:  key,
		})
		agg.addPrice(key, bal.Symbol, bal.Price)
	}
}

// keepToken applies the ingestion filters: positive amount, source scam
// flags, spam heuristics, the protocol overlap exclusion, and the dust
// floor. A token with price 0 always survives the dust check because an
// unknown price is not a zero value.
func (w *Wallet) keepToken(agg *aggregator, bal domain.WalletBalance, checkOverlap bool) bool {
	if bal.Amount <= 0 || bal.IsScam {
		return false
	}
	if spam.IsSpamToken(bal.Symbol, bal.Name) {
		return false
	}
	if checkOverlap && w.cfg.ExcludeProtocolHeld &&
		agg.protocolHeld[heldKey(bal.Symbol, bal.Chain)] &&
		!w.allowedOverlap[strings.ToUpper(bal.Symbol)] {
		return false
	}
	if bal.Price > 0 && bal.Amount*bal.Price < w.cfg.DustMinUSD {
		return false
	}
	return true
}

func heldKey(symbol, chain string) string {
	return strings.ToUpper(symbol) + "|" + chain
}

// slug turns a protocol display name into a stable ID fragment.
func slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

// legMerger accumulates token legs per symbol+chain, keeping the
// earliest unlock time seen for vesting legs.
type legMerger struct {
	order []string
	byKey map[string]*domain.TokenAmount
}

func newLegMerger() *legMerger {
	return &legMerger{byKey: map[string]*domain.TokenAmount{}}
}

func (m *legMerger) add(tok debank.ItemToken, detailType string, unlockAt *time.Time) {
	if tok.Amount <= 0 {
		return
	}
	key := heldKey(tok.Symbol, tok.Chain)
	if unlockAt != nil {
		// Vesting legs merge only with other vesting legs.
		key += "|vesting"
	}

	leg, ok := m.byKey[key]
	if !ok {
		m.order = append(m.order, key)
		m.byKey[key] = &domain.TokenAmount{
			Symbol:     tok.Symbol,
			Chain:      tok.Chain,
			Amount:     tok.Amount,
			Price:      tok.Price,
			DetailType: detailType,
			UnlockAt:   unlockAt,
		}
		return
	}

	leg.Amount += tok.Amount
	if leg.Price == 0 {
		leg.Price = tok.Price
	}
	if unlockAt != nil && (leg.UnlockAt == nil || unlockAt.Before(*leg.UnlockAt)) {
		leg.UnlockAt = unlockAt
	}
}

func (m *legMerger) legs() []domain.TokenAmount {
	out := make([]domain.TokenAmount, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, *m.byKey[key])
	}
	return out
}

// aggregator collects positions with ID-keyed deduplication: a second
// position with an ID already seen accumulates into the existing amount
// instead of appearing twice. Directionality is part of the ID, so a
// long never nets against a short.
type aggregator struct {
	positions    []domain.Position
	index        map[string]int
	prices       map[string]domain.PriceData
	protocolHeld map[string]bool
	errors       []domain.SourceError
	isDemo       bool
}

func newAggregator() *aggregator {
	return &aggregator{
		index:        map[string]int{},
		prices:       map[string]domain.PriceData{},
		protocolHeld: map[string]bool{},
	}
}

func (a *aggregator) add(p domain.Position) {
	if i, ok := a.index[p.ID]; ok {
		a.positions[i].Amount += p.Amount
		return
	}
	a.index[p.ID] = len(a.positions)
	a.positions = append(a.positions, p)
}

func (a *aggregator) addPrice(key, symbol string, price float64) {
	if price <= 0 {
		return
	}
	a.prices[key] = domain.PriceData{Symbol: symbol, Price: price, LastUpdated: time.Now()}
}

func (a *aggregator) fail(source string, err error) {
	a.errors = append(a.errors, domain.SourceError{Source: source, Message: err.Error()})
}

// merge folds another aggregator in, preserving ID dedup across inputs.
func (a *aggregator) merge(other *aggregator) {
	if other == nil {
		return
	}
	for _, p := range other.positions {
		a.add(p)
	}
	for k, v := range other.prices {
		a.prices[k] = v
	}
	a.errors = append(a.errors, other.errors...)
}
