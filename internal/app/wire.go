package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "folioscope/internal/blob/s3"
	"folioscope/internal/cache/memory"
	"folioscope/internal/cache/redis"
	"folioscope/internal/config"
	"folioscope/internal/domain"
	"folioscope/internal/platform/coingecko"
	"folioscope/internal/platform/debank"
	"folioscope/internal/platform/ethereal"
	"folioscope/internal/platform/finnhub"
	"folioscope/internal/platform/helius"
	"folioscope/internal/platform/hyperliquid"
	"folioscope/internal/platform/lighter"
	"folioscope/internal/platform/solscan"
	"folioscope/internal/provider"
	"folioscope/internal/server/ws"
	"folioscope/internal/service"
	"folioscope/internal/store/postgres"
)

// Dependencies bundles every service the application needs to run. It
// is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	Accounts  *service.AccountService
	Manual    *service.ManualPositionService
	Portfolio *service.PortfolioService
	Crypto    *service.CryptoPriceService
	Stocks    *service.StockPriceService
	Snapshots *service.SnapshotService
	Hub       *ws.Hub
}

// Wire constructs all concrete dependency implementations from the
// given configuration and returns them together with a cleanup
// function that should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	accountStore := postgres.NewAccountStore(pool)
	manualStore := postgres.NewManualPositionStore(pool)
	snapshotStore := postgres.NewSnapshotStore(pool)

	// --- Spot price cache: Redis when configured, else in-process ---
	var priceCache domain.SpotPriceCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		priceCache = redis.NewPriceCache(redisClient, cfg.Portfolio.PriceTTL.Duration)
	} else {
		priceCache = memory.NewPriceCache(cfg.Portfolio.PriceTTL.Duration)
	}

	// --- S3 snapshot archival (optional) ---
	var archiver domain.SnapshotArchiver
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		archiver = s3blob.NewSnapshotArchiver(s3blob.NewWriter(s3Client), snapshotStore, logger)
	}

	// --- Platform clients ---
	debankClient := debank.NewClient(cfg.Providers.DebankBaseURL, cfg.Providers.DebankAccessKey)
	heliusClient := helius.NewClient(cfg.Providers.HeliusBaseURL, cfg.Providers.HeliusAPIKey)
	solscanClient := solscan.NewClient(cfg.Providers.SolscanBaseURL)
	geckoClient := coingecko.NewClient(cfg.Providers.CoingeckoBaseURL, cfg.Providers.CoingeckoAPIKey)
	finnhubClient := finnhub.NewClient(cfg.Providers.FinnhubBaseURL, cfg.Providers.FinnhubToken)
	lighterClient := lighter.NewClient(cfg.Providers.LighterBaseURL)
	etherealClient := ethereal.NewClient(cfg.Providers.EtherealBaseURL)
	hyperliquidClient := hyperliquid.NewClient(cfg.Providers.HyperliquidBaseURL)

	// --- Perp providers, registered per exchange ---
	registry := provider.NewRegistry(
		provider.NewLighter(lighterClient, logger),
		provider.NewEthereal(etherealClient, logger),
		provider.NewHyperliquid(hyperliquidClient, logger),
	)
	perps := service.NewPerpExchangeService(registry, cfg.Portfolio.DemoMode, logger)

	// --- Aggregation providers ---
	wallet := provider.NewWallet(debankClient, heliusClient, solscanClient, perps, provider.WalletConfig{
		DustMinUSD:          cfg.Portfolio.DustMinUSD,
		AllowedOverlap:      cfg.Portfolio.AllowedOverlap,
		ExcludeProtocolHeld: cfg.Portfolio.ExcludeProtocolHeld,
		CacheTTL:            cfg.Portfolio.CacheTTL.Duration,
		DemoMode:            cfg.Portfolio.DemoMode,
	}, logger)
	cex := provider.NewCex(
		cfg.Providers.BinanceBaseURL,
		cfg.Providers.CoinbaseBaseURL,
		cfg.Portfolio.SecretPassphrase,
		logger,
	)

	// --- Services ---
	hub := ws.NewHub(logger)

	crypto := service.NewCryptoPriceService(geckoClient, priceCache, logger)
	stocks := service.NewStockPriceService(finnhubClient, cfg.Portfolio.StockQuoteTTL.Duration, logger)
	portfolio := service.NewPortfolioService(
		accountStore,
		manualStore,
		wallet,
		cex,
		crypto,
		stocks,
		hub,
		cfg.Portfolio.ViewTTL.Duration,
		logger,
	)
	accounts := service.NewAccountService(accountStore, manualStore, cfg.Portfolio.SecretPassphrase, logger)
	manual := service.NewManualPositionService(manualStore, logger)
	snapshots := service.NewSnapshotService(portfolio, snapshotStore, archiver, hub, logger)

	deps := &Dependencies{
		Accounts:  accounts,
		Manual:    manual,
		Portfolio: portfolio,
		Crypto:    crypto,
		Stocks:    stocks,
		Snapshots: snapshots,
		Hub:       hub,
	}

	return deps, cleanup, nil
}
