package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FOLIO_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FOLIO_* environment variables and
// overwrites the corresponding Config fields when a variable is set
// (i.e. not empty). This lets operators inject secrets at deploy time
// without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Providers ──
	setStr(&cfg.Providers.DebankBaseURL, "FOLIO_DEBANK_BASE_URL")
	setStr(&cfg.Providers.DebankAccessKey, "FOLIO_DEBANK_ACCESS_KEY")
	setStr(&cfg.Providers.HeliusBaseURL, "FOLIO_HELIUS_BASE_URL")
	setStr(&cfg.Providers.HeliusAPIKey, "FOLIO_HELIUS_API_KEY")
	setStr(&cfg.Providers.SolscanBaseURL, "FOLIO_SOLSCAN_BASE_URL")
	setStr(&cfg.Providers.CoingeckoBaseURL, "FOLIO_COINGECKO_BASE_URL")
	setStr(&cfg.Providers.CoingeckoAPIKey, "FOLIO_COINGECKO_API_KEY")
	setStr(&cfg.Providers.FinnhubBaseURL, "FOLIO_FINNHUB_BASE_URL")
	setStr(&cfg.Providers.FinnhubToken, "FOLIO_FINNHUB_TOKEN")
	setStr(&cfg.Providers.LighterBaseURL, "FOLIO_LIGHTER_BASE_URL")
	setStr(&cfg.Providers.EtherealBaseURL, "FOLIO_ETHEREAL_BASE_URL")
	setStr(&cfg.Providers.HyperliquidBaseURL, "FOLIO_HYPERLIQUID_BASE_URL")
	setStr(&cfg.Providers.BinanceBaseURL, "FOLIO_BINANCE_BASE_URL")
	setStr(&cfg.Providers.CoinbaseBaseURL, "FOLIO_COINBASE_BASE_URL")

	// ── Portfolio ──
	setFloat64(&cfg.Portfolio.DustMinUSD, "FOLIO_PORTFOLIO_DUST_MIN_USD")
	setStringSlice(&cfg.Portfolio.AllowedOverlap, "FOLIO_PORTFOLIO_ALLOWED_OVERLAP")
	setBool(&cfg.Portfolio.ExcludeProtocolHeld, "FOLIO_PORTFOLIO_EXCLUDE_PROTOCOL_HELD")
	setDuration(&cfg.Portfolio.CacheTTL, "FOLIO_PORTFOLIO_CACHE_TTL")
	setDuration(&cfg.Portfolio.PriceTTL, "FOLIO_PORTFOLIO_PRICE_TTL")
	setDuration(&cfg.Portfolio.RefreshInterval, "FOLIO_PORTFOLIO_REFRESH_INTERVAL")
	setDuration(&cfg.Portfolio.ViewTTL, "FOLIO_PORTFOLIO_VIEW_TTL")
	setDuration(&cfg.Portfolio.StockQuoteTTL, "FOLIO_PORTFOLIO_STOCK_QUOTE_TTL")
	setBool(&cfg.Portfolio.DemoMode, "FOLIO_PORTFOLIO_DEMO_MODE")
	setStr(&cfg.Portfolio.SecretPassphrase, "FOLIO_PORTFOLIO_SECRET_PASSPHRASE")

	// ── Database ──
	setStr(&cfg.Database.DSN, "FOLIO_DATABASE_DSN")
	setStr(&cfg.Database.Host, "FOLIO_DATABASE_HOST")
	setInt(&cfg.Database.Port, "FOLIO_DATABASE_PORT")
	setStr(&cfg.Database.Database, "FOLIO_DATABASE_NAME")
	setStr(&cfg.Database.User, "FOLIO_DATABASE_USER")
	setStr(&cfg.Database.Password, "FOLIO_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "FOLIO_DATABASE_SSL_MODE")
	setInt(&cfg.Database.PoolMaxConns, "FOLIO_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "FOLIO_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "FOLIO_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "FOLIO_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "FOLIO_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "FOLIO_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FOLIO_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "FOLIO_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "FOLIO_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "FOLIO_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "FOLIO_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "FOLIO_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "FOLIO_S3_REGION")
	setStr(&cfg.S3.Bucket, "FOLIO_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "FOLIO_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "FOLIO_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "FOLIO_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "FOLIO_S3_FORCE_PATH_STYLE")

	// ── Snapshots ──
	setDuration(&cfg.Snapshots.Interval, "FOLIO_SNAPSHOTS_INTERVAL")
	setInt(&cfg.Snapshots.RetentionDays, "FOLIO_SNAPSHOTS_RETENTION_DAYS")
	setDuration(&cfg.Snapshots.ArchiveInterval, "FOLIO_SNAPSHOTS_ARCHIVE_INTERVAL")

	// ── Server ──
	setInt(&cfg.Server.Port, "FOLIO_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "FOLIO_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "FOLIO_SERVER_API_KEY")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "FOLIO_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the
// environment variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
