// Package config defines the top-level configuration for the portfolio
// tracker and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from
// a TOML file and then optionally overridden by FOLIO_* environment
// variables.
type Config struct {
	Providers ProvidersConfig `toml:"providers"`
	Portfolio PortfolioConfig `toml:"portfolio"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Snapshots SnapshotsConfig `toml:"snapshots"`
	Server    ServerConfig    `toml:"server"`
	LogLevel  string          `toml:"log_level"`
}

// ProvidersConfig holds the endpoints and credentials of every upstream
// data source. Base URLs default to the public production hosts; keys
// left empty disable the provider, and the aggregation pass falls back
// to demo data where the source is mandatory.
type ProvidersConfig struct {
	DebankBaseURL      string `toml:"debank_base_url"`
	DebankAccessKey    string `toml:"debank_access_key"`
	HeliusBaseURL      string `toml:"helius_base_url"`
	HeliusAPIKey       string `toml:"helius_api_key"`
	SolscanBaseURL     string `toml:"solscan_base_url"`
	CoingeckoBaseURL   string `toml:"coingecko_base_url"`
	CoingeckoAPIKey    string `toml:"coingecko_api_key"`
	FinnhubBaseURL     string `toml:"finnhub_base_url"`
	FinnhubToken       string `toml:"finnhub_token"`
	LighterBaseURL     string `toml:"lighter_base_url"`
	EtherealBaseURL    string `toml:"ethereal_base_url"`
	HyperliquidBaseURL string `toml:"hyperliquid_base_url"`
	BinanceBaseURL     string `toml:"binance_base_url"`
	CoinbaseBaseURL    string `toml:"coinbase_base_url"`
}

// PortfolioConfig holds aggregation and filtering parameters.
type PortfolioConfig struct {
	// DustMinUSD is the value floor for wallet tokens with a known
	// price. Tokens with no price are kept regardless.
	DustMinUSD float64 `toml:"dust_min_usd"`

	// AllowedOverlap lists symbols that may appear both as raw wallet
	// balances and inside DeFi protocols without being filtered.
	AllowedOverlap []string `toml:"allowed_overlap"`

	// ExcludeProtocolHeld drops wallet tokens already counted inside a
	// protocol position.
	ExcludeProtocolHeld bool `toml:"exclude_protocol_held"`

	// CacheTTL bounds how long raw upstream responses are reused.
	CacheTTL duration `toml:"cache_ttl"`

	// PriceTTL bounds how long spot prices are cached.
	PriceTTL duration `toml:"price_ttl"`

	// RefreshInterval re-runs the aggregation in the background so the
	// view cache stays warm. Zero disables the loop.
	RefreshInterval duration `toml:"refresh_interval"`

	// ViewTTL bounds how long an assembled portfolio view is served
	// without re-aggregating.
	ViewTTL duration `toml:"view_ttl"`

	// StockQuoteTTL bounds how long stock quotes are cached.
	StockQuoteTTL duration `toml:"stock_quote_ttl"`

	// DemoMode forces synthetic data for every account.
	DemoMode bool `toml:"demo_mode"`

	// SecretPassphrase encrypts exchange API secrets at rest. Empty
	// stores them as given.
	SecretPassphrase string `toml:"secret_passphrase"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters. When disabled, the
// spot price cache falls back to process memory.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for snapshot
// archival. When disabled, aged snapshots stay in PostgreSQL.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// SnapshotsConfig holds the automatic snapshot schedule.
type SnapshotsConfig struct {
	// Interval between automatic snapshots. Zero disables them;
	// manual triggers through the API still work.
	Interval duration `toml:"interval"`

	// RetentionDays is how long snapshots stay in PostgreSQL before
	// archival moves them to object storage.
	RetentionDays int `toml:"retention_days"`

	// ArchiveInterval is how often the archival sweep runs.
	ArchiveInterval duration `toml:"archive_interval"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder
// can parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Providers: ProvidersConfig{
			DebankBaseURL:      "https://pro-openapi.debank.com",
			HeliusBaseURL:      "https://mainnet.helius-rpc.com",
			SolscanBaseURL:     "https://pro-api.solscan.io",
			CoingeckoBaseURL:   "https://api.coingecko.com/api/v3",
			FinnhubBaseURL:     "https://finnhub.io/api/v1",
			LighterBaseURL:     "https://mainnet.zklighter.elliot.ai",
			EtherealBaseURL:    "https://api.ethereal.trade",
			HyperliquidBaseURL: "https://api.hyperliquid.xyz",
			BinanceBaseURL:     "https://api.binance.com",
			CoinbaseBaseURL:    "https://api.coinbase.com",
		},
		Portfolio: PortfolioConfig{
			DustMinUSD:          0.01,
			AllowedOverlap:      []string{"USDC", "USDT", "DAI", "WETH", "WBTC", "ETH", "BTC", "SOL"},
			ExcludeProtocolHeld: true,
			CacheTTL:            duration{5 * time.Minute},
			PriceTTL:            duration{time.Minute},
			RefreshInterval:     duration{5 * time.Minute},
			ViewTTL:             duration{time.Minute},
			StockQuoteTTL:       duration{time.Minute},
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "folioscope",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "folioscope-archive",
			ForcePathStyle: true,
		},
		Snapshots: SnapshotsConfig{
			Interval:        duration{24 * time.Hour},
			RetentionDays:   365,
			ArchiveInterval: duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Portfolio
	if c.Portfolio.DustMinUSD < 0 {
		errs = append(errs, "portfolio: dust_min_usd must not be negative")
	}
	if c.Portfolio.CacheTTL.Duration < 0 {
		errs = append(errs, "portfolio: cache_ttl must not be negative")
	}
	if c.Portfolio.ViewTTL.Duration < 0 {
		errs = append(errs, "portfolio: view_ttl must not be negative")
	}

	// Database
	if strings.TrimSpace(c.Database.DSN) == "" {
		if c.Database.Host == "" {
			errs = append(errs, "database: host must not be empty (or set database.dsn)")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database: port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.Database == "" {
			errs = append(errs, "database: database must not be empty")
		}
	}
	if c.Database.PoolMaxConns < 1 {
		errs = append(errs, "database: pool_max_conns must be >= 1")
	}
	if c.Database.PoolMinConns < 0 {
		errs = append(errs, "database: pool_min_conns must be >= 0")
	}
	if c.Database.PoolMinConns > c.Database.PoolMaxConns {
		errs = append(errs, "database: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}

	// Snapshots
	if c.Snapshots.RetentionDays < 1 {
		errs = append(errs, "snapshots: retention_days must be >= 1")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
