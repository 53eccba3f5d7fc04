package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields
// replaced by the redaction placeholder "***". Use this when logging or
// printing the active configuration so secrets are never accidentally
// exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// Providers
	out.Providers = cfg.Providers
	redact(&out.Providers.DebankAccessKey)
	redact(&out.Providers.HeliusAPIKey)
	redact(&out.Providers.CoingeckoAPIKey)
	redact(&out.Providers.FinnhubToken)

	// Portfolio
	out.Portfolio = cfg.Portfolio
	redact(&out.Portfolio.SecretPassphrase)

	// Database
	out.Database = cfg.Database
	redact(&out.Database.DSN)
	redact(&out.Database.Password)

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// S3
	out.S3 = cfg.S3
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	// Server
	out.Server = cfg.Server
	redact(&out.Server.APIKey)

	// Copy slices so callers cannot mutate the original through the
	// redacted copy.
	if cfg.Portfolio.AllowedOverlap != nil {
		out.Portfolio.AllowedOverlap = make([]string, len(cfg.Portfolio.AllowedOverlap))
		copy(out.Portfolio.AllowedOverlap, cfg.Portfolio.AllowedOverlap)
	}
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
