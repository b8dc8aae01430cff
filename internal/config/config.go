// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

// Package config loads and validates Eventhub configuration.
//
// Configuration is layered with Koanf v2: built-in defaults, then an optional
// YAML file, then environment variables. Use Load() at startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Sync       SyncConfig       `koanf:"sync"`
	Sources    SourcesConfig    `koanf:"sources"`
	Enrichment EnrichmentConfig `koanf:"enrichment"`
	Messaging  MessagingConfig  `koanf:"messaging"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// SyncConfig controls the external event sync schedule and upstream calls.
type SyncConfig struct {
	// Schedule is a robfig/cron spec. Empty falls back to "@every <Interval>".
	Schedule     string        `koanf:"schedule"`
	Interval     time.Duration `koanf:"interval"`
	RunOnStartup bool          `koanf:"run_on_startup"`
	HTTPTimeout  time.Duration `koanf:"http_timeout"`
	PageSize     int           `koanf:"page_size"`

	// Circuit breaker per upstream.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
}

// SourcesConfig holds per-upstream settings.
type SourcesConfig struct {
	Connpass   SourceConfig `koanf:"connpass"`
	Doorkeeper SourceConfig `koanf:"doorkeeper"`
	Peatix     SourceConfig `koanf:"peatix"`
}

// SourceConfig configures one upstream listing API.
// APIKey is sent as X-API-Key (connpass); Token as a bearer token (doorkeeper).
type SourceConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	Token   string `koanf:"token"`
}

// EnrichmentConfig controls best-effort geocoding and image lookup.
type EnrichmentConfig struct {
	Timeout     time.Duration `koanf:"timeout"`
	Concurrency int           `koanf:"concurrency"`
	// CachePath is the Badger directory. Empty means in-memory.
	CachePath string        `koanf:"cache_path"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
	Geocode   GeocodeConfig `koanf:"geocode"`
	Image     ImageConfig   `koanf:"image"`
}

// GeocodeConfig configures the Nominatim-compatible geocoder.
type GeocodeConfig struct {
	URL           string  `koanf:"url"`
	UserAgent     string  `koanf:"user_agent"`
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// ImageConfig configures the Unsplash-compatible image search.
type ImageConfig struct {
	URL       string `koanf:"url"`
	AccessKey string `koanf:"access_key"`
}

// MessagingConfig selects the event bus backend.
// An empty NATSURL keeps the bus in-process.
type MessagingConfig struct {
	NATSURL string `koanf:"nats_url"`
	Buffer  int64  `koanf:"buffer"`
}

// SecurityConfig holds authentication, authorization and HTTP hardening settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	// AdminEmails are granted the admin role on registration.
	AdminEmails []string `koanf:"admin_emails"`
	// PolicyPath is a Casbin CSV policy. Empty uses the built-in policy.
	PolicyPath string `koanf:"policy_path"`
	// AuditEnabled records security events in the audit_events table.
	AuditEnabled       bool `koanf:"audit_enabled"`
	AuditRetentionDays int  `koanf:"audit_retention_days"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EffectiveSchedule returns the cron spec used by the sync scheduler.
func (s SyncConfig) EffectiveSchedule() string {
	if s.Schedule != "" {
		return s.Schedule
	}
	if s.Interval > 0 {
		return "@every " + s.Interval.String()
	}
	return ""
}

// Load reads configuration from all layers. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
