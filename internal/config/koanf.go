// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/eventhub/config.yaml",
	"/etc/eventhub/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/eventhub.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Sync: SyncConfig{
			Schedule:           "@every 6h",
			Interval:           6 * time.Hour,
			RunOnStartup:       false,
			HTTPTimeout:        30 * time.Second,
			PageSize:           100,
			BreakerMaxFailures: 5,
			BreakerTimeout:     2 * time.Minute,
			BreakerInterval:    time.Minute,
		},
		Sources: SourcesConfig{
			Connpass: SourceConfig{
				Enabled: true,
				BaseURL: "https://connpass.com",
			},
			Doorkeeper: SourceConfig{
				Enabled: true,
				BaseURL: "https://api.doorkeeper.jp",
			},
			Peatix: SourceConfig{
				Enabled: true,
				BaseURL: "https://peatix.com",
			},
		},
		Enrichment: EnrichmentConfig{
			Timeout:     5 * time.Second,
			Concurrency: 4,
			CachePath:   "",
			CacheTTL:    7 * 24 * time.Hour,
			Geocode: GeocodeConfig{
				URL:           "",
				UserAgent:     "eventhub/1.0",
				RatePerSecond: 1,
			},
			Image: ImageConfig{
				URL:       "https://api.unsplash.com",
				AccessKey: "",
			},
		},
		Messaging: MessagingConfig{
			NATSURL: "",
			Buffer:  64,
		},
		Security: SecurityConfig{
			JWTSecret:          "",
			SessionTimeout:     24 * time.Hour,
			RateLimitReqs:      100,
			RateLimitWindow:    time.Minute,
			RateLimitDisabled:  false,
			CORSOrigins:        []string{"*"},
			AdminEmails:        []string{},
			PolicyPath:         "",
			AuditEnabled:       true,
			AuditRetentionDays: 90,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Config file (optional YAML)
//  3. Environment variables
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.admin_emails",
}

// processSliceFields converts comma-separated string values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"sync_schedule":             "sync.schedule",
	"sync_interval":             "sync.interval",
	"sync_run_on_startup":       "sync.run_on_startup",
	"sync_http_timeout":         "sync.http_timeout",
	"sync_page_size":            "sync.page_size",
	"sync_breaker_max_failures": "sync.breaker_max_failures",
	"sync_breaker_timeout":      "sync.breaker_timeout",
	"sync_breaker_interval":     "sync.breaker_interval",

	"connpass_enabled":    "sources.connpass.enabled",
	"connpass_base_url":   "sources.connpass.base_url",
	"connpass_api_key":    "sources.connpass.api_key",
	"doorkeeper_enabled":  "sources.doorkeeper.enabled",
	"doorkeeper_base_url": "sources.doorkeeper.base_url",
	"doorkeeper_token":    "sources.doorkeeper.token",
	"peatix_enabled":      "sources.peatix.enabled",
	"peatix_base_url":     "sources.peatix.base_url",

	"enrichment_timeout":      "enrichment.timeout",
	"enrichment_concurrency":  "enrichment.concurrency",
	"enrichment_cache_path":   "enrichment.cache_path",
	"enrichment_cache_ttl":    "enrichment.cache_ttl",
	"geocode_url":             "enrichment.geocode.url",
	"geocode_user_agent":      "enrichment.geocode.user_agent",
	"geocode_rate_per_second": "enrichment.geocode.rate_per_second",
	"image_search_url":        "enrichment.image.url",
	"unsplash_access_key":     "enrichment.image.access_key",

	"nats_url":         "messaging.nats_url",
	"messaging_buffer": "messaging.buffer",

	"jwt_secret":           "security.jwt_secret",
	"session_timeout":      "security.session_timeout",
	"rate_limit_requests":  "security.rate_limit_reqs",
	"rate_limit_window":    "security.rate_limit_window",
	"disable_rate_limit":   "security.rate_limit_disabled",
	"cors_origins":         "security.cors_origins",
	"admin_emails":         "security.admin_emails",
	"authz_policy_path":    "security.policy_path",
	"audit_enabled":        "security.audit_enabled",
	"audit_retention_days": "security.audit_retention_days",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are ignored.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - CONNPASS_API_KEY -> sources.connpass.api_key
//   - UNSPLASH_ACCESS_KEY -> enrichment.image.access_key
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
