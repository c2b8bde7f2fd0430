// Package config provides environment-driven configuration for linkmirror.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DeletionMode controls what reconciliation does once a row's delete grace
// period has elapsed.
type DeletionMode string

const (
	// DeletionArchive permanently archives rows after the grace period.
	DeletionArchive DeletionMode = "archive"

	// DeletionOff detects and flags deletions but never archives.
	DeletionOff DeletionMode = "off"
)

// Config holds all application configuration values.
type Config struct {
	// Source (bookmark service).
	RaindropURL          string
	RaindropToken        Secret
	RaindropCollectionID int64

	// Destination (document database).
	NotionURL        string
	NotionToken      Secret
	NotionDatabaseID string

	// Incremental sync.
	LookbackHours    int
	OverlapMinutes   int
	PageSize         int
	MaxPages         int
	ConsecutiveStop  int
	WriteDelayMillis int

	// Reconciliation.
	ReconcileMaxPages  int
	DeletionMode       DeletionMode
	DeletionGraceHours int

	// Built-in scheduler; zero disables a job (cron via the HTTP API is the
	// primary trigger).
	SyncEvery      time.Duration
	ReconcileEvery time.Duration

	// HTTP surface.
	Port        string
	ListenHost  string
	APIKey      Secret
	CORSOrigins []string
	LogLevel    string
}

// Load reads configuration from environment variables with sensible defaults.
// It fails before any I/O happens, so a misconfigured worker never touches
// either ledger.
func Load() (*Config, error) {
	cfg := &Config{
		RaindropURL:      envOrDefault("RAINDROP_URL", "https://api.raindrop.io"),
		RaindropToken:    Secret(envOrDefault("RAINDROP_TOKEN", "")),
		NotionURL:        envOrDefault("NOTION_URL", "https://api.notion.com"),
		NotionToken:      Secret(envOrDefault("NOTION_TOKEN", "")),
		NotionDatabaseID: envOrDefault("NOTION_DATABASE_ID", ""),
		DeletionMode:     DeletionMode(envOrDefault("DELETION_MODE", "archive")),
		Port:             envOrDefault("PORT", "8085"),
		ListenHost:       envOrDefault("LISTEN_HOST", "127.0.0.1"),
		APIKey:           Secret(envOrDefault("API_KEY", "")),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RaindropCollectionID, err = envInt64("RAINDROP_COLLECTION_ID", 0); err != nil {
		return nil, err
	}

	intFields := []struct {
		dst      *int
		name     string
		fallback int
		min, max int
	}{
		{&cfg.LookbackHours, "LOOKBACK_HOURS", 48, 1, 24 * 30},
		{&cfg.OverlapMinutes, "OVERLAP_MINUTES", 60, 0, 24 * 60},
		{&cfg.PageSize, "PAGE_SIZE", 50, 1, 50},
		{&cfg.MaxPages, "MAX_PAGES", 10, 1, 100},
		{&cfg.ConsecutiveStop, "CONSECUTIVE_HIT_THRESHOLD", 10, 1, 1000},
		{&cfg.WriteDelayMillis, "WRITE_DELAY_MS", 350, 0, 10_000},
		{&cfg.ReconcileMaxPages, "RECONCILE_MAX_PAGES", 40, 1, 1000},
		{&cfg.DeletionGraceHours, "DELETION_GRACE_HOURS", 24, 0, 24 * 90},
	}
	for _, f := range intFields {
		v, err := envInt(f.name, f.fallback)
		if err != nil {
			return nil, err
		}
		if v < f.min || v > f.max {
			return nil, fmt.Errorf("%s must be between %d and %d", f.name, f.min, f.max)
		}
		*f.dst = v
	}

	if cfg.SyncEvery, err = envDuration("SYNC_EVERY", 0); err != nil {
		return nil, err
	}
	if cfg.ReconcileEvery, err = envDuration("RECONCILE_EVERY", 0); err != nil {
		return nil, err
	}

	cfg.CORSOrigins = splitAndTrim(envOrDefault("CORS_ORIGINS", ""))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// WriteDelay returns the pacing delay between mutating destination calls.
func (c *Config) WriteDelay() time.Duration {
	return time.Duration(c.WriteDelayMillis) * time.Millisecond
}

// DeletionGrace returns the grace period before a flagged row is archived.
func (c *Config) DeletionGrace() time.Duration {
	return time.Duration(c.DeletionGraceHours) * time.Hour
}

func (c *Config) validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}

	if err := c.validateDestination(); err != nil {
		return err
	}

	if err := c.validateNetwork(); err != nil {
		return err
	}

	return c.validateJobs()
}

func (c *Config) validateSource() error {
	if c.RaindropToken.Value() == "" {
		return fmt.Errorf("RAINDROP_TOKEN is required")
	}

	if _, err := url.ParseRequestURI(c.RaindropURL); err != nil {
		return fmt.Errorf("RAINDROP_URL is not a valid URL: %w", err)
	}

	if c.RaindropCollectionID <= 0 {
		return fmt.Errorf("RAINDROP_COLLECTION_ID is required and must be positive")
	}

	return nil
}

func (c *Config) validateDestination() error {
	if c.NotionToken.Value() == "" {
		return fmt.Errorf("NOTION_TOKEN is required")
	}

	if c.NotionDatabaseID == "" {
		return fmt.Errorf("NOTION_DATABASE_ID is required")
	}

	if _, err := url.ParseRequestURI(c.NotionURL); err != nil {
		return fmt.Errorf("NOTION_URL is not a valid URL: %w", err)
	}

	return nil
}

func (c *Config) validateNetwork() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if c.APIKey.Value() == "" {
		return fmt.Errorf("API_KEY is required")
	}

	for _, origin := range c.CORSOrigins {
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

func (c *Config) validateJobs() error {
	switch c.DeletionMode {
	case DeletionArchive, DeletionOff:
	default:
		return fmt.Errorf("DELETION_MODE must be 'archive' or 'off', got %q", c.DeletionMode)
	}

	if c.SyncEvery < 0 || (c.SyncEvery > 0 && c.SyncEvery < time.Minute) {
		return fmt.Errorf("SYNC_EVERY must be zero or at least 1m")
	}

	if c.ReconcileEvery < 0 || (c.ReconcileEvery > 0 && c.ReconcileEvery < time.Hour) {
		return fmt.Errorf("RECONCILE_EVERY must be zero or at least 1h")
	}

	return nil
}
