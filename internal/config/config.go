package config

import (
	"errors"
	"os"
	"time"

	"github.com/tvgrid/tvgrid/internal/models"
)

// ErrMissingDatabaseURL is returned when no database DSN is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Config holds application configuration.
type Config struct {
	DatabaseURL string
	ServerPort  string
	RedisURL    string

	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration

	DataSource   string
	CustomM3UURL string

	VoyageAPIKey string
	VoyageModel  string
}

// Load builds config from environment variables. If DATABASE_URL is not
// set, .env.local and .env are consulted first. DATABASE_URL is
// required; everything else has a default.
func Load() (*Config, error) {
	if os.Getenv("DATABASE_URL") == "" {
		loadEnvFiles()
	}
	c := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ServerPort:   os.Getenv("SERVER_PORT"),
		RedisURL:     os.Getenv("REDIS_URL"),
		UserAgent:    os.Getenv("FETCHER_USER_AGENT"),
		DataSource:   os.Getenv("DATA_SOURCE"),
		CustomM3UURL: os.Getenv("CUSTOM_M3U_URL"),
		VoyageAPIKey: os.Getenv("VOYAGE_API_KEY"),
		VoyageModel:  os.Getenv("VOYAGE_MODEL"),
	}
	if s := os.Getenv("FETCHER_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.Timeout = d
		}
	}
	if s := os.Getenv("CACHE_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.CacheTTL = d
		}
	}
	c.applyDefaults()
	if c.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = "8080"
	}
	if c.UserAgent == "" {
		c.UserAgent = "tvgrid/1.0"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = models.DefaultCacheTTL
	}
	if c.DataSource == "" {
		c.DataSource = models.SourceKindJSONAPI
	}
}

// Source resolves the configured data source selection.
func (c *Config) Source() (models.Source, error) {
	return models.ParseSource(c.DataSource, c.CustomM3UURL)
}
