package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	DatabaseURL  string `yaml:"database_url"`
	ServerPort   string `yaml:"server_port"`
	RedisURL     string `yaml:"redis_url"`
	UserAgent    string `yaml:"user_agent"`
	Timeout      string `yaml:"timeout"`
	CacheTTL     string `yaml:"cache_ttl"`
	DataSource   string `yaml:"data_source"`
	CustomM3UURL string `yaml:"custom_m3u_url"`
	VoyageAPIKey string `yaml:"voyage_api_key"`
	VoyageModel  string `yaml:"voyage_model"`
}

// LoadFromFile loads config from a YAML file. database_url is required.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	c := &Config{
		DatabaseURL:  f.DatabaseURL,
		ServerPort:   f.ServerPort,
		RedisURL:     f.RedisURL,
		UserAgent:    f.UserAgent,
		DataSource:   f.DataSource,
		CustomM3UURL: f.CustomM3UURL,
		VoyageAPIKey: f.VoyageAPIKey,
		VoyageModel:  f.VoyageModel,
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			c.Timeout = d
		}
	}
	if f.CacheTTL != "" {
		if d, err := time.ParseDuration(f.CacheTTL); err == nil {
			c.CacheTTL = d
		}
	}
	c.applyDefaults()
	return c, nil
}
