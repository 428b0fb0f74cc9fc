package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/newsimport/provider"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "NEWSAPI"

type (
	// Config holds importer settings.
	Config struct {
		Provider
		Import
		Schedule
	}

	Provider struct {
		APIKey      string
		BaseURL     string
		MaxInFlight int
		Timeout     time.Duration
	}
	Import struct {
		Disabled       bool   // administratively disable provider access
		ImportMockData bool   // feed mock responses through a disabled importer
		DebugSources   bool   // log provider sources at startup
		PoolSize       int    // 0 selects the CPU-based default
		SpillDir       string // badger record set location; empty keeps records in memory
	}
	Schedule struct {
		Cron        string // Cron format: "*/15 * * * *" = every 15 minutes
		MetricsAddr string
	}
)

// Load reads and validates settings. See Read.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads settings from the environment and, if path is not empty, a
// config file (any format viper understands, e.g. YAML or TOML).
// Environment variables take precedence over the file.
// Callers applying their own overrides must call Validate afterwards.
func Read(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("key", "")
	v.SetDefault("base_url", provider.DefaultBaseURL)
	v.SetDefault("max_in_flight", 4)
	v.SetDefault("timeout", "30s")
	v.SetDefault("disabled", false)
	v.SetDefault("import_mock_data", false)
	v.SetDefault("debug_sources", false)
	v.SetDefault("pool_size", 0)
	v.SetDefault("spill_dir", "")
	v.SetDefault("schedule", "*/15 * * * *") // Every 15 minutes
	v.SetDefault("metrics_addr", ":9090")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Provider: Provider{
			APIKey:      v.GetString("key"),
			BaseURL:     v.GetString("base_url"),
			MaxInFlight: v.GetInt("max_in_flight"),
			Timeout:     v.GetDuration("timeout"),
		},
		Import: Import{
			Disabled:       v.GetBool("disabled"),
			ImportMockData: v.GetBool("import_mock_data"),
			DebugSources:   v.GetBool("debug_sources"),
			PoolSize:       v.GetInt("pool_size"),
			SpillDir:       v.GetString("spill_dir"),
		},
		Schedule: Schedule{
			Cron:        v.GetString("schedule"),
			MetricsAddr: v.GetString("metrics_addr"),
		},
	}
	return cfg, nil
}

// Validate checks settings that do not depend on the provider.
// The API key is only required when the importer is enabled.
func (c *Config) Validate() error {
	var errs []error
	if c.PoolSize < 0 {
		errs = append(errs, errors.New("pool size must be non-negative"))
	}
	if !c.Disabled {
		if err := c.ProviderConfig().Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProviderConfig converts the provider settings.
func (c *Config) ProviderConfig() *provider.Config {
	return provider.NewConfig(
		provider.WithAPIKey(c.APIKey),
		provider.WithBaseURL(c.BaseURL),
		provider.WithMaxInFlight(c.MaxInFlight),
		provider.WithTimeout(c.Timeout),
	)
}
