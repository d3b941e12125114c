package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/newthinker/pulse/internal/core"
)

type Config struct {
	Scanner   ScannerConfig             `mapstructure:"scanner"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Universe  UniverseConfig            `mapstructure:"universe"`
	Schedule  ScheduleConfig            `mapstructure:"schedule"`
	Cache     CacheConfig               `mapstructure:"cache"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
	Log       LogConfig                 `mapstructure:"log"`
}

type ScannerConfig struct {
	LookbackDays    int     `mapstructure:"lookback_days"`
	MinBars         int     `mapstructure:"min_bars"`
	OversoldBelow   float64 `mapstructure:"oversold_below"`
	OverboughtAbove float64 `mapstructure:"overbought_above"`
	MarketCapFloor  float64 `mapstructure:"market_cap_floor"`
	MaxResults      int     `mapstructure:"max_results"`
	FetchWorkers    int     `mapstructure:"fetch_workers"`
}

type ProviderConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UniverseConfig struct {
	Source  string   `mapstructure:"source"`  // "static" or a provider name
	Symbols []string `mapstructure:"symbols"` // used when source is static
}

type ScheduleConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Scanner: ScannerConfig{
			LookbackDays:    180,
			MinBars:         15,
			OversoldBelow:   30,
			OverboughtAbove: 70,
			MarketCapFloor:  10_000_000,
			MaxResults:      10,
			FetchWorkers:    4,
		},
		Universe: UniverseConfig{
			Source: "static",
		},
		Schedule: ScheduleConfig{
			Enabled: true,
			Cron:    "*/30 9-16 * * 1-5",
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Listen:  ":9100",
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Scanner.LookbackDays < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("lookback_days must be positive, got %d", c.Scanner.LookbackDays))
	}
	if c.Scanner.MinBars < 2 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_bars must be at least 2, got %d", c.Scanner.MinBars))
	}
	if c.Scanner.OversoldBelow < 0 || c.Scanner.OversoldBelow > 100 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("oversold_below must be between 0 and 100, got %f", c.Scanner.OversoldBelow))
	}
	if c.Scanner.OverboughtAbove < 0 || c.Scanner.OverboughtAbove > 100 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("overbought_above must be between 0 and 100, got %f", c.Scanner.OverboughtAbove))
	}
	if c.Scanner.OversoldBelow >= c.Scanner.OverboughtAbove {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("oversold_below %f must sit below overbought_above %f",
				c.Scanner.OversoldBelow, c.Scanner.OverboughtAbove))
	}
	if c.Scanner.MaxResults < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_results must be positive, got %d", c.Scanner.MaxResults))
	}
	if c.Scanner.FetchWorkers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fetch_workers must be positive, got %d", c.Scanner.FetchWorkers))
	}

	switch c.Universe.Source {
	case "", "static":
	default:
		if _, ok := c.Providers[c.Universe.Source]; !ok {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("universe source %q has no provider entry", c.Universe.Source))
		}
	}

	if c.Schedule.Enabled && c.Schedule.Cron == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("schedule enabled but cron expression is empty"))
	}

	if c.Cache.TTL < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cache ttl cannot be negative, got %s", c.Cache.TTL))
	}

	return nil
}
