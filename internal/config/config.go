package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Exchange struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"exchange"`
	Catalog struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"catalog"`
	Scan struct {
		QuoteCurrency string   `yaml:"quote_currency"`
		TopNVolume    uint     `yaml:"top_n_volume"`
		MinStreak     uint     `yaml:"min_streak"`
		CandleWindow  int      `yaml:"candle_window"`
		Timeframes    []string `yaml:"timeframes"`
	} `yaml:"scan"`
	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("KUCOIN_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		cfg.Catalog.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TOP_N_VOLUME"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Scan.TopNVolume = uint(n)
		}
	}
	if v := os.Getenv("MIN_STREAK"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Scan.MinStreak = uint(n)
		}
	}

	// Defaults
	if cfg.Scan.QuoteCurrency == "" {
		cfg.Scan.QuoteCurrency = "USDT"
	}
	if cfg.Scan.TopNVolume == 0 {
		cfg.Scan.TopNVolume = 50
	}
	if cfg.Scan.MinStreak == 0 {
		cfg.Scan.MinStreak = 3
	}
	if cfg.Scan.CandleWindow == 0 {
		cfg.Scan.CandleWindow = 50
	}
	if len(cfg.Scan.Timeframes) == 0 {
		cfg.Scan.Timeframes = []string{"15m", "30m", "1h", "2h", "4h", "8h", "1d", "1w"}
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = "cache"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/streakradar.db"
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Scan.TopNVolume == 0 {
		return fmt.Errorf("scan.top_n_volume must be positive")
	}
	if c.Scan.MinStreak == 0 {
		return fmt.Errorf("scan.min_streak must be positive")
	}
	if c.Scan.CandleWindow < int(c.Scan.MinStreak)+2 {
		return fmt.Errorf("scan.candle_window must cover min_streak plus the forming candle")
	}
	if len(c.Scan.Timeframes) == 0 {
		return fmt.Errorf("scan.timeframes must not be empty")
	}
	return nil
}
