package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultNepseURL    = "https://api.sharesansar.com/v1"
	DefaultFallbackURL = "https://nepalstock.com.np/api/v1"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Source      string `yaml:"source"` // nepse, alpaca or mock
		BaseURL     string `yaml:"base_url"`
		FallbackURL string `yaml:"fallback_url"`
		HistoryDays int    `yaml:"history_days"`
	} `yaml:"data_source"`
	Alpaca struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"alpaca"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ListingCron string `yaml:"listing_cron"`
	} `yaml:"schedule"`
	Watchlist []string `yaml:"watchlist"`
	Database  struct {
		SQLitePath   string `yaml:"sqlite_path"`
		RecorderPath string `yaml:"recorder_path"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
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
	envString(&cfg.DataSource.Source, "DATA_SOURCE")
	envString(&cfg.DataSource.BaseURL, "NEPSE_API_URL")
	envString(&cfg.DataSource.FallbackURL, "NEPSE_FALLBACK_URL")
	envString(&cfg.Alpaca.APIKey, "ALPACA_API_KEY")
	envString(&cfg.Alpaca.APISecret, "ALPACA_API_SECRET")
	envString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	envString(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	envString(&cfg.HTTP.Addr, "HTTP_ADDR")
	envString(&cfg.Schedule.RefreshCron, "CRON_REFRESH")
	envString(&cfg.Database.SQLitePath, "SQLITE_PATH")
	envString(&cfg.Database.RecorderPath, "RECORDER_PATH")
	envString(&cfg.Redis.Addr, "REDIS_ADDR")
	envString(&cfg.Redis.Password, "REDIS_PASSWORD")
	envString(&cfg.Proxy, "HTTPS_PROXY")
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist = splitList(v)
	}
	if v := os.Getenv("HISTORY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DataSource.HistoryDays = n
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}

	// Defaults
	if cfg.DataSource.Source == "" {
		cfg.DataSource.Source = "nepse"
	}
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = DefaultNepseURL
	}
	if cfg.DataSource.FallbackURL == "" {
		cfg.DataSource.FallbackURL = DefaultFallbackURL
	}
	if cfg.DataSource.HistoryDays == 0 {
		cfg.DataSource.HistoryDays = 365
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	// Nepal time, after the 15:00 close, Sunday to Thursday.
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 30 15 * * 0-4"
	}
	if cfg.Schedule.ListingCron == "" {
		cfg.Schedule.ListingCron = "0 0 9 * * 0"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/nepse_analyzer.db"
	}
	if cfg.Database.RecorderPath == "" {
		cfg.Database.RecorderPath = cfg.Database.SQLitePath
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 15 * time.Minute
	}

	return cfg, nil
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Source {
	case "nepse":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the nepse source")
		}
	case "alpaca":
		if c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "" {
			return fmt.Errorf("alpaca.api_key and alpaca.api_secret are required for the alpaca source")
		}
	case "mock":
	default:
		return fmt.Errorf("data_source.source must be nepse, alpaca or mock, got %q", c.DataSource.Source)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.DataSource.HistoryDays <= 0 {
		return fmt.Errorf("data_source.history_days must be positive")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	for _, s := range c.Watchlist {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("watchlist contains an empty symbol")
		}
	}
	return nil
}
