package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	API      APIConfig      `yaml:"api" env:", prefix=API_"`
	Storage  StorageConfig  `yaml:"storage" env:", prefix=STORAGE_"`
	Market   MarketConfig   `yaml:"market" env:", prefix=MARKET_"`
	Forecast ForecastConfig `yaml:"forecast" env:", prefix=FORECAST_"`
	Telegram TelegramConfig `yaml:"telegram" env:", prefix=TELEGRAM_"`
	Schedule ScheduleConfig `yaml:"schedule" env:", prefix=CRON_"`
	Database DatabaseConfig `yaml:"database" env:", prefix=DATABASE_"`
	Server   ServerConfig   `yaml:"server" env:", prefix=SERVER_"`
	Log      LogConfig      `yaml:"log" env:", prefix=LOG_"`
	Security SecurityConfig `yaml:"security" env:", prefix=SECURITY_"`
	Ledger   LedgerConfig   `yaml:"ledger" env:", prefix=LEDGER_"`
}

// APIConfig points at the asset-management backend. Without a base URL the
// assets are read from AssetsFile instead.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url" env:"BASE_URL, overwrite"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT, overwrite, default=15s"`
	AssetsFile string        `yaml:"assets_file" env:"ASSETS_FILE, overwrite, default=assets.yaml"`
}

// StorageConfig selects the persistent key-value store.
type StorageConfig struct {
	Driver   string `yaml:"driver" env:"DRIVER, overwrite, default=file"`
	Path     string `yaml:"path" env:"PATH, overwrite, default=data/storage.json"`
	RedisURL string `yaml:"redis_addr" env:"REDIS_ADDR, overwrite, default=localhost:6379"`
	Password string `yaml:"redis_password" env:"REDIS_PASSWORD, overwrite"`
	DB       int    `yaml:"redis_db" env:"REDIS_DB, overwrite"`
	Prefix   string `yaml:"redis_prefix" env:"REDIS_PREFIX, overwrite, default=sentinel:"`
}

// MarketConfig configures the price data sources.
type MarketConfig struct {
	CoinGeckoURL    string `yaml:"coingecko_url" env:"COINGECKO_URL, overwrite, default=https://api.coingecko.com/api/v3"`
	CoinGeckoAPIKey string `yaml:"coingecko_api_key" env:"COINGECKO_API_KEY, overwrite"`
	Proxy           string `yaml:"proxy" env:"PROXY, overwrite"`
	HistoryDays     int    `yaml:"history_days" env:"HISTORY_DAYS, overwrite, default=90"`
}

// ForecastConfig configures the forecast engine.
type ForecastConfig struct {
	Seed        uint64 `yaml:"seed" env:"SEED, overwrite"`
	HorizonDays int    `yaml:"horizon_days" env:"HORIZON_DAYS, overwrite, default=30"`
}

// TelegramConfig enables the Telegram notifier when both fields are set.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"BOT_TOKEN, overwrite"`
	ChatID   string `yaml:"chat_id" env:"CHAT_ID, overwrite"`
}

// Enabled reports whether Telegram credentials are configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// ScheduleConfig holds cron expressions with a seconds field.
type ScheduleConfig struct {
	RefreshCron  string `yaml:"refresh_cron" env:"REFRESH, overwrite, default=0 0 8 * * *"`
	ReminderCron string `yaml:"reminder_cron" env:"REMINDERS, overwrite, default=0 0 9 * * *"`
}

type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH, overwrite, default=data/asset_sentinel.db"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"ADDR, overwrite, default=:8080"`
	Mode string `yaml:"mode" env:"MODE, overwrite, default=release"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL, overwrite, default=info"`
	Format string `yaml:"format" env:"FORMAT, overwrite, default=text"`
	Output string `yaml:"output" env:"OUTPUT, overwrite, default=stdout"`
}

// SecurityConfig controls how long a two-factor verification stays valid.
type SecurityConfig struct {
	TwoFactorWindow time.Duration `yaml:"two_factor_window" env:"TWO_FACTOR_WINDOW, overwrite, default=24h"`
}

// LedgerConfig controls reminder lookahead.
type LedgerConfig struct {
	ReminderWindow time.Duration `yaml:"reminder_window" env:"REMINDER_WINDOW, overwrite, default=72h"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(ctx context.Context, path string) (*Config, error) {
	return load(ctx, path, envconfig.OsLookuper())
}

func load(ctx context.Context, path string, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "file":
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the file driver"))
		}
	case "redis":
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redis_addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be file or redis, got %q", c.Storage.Driver))
	}
	if c.Forecast.HorizonDays <= 0 {
		errs = append(errs, errors.New("forecast.horizon_days must be positive"))
	}
	if c.Market.HistoryDays <= 0 {
		errs = append(errs, errors.New("market.history_days must be positive"))
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errs = append(errs, errors.New("telegram.bot_token and telegram.chat_id must be set together"))
	}
	if c.Security.TwoFactorWindow <= 0 {
		errs = append(errs, errors.New("security.two_factor_window must be positive"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
