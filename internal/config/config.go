package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"TrendSentinel/internal/calculator"
)

// Data source kinds.
const (
	SourceYahoo    = "yahoo"
	SourceBackend  = "backend"
	SourcePostgres = "postgres"
	SourceMock     = "mock"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DataSource struct {
		Kind            string `yaml:"kind"`
		BaseURL         string `yaml:"base_url"`
		APIKey          string `yaml:"api_key"`
		PostgresDSN     string `yaml:"postgres_dsn"`
		LookbackDays    int    `yaml:"lookback_days"`
		CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
	} `yaml:"data_source"`
	Watchlist []string `yaml:"watchlist"`
	Trend     struct {
		// Start pins the minor-line window; empty means WindowDays before now.
		Start      string `yaml:"start"`
		WindowDays int    `yaml:"window_days"`
	} `yaml:"trend"`
	Schedule struct {
		DailyCron  string `yaml:"daily_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error.
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

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.DataSource.Kind = v
	}
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("BACKEND_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DataSource.PostgresDSN = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = splitSymbols(v)
	}
	if v := os.Getenv("TREND_START"); v != "" {
		c.Trend.Start = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		c.Schedule.DailyCron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse RUN_ON_START: %w", err)
		}
		c.Schedule.RunOnStart = b
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.DataSource.Kind == "" {
		c.DataSource.Kind = SourceYahoo
	}
	if c.DataSource.LookbackDays == 0 {
		c.DataSource.LookbackDays = 300
	}
	if c.DataSource.CacheTTLMinutes == 0 {
		c.DataSource.CacheTTLMinutes = 15
	}
	if len(c.Watchlist) == 0 {
		c.Watchlist = []string{"SPY"}
	}
	if c.Trend.WindowDays == 0 {
		c.Trend.WindowDays = 90
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 0 22 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/trend_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Kind {
	case SourceYahoo, SourceMock:
	case SourceBackend:
		if c.DataSource.BaseURL == "" {
			return errors.New("data_source.base_url is required for the backend source")
		}
	case SourcePostgres:
		if c.DataSource.PostgresDSN == "" {
			return errors.New("data_source.postgres_dsn is required for the postgres source")
		}
	default:
		return fmt.Errorf("data_source.kind %q is not one of yahoo, backend, postgres, mock", c.DataSource.Kind)
	}
	if c.DataSource.LookbackDays < calculator.MinBars {
		return fmt.Errorf("data_source.lookback_days must be at least %d", calculator.MinBars)
	}
	if c.Trend.Start != "" {
		if _, err := calculator.ParseStart(c.Trend.Start); err != nil {
			return fmt.Errorf("trend.start: %w", err)
		}
	}
	if c.Trend.WindowDays <= 0 {
		return errors.New("trend.window_days must be positive")
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).
		Parse(c.Schedule.DailyCron); err != nil {
		return fmt.Errorf("schedule.daily_cron: %w", err)
	}
	if c.TelegramEnabled() && c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

func splitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
