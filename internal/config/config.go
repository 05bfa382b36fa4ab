package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"carry-trade-analyzer/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Database DatabaseConfig `mapstructure:"database"`
	Alerting AlertingConfig `mapstructure:"alerting"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// AnalysisConfig drives a carry trade analysis run.
type AnalysisConfig struct {
	Principal  float64       `mapstructure:"principal"`
	Days       int           `mapstructure:"days"`
	TopK       int           `mapstructure:"top_k"`
	Volatility float64       `mapstructure:"volatility"`
	Seed       uint64        `mapstructure:"seed"`
	Workers    int           `mapstructure:"workers"`
	Rates      []RateEntry   `mapstructure:"rates"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// RateEntry is one row of the configured rate table. A list keeps the
// enumeration order stable, which a YAML map would not.
type RateEntry struct {
	Currency string  `mapstructure:"currency"`
	Rate     float64 `mapstructure:"rate"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the run journal.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AlertingConfig defines where run summaries are pushed.
type AlertingConfig struct {
	Enabled    bool           `mapstructure:"enabled"`
	MinRatio   float64        `mapstructure:"min_ratio"`
	MaxElapsed time.Duration  `mapstructure:"max_elapsed"`
	Telegram   TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 推送参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets report output behaviour.
type ExportConfig struct {
	PNGPath     string `mapstructure:"png_path"`
	CSVPath     string `mapstructure:"csv_path"`
	YAMLPath    string `mapstructure:"yaml_path"`
	ChartWidth  int    `mapstructure:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height"`
}

// Load builds configuration from .env, file, environment, and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CARRYTRADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// DefaultRates is the example table used when none is configured.
func DefaultRates() []RateEntry {
	return []RateEntry{
		{Currency: "AUD", Rate: 0.04},
		{Currency: "JPY", Rate: -0.001},
		{Currency: "NZD", Rate: 0.05},
		{Currency: "CHF", Rate: 0.001},
		{Currency: "MXN", Rate: 0.06},
		{Currency: "EUR", Rate: 0.002},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "carrytrade")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("analysis.principal", 100000.0)
	v.SetDefault("analysis.days", 365)
	v.SetDefault("analysis.top_k", 5)
	v.SetDefault("analysis.volatility", 0.01)
	v.SetDefault("analysis.seed", 0)
	v.SetDefault("analysis.workers", 1)
	v.SetDefault("analysis.timeout", "1m")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.min_ratio", 0.0)
	v.SetDefault("alerting.max_elapsed", "30s")
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.chart_width", 1280)
	v.SetDefault("export.chart_height", 720)

	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Analysis.Principal <= 0 {
		return fmt.Errorf("analysis.principal must be greater than zero")
	}
	if c.Analysis.Days < 0 {
		return fmt.Errorf("analysis.days cannot be negative")
	}
	if c.Analysis.TopK <= 0 {
		return fmt.Errorf("analysis.top_k must be greater than zero")
	}
	if c.Analysis.Volatility < 0 {
		return fmt.Errorf("analysis.volatility cannot be negative")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be at least 1")
	}
	for i, r := range c.Analysis.Rates {
		if strings.TrimSpace(r.Currency) == "" {
			return fmt.Errorf("analysis.rates[%d].currency 必须配置", i)
		}
		if r.Rate <= -1 {
			return fmt.Errorf("analysis.rates[%d] (%s) must be greater than -100%%", i, r.Currency)
		}
	}
	if c.Export.ChartWidth <= 0 || c.Export.ChartHeight <= 0 {
		return fmt.Errorf("export.chart_width and export.chart_height must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// ResolveRates returns configured rates, falling back to DefaultRates.
func (c *Config) ResolveRates() []RateEntry {
	if len(c.Analysis.Rates) > 0 {
		return c.Analysis.Rates
	}
	return DefaultRates()
}
