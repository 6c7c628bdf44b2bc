package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log          Logger         `mapstructure:"logger"`
	DB           Database       `mapstructure:"database"`
	API          API            `mapstructure:"api"`
	YahooFinance YahooFinance   `mapstructure:"yahoo_finance"`
	Screener     Screener       `mapstructure:"screener"`
	Scanner      Scanner        `mapstructure:"scanner"`
	Cache        Cache          `mapstructure:"cache"`
	Scheduler    Scheduler      `mapstructure:"scheduler"`
	Gemini       Gemini         `mapstructure:"gemini"`
	Telegram     TelegramConfig `mapstructure:"telegram"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type Screener struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	ListCacheTTL        time.Duration `mapstructure:"list_cache_ttl"`
}

// Scanner holds the breakout scan defaults. Detection thresholds are
// tunables here rather than hard invariants: with the rising-price filter
// and the minimum-signal cutoff some symbols legitimately never produce a
// result.
type Scanner struct {
	DefaultLookbackDays int     `mapstructure:"default_lookback_days"`
	MinSignals          float64 `mapstructure:"min_signals"`
	ResultTTLDays       int     `mapstructure:"result_ttl_days"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	MaxEntries        int           `mapstructure:"max_entries"`
}

type Scheduler struct {
	RescanCron   string        `mapstructure:"rescan_cron"`
	RescanMaxAge time.Duration `mapstructure:"rescan_max_age"`
}

type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseModel           string        `mapstructure:"base_model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

func Load() (*Config, error) {
	// .env is optional, env vars win either way.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("yahoo_finance.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("yahoo_finance.timeout", 15*time.Second)
	viper.SetDefault("yahoo_finance.max_request_per_minute", 30)
	viper.SetDefault("screener.timeout", 15*time.Second)
	viper.SetDefault("screener.max_request_per_minute", 10)
	viper.SetDefault("screener.list_cache_ttl", 10*time.Minute)
	viper.SetDefault("scanner.default_lookback_days", 365)
	viper.SetDefault("scanner.min_signals", 4)
	viper.SetDefault("scanner.result_ttl_days", 1)
	viper.SetDefault("cache.default_expiration", 6*time.Hour)
	viper.SetDefault("cache.cleanup_interval", 30*time.Minute)
	viper.SetDefault("cache.max_entries", 256)
	viper.SetDefault("scheduler.rescan_cron", "0 18 * * 1-5")
	viper.SetDefault("scheduler.rescan_max_age", 24*time.Hour)
	viper.SetDefault("gemini.base_model", "gemini-2.0-flash")
	viper.SetDefault("gemini.timeout", 60*time.Second)
	viper.SetDefault("gemini.max_request_per_minute", 10)
	viper.SetDefault("gemini.max_token_per_minute", 250000)
}
