package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MarketSignal/internal/logging"
	"MarketSignal/internal/strategy"
)

// Data providers.
const (
	ProviderMock         = "mock"
	ProviderAlphaVantage = "alphavantage"
	ProviderTraderMade   = "tradermade"
)

// WatchItem is one symbol/timeframe pair scanned on schedule.
type WatchItem struct {
	Symbol    string `yaml:"symbol"`
	Timeframe string `yaml:"timeframe"`
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider          string        `yaml:"provider"`
		BaseURL           string        `yaml:"base_url"`
		APIKey            string        `yaml:"api_key"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Burst             int           `yaml:"burst"`
		Timeout           time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Watchlist []WatchItem `yaml:"watchlist"`
	Schedule  struct {
		ScanCron    string `yaml:"scan_cron"`
		DigestCron  string `yaml:"digest_cron"`
		Concurrency int    `yaml:"concurrency"`
		StateFile   string `yaml:"state_file"`
	} `yaml:"schedule"`
	Cache struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Log   logging.Config `yaml:"log"`
	Proxy string         `yaml:"proxy"`
}

// Load reads .env, then the YAML file at path, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional; existing environment variables win.
	_ = godotenv.Load()

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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Telegram.BotToken = getEnvOrDefault("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
	c.Telegram.ChatID = getEnvOrDefault("TELEGRAM_CHAT_ID", c.Telegram.ChatID)

	c.DataSource.Provider = getEnvOrDefault("DATA_PROVIDER", c.DataSource.Provider)
	c.DataSource.BaseURL = getEnvOrDefault("DATA_BASE_URL", c.DataSource.BaseURL)
	c.DataSource.APIKey = getEnvOrDefault("DATA_API_KEY", c.DataSource.APIKey)
	switch strings.ToLower(c.DataSource.Provider) {
	case ProviderAlphaVantage:
		c.DataSource.APIKey = getEnvOrDefault("ALPHAVANTAGE_API_KEY", c.DataSource.APIKey)
	case ProviderTraderMade:
		c.DataSource.APIKey = getEnvOrDefault("TRADERMADE_API_KEY", c.DataSource.APIKey)
	}
	c.DataSource.RequestsPerSecond = getEnvFloat("DATA_REQUESTS_PER_SECOND", c.DataSource.RequestsPerSecond)
	c.DataSource.Burst = getEnvInt("DATA_BURST", c.DataSource.Burst)

	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = ParseWatchlist(v)
	}

	c.Schedule.ScanCron = getEnvOrDefault("CRON_SCAN", c.Schedule.ScanCron)
	c.Schedule.DigestCron = getEnvOrDefault("CRON_DIGEST", c.Schedule.DigestCron)
	c.Schedule.Concurrency = getEnvInt("SCAN_CONCURRENCY", c.Schedule.Concurrency)
	c.Schedule.StateFile = getEnvOrDefault("SCAN_STATE_FILE", c.Schedule.StateFile)

	c.Cache.RedisAddr = getEnvOrDefault("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("REDIS_DB", c.Cache.RedisDB)
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = d
		}
	}

	c.Database.SQLitePath = getEnvOrDefault("SQLITE_PATH", c.Database.SQLitePath)
	c.Server.Addr = getEnvOrDefault("SERVER_ADDR", c.Server.Addr)
	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Proxy = getEnvOrDefault("HTTPS_PROXY", c.Proxy)
}

func (c *Config) applyDefaults() {
	c.DataSource.Provider = strings.ToLower(c.DataSource.Provider)
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderMock
	}
	if c.DataSource.BaseURL == "" {
		switch c.DataSource.Provider {
		case ProviderAlphaVantage:
			c.DataSource.BaseURL = "https://www.alphavantage.co/query"
		case ProviderTraderMade:
			c.DataSource.BaseURL = "https://marketdata.tradermade.com/api/v1"
		}
	}
	if c.DataSource.RequestsPerSecond == 0 {
		// Alpha Vantage free tier allows 5 requests per minute.
		c.DataSource.RequestsPerSecond = 5.0 / 60
	}
	if c.DataSource.Burst == 0 {
		// One analysis issues four requests; let them go out together.
		c.DataSource.Burst = 5
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 15 * time.Second
	}
	if len(c.Watchlist) == 0 {
		c.Watchlist = []WatchItem{
			{Symbol: "AAPL", Timeframe: "1D"},
			{Symbol: "BTCUSD", Timeframe: "1H"},
			{Symbol: "EURUSD", Timeframe: "4H"},
		}
	}
	for i := range c.Watchlist {
		c.Watchlist[i].Symbol = strings.ToUpper(strings.TrimSpace(c.Watchlist[i].Symbol))
		if c.Watchlist[i].Timeframe == "" {
			c.Watchlist[i].Timeframe = strategy.DefaultTimeframe
		}
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 */15 * * * *"
	}
	if c.Schedule.DigestCron == "" {
		c.Schedule.DigestCron = "0 0 22 * * 1-5"
	}
	if c.Schedule.Concurrency <= 0 {
		c.Schedule.Concurrency = 4
	}
	if c.Schedule.StateFile == "" {
		c.Schedule.StateFile = "data/scan_state.json"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/market_signal.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the configuration is usable. Telegram is optional:
// without a bot token notifications are disabled.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderMock:
	case ProviderAlphaVantage, ProviderTraderMade:
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for provider %q", c.DataSource.Provider)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.RequestsPerSecond < 0 {
		return fmt.Errorf("data_source.requests_per_second must not be negative")
	}
	if c.DataSource.Burst < 0 {
		return fmt.Errorf("data_source.burst must not be negative")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	for i, w := range c.Watchlist {
		if w.Symbol == "" {
			return fmt.Errorf("watchlist[%d].symbol is required", i)
		}
		if !strategy.IsKnownTimeframe(w.Timeframe) {
			return fmt.Errorf("watchlist[%d].timeframe %q is not one of %v", i, w.Timeframe, strategy.Timeframes())
		}
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

// ParseWatchlist parses "AAPL:1D,BTCUSD:1H" style lists. A missing
// timeframe is left empty for the defaults to fill.
func ParseWatchlist(s string) []WatchItem {
	var out []WatchItem
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		symbol, tf, _ := strings.Cut(part, ":")
		out = append(out, WatchItem{Symbol: strings.TrimSpace(symbol), Timeframe: strings.TrimSpace(tf)})
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}
