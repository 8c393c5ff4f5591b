// Package config loads application configuration from environment
// variables with sensible defaults.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all dashboard configuration.
type Config struct {
	// HTTP
	ListenAddr string

	// Analysis defaults
	DefaultSymbol string
	DefaultPeriod string

	// Upstream data source
	ProxyURL string

	// Infrastructure
	RedisAddr     string // empty disables the series cache
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	SQLitePath    string // empty disables analysis history

	// Watch list
	WatchSymbols    string // comma-separated tickers
	WatchPeriod     string
	WatchCron       string // cron spec with seconds field
	RunOnStart      bool
	MarketHoursOnly bool
	EventsRingSize  int

	// Signal change alerts
	TelegramBotToken string
	TelegramChatID   string
	WebhookURL       string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		DefaultSymbol: strings.ToUpper(getEnv("DEFAULT_SYMBOL", "AAPL")),
		DefaultPeriod: getEnv("DEFAULT_PERIOD", "1y"),

		ProxyURL: getEnv("PROXY_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		SQLitePath:    getEnv("SQLITE_PATH", "data/analysis.db"),

		WatchSymbols: getEnv("WATCH_SYMBOLS", ""),
		WatchPeriod:  getEnv("WATCH_PERIOD", "1y"),
		// Default: every 15 minutes
		WatchCron:       getEnv("WATCH_CRON", "0 */15 * * * *"),
		RunOnStart:      getEnv("RUN_ON_START", "") == "true",
		MarketHoursOnly: getEnv("WATCH_MARKET_HOURS_ONLY", "") == "true",
		EventsRingSize:  getEnvInt("EVENTS_RING_SIZE", 256),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
	}
}

// ParseWatchSymbols splits WatchSymbols into normalized tickers.
func (c *Config) ParseWatchSymbols() []string {
	parts := strings.Split(c.WatchSymbols, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		symbols = append(symbols, p)
	}
	return symbols
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
