package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment
// variables. Strategy parameters are read once here and passed into strategy
// constructors as immutable values — there is no process-wide mutable config.
type Config struct {
	// Market data
	ExchangeBaseURL string // REST base, e.g. "https://api.binance.com"
	ExchangeWSURL   string // websocket base, e.g. "wss://stream.binance.com:9443"
	Symbols         string // comma-separated, e.g. "BTCUSDT,ETHUSDT"
	Interval        string // kline interval, e.g. "15m"

	// Windows
	ScanWindow int // candles fetched per one-shot scan
	WindowSize int // trailing window capacity in live mode

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SQLitePath    string
	MetricsAddr   string
	GatewayAddr   string // signal gateway HTTP/WS listen address
	ReplaySize    int    // gateway replay buffer capacity
	LogLevel      string

	// Signal delivery
	TelegramBotToken string
	TelegramChatID   string
	SignalWebhookURL string

	// Volume breakout
	VolumeMultiplier float64

	// RSI divergence
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64

	// Bollinger squeeze
	BBPeriod  int
	BBStd     float64
	ATRPeriod int

	// MACD (used by the squeeze confirmation)
	MACDFast   int
	MACDSlow   int
	MACDSignal int

	// EMA crossover
	EMAFast             int
	EMASlow             int
	EMAVolumeMultiplier float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		ExchangeBaseURL: getEnv("EXCHANGE_BASE_URL", "https://api.binance.com"),
		ExchangeWSURL:   getEnv("EXCHANGE_WS_URL", "wss://stream.binance.com:9443"),
		Symbols:         getEnv("SYMBOLS", "BTCUSDT,ETHUSDT,SOLUSDT,BNBUSDT,DOGEUSDT"),
		Interval:        getEnv("INTERVAL", "15m"),

		ScanWindow: getEnvInt("SCAN_WINDOW", 200),
		WindowSize: getEnvInt("WINDOW_SIZE", 200),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		SQLitePath:    getEnv("SQLITE_PATH", ""),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		GatewayAddr:   getEnv("GATEWAY_ADDR", ":8080"),
		ReplaySize:    getEnvInt("REPLAY_SIZE", 500),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		SignalWebhookURL: getEnv("SIGNAL_WEBHOOK_URL", ""),

		VolumeMultiplier: getEnvFloat("VOLUME_MULTIPLIER", 2.0),

		RSIPeriod:     getEnvInt("RSI_PERIOD", 14),
		RSIOversold:   getEnvFloat("RSI_OVERSOLD", 30),
		RSIOverbought: getEnvFloat("RSI_OVERBOUGHT", 70),

		BBPeriod:  getEnvInt("BB_PERIOD", 20),
		BBStd:     getEnvFloat("BB_STD", 2.0),
		ATRPeriod: getEnvInt("ATR_PERIOD", 14),

		MACDFast:   getEnvInt("MACD_FAST", 12),
		MACDSlow:   getEnvInt("MACD_SLOW", 26),
		MACDSignal: getEnvInt("MACD_SIGNAL", 9),

		EMAFast:             getEnvInt("EMA_FAST", 5),
		EMASlow:             getEnvInt("EMA_SLOW", 20),
		EMAVolumeMultiplier: getEnvFloat("EMA_VOLUME_MULTIPLIER", 1.5),
	}
}

// ParseSymbols splits the Symbols string into a cleaned slice.
func (c *Config) ParseSymbols() []string {
	parts := strings.Split(c.Symbols, ",")
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
		log.Printf("[config] invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid float for %s: %q, using %g", key, v, fallback)
		return fallback
	}
	return f
}
