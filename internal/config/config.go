package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	// Data provider
	DataAPIKey     string
	DataBaseURL    string
	Symbol         string
	Interval       string
	Lookback       int
	RequestTimeout int // seconds
	RequestsPerSec int

	// Backtest
	EnableBacktest     bool
	BacktestStart      time.Time
	BacktestEnd        time.Time
	InitialCapital     float64
	Strategy           string
	SignalThreshold    float64
	RiskPerTrade       float64
	TransactionCost    float64
	MinConfluenceScore float64
	MinConfidence      float64

	// Persistence
	EnableStorage bool
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string

	// Notifications
	EnableTelegram bool
	TelegramToken  string
	TelegramChatID int64

	LogLevel string
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.DataAPIKey = os.Getenv("DATA_API_KEY")
	cfg.DataBaseURL = getEnvWithDefault("DATA_BASE_URL", "https://api.twelvedata.com")
	cfg.Symbol = getEnvWithDefault("SYMBOL", "AAPL")
	cfg.Interval = getEnvWithDefault("INTERVAL", "1day")
	cfg.Lookback = getEnvIntWithDefault("LOOKBACK", 400)
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)

	cfg.EnableBacktest = getEnvBoolWithDefault("ENABLE_BACKTEST", true)
	cfg.BacktestStart = getEnvDateWithDefault("BACKTEST_START", time.Now().AddDate(-1, 0, 0))
	cfg.BacktestEnd = getEnvDateWithDefault("BACKTEST_END", time.Now())
	cfg.InitialCapital = getEnvFloatWithDefault("INITIAL_CAPITAL", 10000)
	cfg.Strategy = getEnvWithDefault("STRATEGY", "follow_ai")
	cfg.SignalThreshold = getEnvFloatWithDefault("SIGNAL_THRESHOLD", 20)
	cfg.RiskPerTrade = getEnvFloatWithDefault("RISK_PER_TRADE", 0.02)
	cfg.TransactionCost = getEnvFloatWithDefault("TRANSACTION_COST", 0.001)
	cfg.MinConfluenceScore = getEnvFloatWithDefault("MIN_CONFLUENCE_SCORE", 40)
	cfg.MinConfidence = getEnvFloatWithDefault("MIN_CONFIDENCE", 0.3)

	cfg.EnableStorage = getEnvBoolWithDefault("ENABLE_STORAGE", false)
	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "signalforge")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.EnableTelegram = getEnvBoolWithDefault("ENABLE_TELEGRAM", false)
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDateWithDefault(key string, defaultValue time.Time) time.Time {
	if value := os.Getenv(key); value != "" {
		if t, err := time.Parse("2006-01-02", value); err == nil {
			return t
		}
	}
	return defaultValue
}
