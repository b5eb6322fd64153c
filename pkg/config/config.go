package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Storage
	Database DatabaseConfig
	Redis    RedisConfig
	Ledger   LedgerConfig

	// Pipeline
	Pipeline PipelineConfig

	// External APIs
	Prices    PriceConfig
	Documents DocumentsConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	Prefix   string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// LedgerConfig selects the prediction store backend
type LedgerConfig struct {
	Driver string // postgres, memory
}

// PipelineConfig holds run parameters for one theme radar pass
type PipelineConfig struct {
	Subreddits         []string
	LookbackDays       int
	BaselineDays       int
	IncludeComments    bool
	TopN               int
	MinRecentMentions  int
	HorizonTradingDays int
	PriceSearchDays    int
	EntrySearchDays    int
	LockKey            string
	LockTTL            time.Duration
	ThemesFile         string
	ReportsDir         string
	MarketTimezone     string
	Schedule           string // cron expression (with seconds)
	ValidationSchedule string
	EvalConcurrency    int
}

// PriceConfig holds price lookup service configuration
type PriceConfig struct {
	BaseURL    string
	RatePerSec int
	Timeout    time.Duration
}

// DocumentsConfig selects where raw posts come from
type DocumentsConfig struct {
	File string // JSON snapshot on disk
	URL  string // HTTP endpoint returning the same JSON
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Prefix:   getEnv("REDIS_PREFIX", "themeradar"),
		},

		Ledger: LedgerConfig{
			Driver: getEnv("LEDGER_DRIVER", "postgres"),
		},

		Pipeline: PipelineConfig{
			Subreddits:         getEnvAsList("SUBREDDITS", []string{"stocks", "investing", "wallstreetbets", "StockMarket", "ValueInvesting"}),
			LookbackDays:       getEnvAsInt("LOOKBACK_DAYS", 7),
			BaselineDays:       getEnvAsInt("BASELINE_DAYS", 30),
			IncludeComments:    getEnvAsBool("INCLUDE_COMMENTS", true),
			TopN:               getEnvAsInt("TOP_N", 5),
			MinRecentMentions:  getEnvAsInt("MIN_RECENT_MENTIONS", 2),
			HorizonTradingDays: getEnvAsInt("HORIZON_TRADING_DAYS", 7),
			PriceSearchDays:    getEnvAsInt("PRICE_SEARCH_DAYS", 10),
			EntrySearchDays:    getEnvAsInt("ENTRY_SEARCH_DAYS", 7),
			LockKey:            getEnv("LOCK_KEY", "pipeline"),
			LockTTL:            getEnvAsDuration("LOCK_TTL", "3h"),
			ThemesFile:         getEnv("THEMES_FILE", "config/themes.yaml"),
			ReportsDir:         getEnv("REPORTS_DIR", "reports"),
			MarketTimezone:     getEnv("MARKET_TIMEZONE", "America/New_York"),
			Schedule:           getEnv("PIPELINE_SCHEDULE", "0 30 17 * * 1-5"),
			ValidationSchedule: getEnv("VALIDATION_SCHEDULE", "0 0 9 * * 6"),
			EvalConcurrency:    getEnvAsInt("EVAL_CONCURRENCY", 4),
		},

		Prices: PriceConfig{
			BaseURL:    getEnv("PRICE_BASE_URL", "https://stooq.com"),
			RatePerSec: getEnvAsInt("PRICE_RATE_PER_SEC", 2),
			Timeout:    getEnvAsDuration("PRICE_TIMEOUT", "15s"),
		},

		Documents: DocumentsConfig{
			File: getEnv("DOCUMENTS_FILE", ""),
			URL:  getEnv("DOCUMENTS_URL", ""),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Ledger.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when LEDGER_DRIVER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("LEDGER_DRIVER must be one of: postgres, memory")
	}

	p := c.Pipeline
	if p.LookbackDays < 1 || p.BaselineDays < 1 {
		return fmt.Errorf("LOOKBACK_DAYS and BASELINE_DAYS must be >= 1")
	}
	if p.TopN < 0 {
		return fmt.Errorf("TOP_N must be >= 0")
	}
	if p.HorizonTradingDays < 1 {
		return fmt.Errorf("HORIZON_TRADING_DAYS must be >= 1")
	}
	if p.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive")
	}
	if _, err := time.LoadLocation(p.MarketTimezone); err != nil {
		return fmt.Errorf("MARKET_TIMEZONE invalid: %w", err)
	}

	return nil
}

// Location returns the market timezone used to derive signal dates
func (p PipelineConfig) Location() *time.Location {
	loc, err := time.LoadLocation(p.MarketTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
