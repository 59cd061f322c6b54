package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	// Transaction import
	ImportChunkSize   int
	ImportDelimiter   string
	ImportOnDuplicate string // "duplicate" or "skip"

	// Market data provider
	QuoteURL        string
	QuoteAPIKey     string
	QuoteCallDelay  time.Duration
	QuoteMaxSymbols int
	QuoteStaleAfter time.Duration // 0 disables staleness checks

	// Notifications (optional, disabled when SMTPHost is empty)
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBConn:            getEnv("DB_CONN", "host=localhost port=5432 user=fintrack password=fintrack dbname=fintrack sslmode=disable"),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:         getEnv("JWT_SECRET", "secret"),
		ImportChunkSize:   getEnvInt("IMPORT_CHUNK_SIZE", 300),
		ImportDelimiter:   getEnv("IMPORT_DELIMITER", ","),
		ImportOnDuplicate: getEnv("IMPORT_ON_DUPLICATE", "duplicate"),
		QuoteURL:          getEnv("QUOTE_URL", "https://www.alphavantage.co/query"),
		QuoteAPIKey:       getEnv("QUOTE_API_KEY", ""),
		QuoteCallDelay:    getEnvDuration("QUOTE_CALL_DELAY", 250*time.Millisecond),
		QuoteMaxSymbols:   getEnvInt("QUOTE_MAX_SYMBOLS", 50),
		QuoteStaleAfter:   getEnvDuration("QUOTE_STALE_AFTER", 0),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SenderEmail:       getEnv("SENDER_EMAIL", "noreply@fintrack.local"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ImportChunkSize <= 0 {
		return nil, fmt.Errorf("IMPORT_CHUNK_SIZE must be positive")
	}
	if cfg.ImportOnDuplicate != "duplicate" && cfg.ImportOnDuplicate != "skip" {
		return nil, fmt.Errorf("IMPORT_ON_DUPLICATE must be \"duplicate\" or \"skip\"")
	}
	if cfg.QuoteMaxSymbols <= 0 {
		return nil, fmt.Errorf("QUOTE_MAX_SYMBOLS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}
