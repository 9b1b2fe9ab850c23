package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Storefront configuration
	BaseURL string

	// MongoDB configuration
	MongoURI      string
	MongoDatabase string

	// Crawl pacing
	PageDelay  time.Duration
	RetryDelay time.Duration

	// Price capture
	DedupWindow    time.Duration
	CurrencySymbol string
	CurrencyCode   string
	SourceTag      string

	// Memcache configuration (rate-limit blocks; disabled when empty)
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Redis configuration (price events; disabled when empty)
	RedisAddr   string
	RedisDB     int
	RedisStream string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	pageDelay, _ := strconv.Atoi(getEnv("PAGE_DELAY_SECONDS", "5"))
	retryDelay, _ := strconv.Atoi(getEnv("RETRY_DELAY_SECONDS", "5"))
	dedupHours, _ := strconv.Atoi(getEnv("PRICE_DEDUP_HOURS", "12"))
	blockSeconds, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "300"))

	return Config{
		BaseURL:        getEnv("CATALOG_BASE_URL", ""),
		MongoURI:       getEnv("MONGODB_URI", ""),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "snapprice"),
		PageDelay:      time.Duration(pageDelay) * time.Second,
		RetryDelay:     time.Duration(retryDelay) * time.Second,
		DedupWindow:    time.Duration(dedupHours) * time.Hour,
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "R"),
		CurrencyCode:   getEnv("CURRENCY_CODE", "zar"),
		SourceTag:      getEnv("SOURCE_TAG", "amazon"),
		MemcacheAddr:   getEnv("MEMCACHE_ADDR", ""),
		RateLimitBlock: time.Duration(blockSeconds) * time.Second,
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisDB:        redisDB,
		RedisStream:    getEnv("REDIS_STREAM", "price_events"),
		Environment:    getEnv("CATALOG_ENVIRONMENT", "development"),
	}
}

// Validate checks that required configuration values are present
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("CATALOG_BASE_URL is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.MongoDatabase == "" {
		return fmt.Errorf("MONGODB_DATABASE must not be empty")
	}
	if c.PageDelay < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("crawl delays must not be negative")
	}
	if c.DedupWindow <= 0 {
		return fmt.Errorf("price dedup window must be positive")
	}
	return nil
}

// IsDevelopment reports whether the worker runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
