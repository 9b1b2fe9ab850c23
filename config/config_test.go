package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "snapprice", config.MongoDatabase)
	assert.Equal(t, 5*time.Second, config.PageDelay)
	assert.Equal(t, 5*time.Second, config.RetryDelay)
	assert.Equal(t, 12*time.Hour, config.DedupWindow)
	assert.Equal(t, "R", config.CurrencySymbol)
	assert.Equal(t, "zar", config.CurrencyCode)
	assert.Equal(t, "amazon", config.SourceTag)
	assert.Equal(t, "development", config.Environment)
	assert.True(t, config.IsDevelopment())

	// Test with environment variables
	os.Setenv("CATALOG_BASE_URL", "https://store.example.com")
	os.Setenv("MONGODB_URI", "mongodb://mongo.example.com:27017")
	os.Setenv("MONGODB_DATABASE", "catalog_test")
	os.Setenv("PAGE_DELAY_SECONDS", "1")
	os.Setenv("PRICE_DEDUP_HOURS", "6")
	os.Setenv("CATALOG_ENVIRONMENT", "production")

	config = LoadConfig()
	assert.Equal(t, "https://store.example.com", config.BaseURL)
	assert.Equal(t, "mongodb://mongo.example.com:27017", config.MongoURI)
	assert.Equal(t, "catalog_test", config.MongoDatabase)
	assert.Equal(t, 1*time.Second, config.PageDelay)
	assert.Equal(t, 6*time.Hour, config.DedupWindow)
	assert.False(t, config.IsDevelopment())

	// Clean up
	os.Unsetenv("CATALOG_BASE_URL")
	os.Unsetenv("MONGODB_URI")
	os.Unsetenv("MONGODB_DATABASE")
	os.Unsetenv("PAGE_DELAY_SECONDS")
	os.Unsetenv("PRICE_DEDUP_HOURS")
	os.Unsetenv("CATALOG_ENVIRONMENT")
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		BaseURL:       "https://store.example.com",
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "snapprice",
		DedupWindow:   12 * time.Hour,
	}
	assert.NoError(t, valid.Validate())

	missingBase := valid
	missingBase.BaseURL = ""
	assert.Error(t, missingBase.Validate())

	missingMongo := valid
	missingMongo.MongoURI = ""
	assert.Error(t, missingMongo.Validate())

	badWindow := valid
	badWindow.DedupWindow = 0
	assert.Error(t, badWindow.Validate())

	badDelay := valid
	badDelay.RetryDelay = -1 * time.Second
	assert.Error(t, badDelay.Validate())
}
