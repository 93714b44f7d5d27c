package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv          string
	Debug           bool
	Version         string
	BotName         string
	BotToken        string
	SentryDSN       string
	MongoDBURI      string
	MongoDBDatabase string
	DefaultLanguage string

	// Publishing destinations. TargetGroup and TargetTopic are the static
	// primary destination used when SortByBrand is off or a brand carries
	// no routing of its own. BuyerGroups receive a copy of every post.
	TargetGroup string
	TargetTopic string
	BuyerGroups []string

	// Feature toggles.
	SortByBrand  bool
	AdjustPrice  bool
	AddWatermark bool
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system (e.g., by Docker).
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))
	sortByBrand, _ := strconv.ParseBool(getEnv("SORT_BY_BRAND", "false"))
	adjustPrice, _ := strconv.ParseBool(getEnv("ADJUST_PRICE", "true"))
	addWatermark, _ := strconv.ParseBool(getEnv("ADD_WATERMARK", "false"))

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Debug:           debug,
		Version:         getEnv("VERSION", "dev"),
		BotName:         getEnv("BOT_NAME", ""),
		BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		MongoDBURI:      getEnv("MONGODB_URI", ""),
		MongoDBDatabase: getEnv("MONGODB_DATABASE", ""),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "ru"),
		TargetGroup:     getEnv("TARGET_GROUP", ""),
		TargetTopic:     getEnv("TARGET_TOPIC", ""),
		BuyerGroups:     splitList(getEnv("BUYER_GROUPS", "")),
		SortByBrand:     sortByBrand,
		AdjustPrice:     adjustPrice,
		AddWatermark:    addWatermark,
	}

	// Basic validation for essential variables
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.BotName == "" {
		return nil, fmt.Errorf("BOT_NAME is required")
	}
	if cfg.TargetGroup == "" && !cfg.SortByBrand {
		return nil, fmt.Errorf("TARGET_GROUP is required when SORT_BY_BRAND is off")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.MongoDBDatabase == "" {
		return nil, fmt.Errorf("MONGODB_DATABASE is required")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// splitList parses a comma-separated env value into trimmed non-empty items.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
