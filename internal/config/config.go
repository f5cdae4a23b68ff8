// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) and provides defaults for the server, search client and bot.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default HotPepper endpoints
const (
	DefaultGourmetURL = "https://webservice.recruit.co.jp/hotpepper/gourmet/v1/"
	DefaultGenreURL   = "https://webservice.recruit.co.jp/hotpepper/genre/v1/"
)

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelID     string // Not used for API calls, kept for operator reference
	LineChannelSecret string
	LineChannelToken  string

	// HotPepper Configuration
	HotPepperAPIKey   string
	GourmetURL        string
	GenreURL          string
	SearchTimeout     time.Duration // Explicit timeout for each HotPepper call
	SearchResultLimit int           // Results requested per search (carousel max: 10)
	SearchRange       int           // HotPepper range code for location searches (1-5)

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Server Configuration
	Port            string
	LogLevel        string
	ServiceName     string
	ShutdownTimeout time.Duration

	// Sentry Configuration (empty DSN = disabled)
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack Configuration (empty token = disabled)
	BetterStackToken    string
	BetterStackEndpoint string

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds bot-specific configuration
type BotConfig struct {
	WebhookTimeout time.Duration // Timeout for a single event (see config/timeouts.go)

	// Global reply limiter (Token Bucket Algorithm)
	GlobalRate  float64 // Reply tokens refilled per second (default: 80)
	GlobalBurst float64 // Maximum burst tokens (default: 100)

	// Per-chat search limiter, protects the HotPepper API quota
	ChatBurst      float64 // Searches a chat may burst (default: 10)
	ChatRefill     float64 // Searches refilled per second (default: 0.2)
	ChatDailyLimit int     // Rolling 24h cap per chat (0 = disabled)

	// LINE API Constraints
	MaxMessagesPerReply int // Maximum messages per reply (LINE API limit: 5)
	MaxEventsPerWebhook int // Maximum events per webhook (default: 100)
	MinReplyTokenLength int // Minimum reply token length (default: 10)
	MaxKeywordLength    int // Maximum keyword length in runes (default: 100)
	MaxPostbackDataSize int // Maximum postback data size (LINE API limit: 300)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		LineChannelID:     getEnv(EnvLineChannelID, ""),
		LineChannelSecret: getEnv(EnvLineChannelSecret, ""),
		LineChannelToken:  getEnv(EnvLineChannelToken, ""),

		HotPepperAPIKey:   getEnv(EnvHotPepperAPIKey, ""),
		GourmetURL:        getEnv(EnvHotPepperGourmetURL, DefaultGourmetURL),
		GenreURL:          getEnv(EnvHotPepperGenreURL, DefaultGenreURL),
		SearchTimeout:     getDurationEnv(EnvSearchTimeout, SearchRequest),
		SearchResultLimit: getIntEnv(EnvSearchResultLimit, 10),
		SearchRange:       getIntEnv(EnvSearchRange, 3),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ServiceName:     getEnv(EnvServiceName, "gourmet-linebot"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		Bot: BotConfig{
			WebhookTimeout:      getDurationEnv(EnvWebhookTimeout, WebhookProcessing),
			GlobalRate:          getFloatEnv(EnvGlobalRate, 80.0), // LINE API: 100 RPS, keep headroom
			GlobalBurst:         getFloatEnv(EnvGlobalBurst, 100.0),
			ChatBurst:           getFloatEnv(EnvChatBurst, 10.0),
			ChatRefill:          getFloatEnv(EnvChatRefill, 0.2),
			ChatDailyLimit:      getIntEnv(EnvChatDailyLimit, 0),
			MaxMessagesPerReply: 5,
			MaxEventsPerWebhook: 100,
			MinReplyTokenLength: 10,
			MaxKeywordLength:    100,
			MaxPostbackDataSize: 300,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.LineChannelToken == "" {
		errs = append(errs, errors.New(EnvLineChannelToken+" is required"))
	}
	if c.LineChannelSecret == "" {
		errs = append(errs, errors.New(EnvLineChannelSecret+" is required"))
	}
	if c.HotPepperAPIKey == "" {
		errs = append(errs, errors.New(EnvHotPepperAPIKey+" is required"))
	}
	if c.GourmetURL == "" || c.GenreURL == "" {
		errs = append(errs, errors.New("HotPepper endpoint URLs cannot be empty"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.SearchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvSearchTimeout, c.SearchTimeout))
	}
	if c.SearchResultLimit < 1 || c.SearchResultLimit > 10 {
		errs = append(errs, fmt.Errorf("%s must be between 1 and 10, got %d", EnvSearchResultLimit, c.SearchResultLimit))
	}
	if c.SearchRange < 1 || c.SearchRange > 5 {
		errs = append(errs, fmt.Errorf("%s must be between 1 and 5, got %d", EnvSearchRange, c.SearchRange))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks bot limits against the LINE platform constraints
func (b *BotConfig) Validate() error {
	var errs []error

	if b.WebhookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvWebhookTimeout, b.WebhookTimeout))
	}
	if b.GlobalRate <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvGlobalRate, b.GlobalRate))
	}
	if b.GlobalBurst < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %v", EnvGlobalBurst, b.GlobalBurst))
	}
	if b.ChatBurst < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %v", EnvChatBurst, b.ChatBurst))
	}
	if b.ChatRefill <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvChatRefill, b.ChatRefill))
	}
	if b.ChatDailyLimit < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvChatDailyLimit, b.ChatDailyLimit))
	}
	if b.MaxMessagesPerReply < 1 || b.MaxMessagesPerReply > 5 {
		errs = append(errs, fmt.Errorf("max messages per reply must be between 1 and 5, got %d", b.MaxMessagesPerReply))
	}
	if b.MaxEventsPerWebhook < 1 {
		errs = append(errs, fmt.Errorf("max events per webhook must be positive, got %d", b.MaxEventsPerWebhook))
	}
	if b.MaxPostbackDataSize < 1 || b.MaxPostbackDataSize > 300 {
		errs = append(errs, fmt.Errorf("max postback data size must be between 1 and 300, got %d", b.MaxPostbackDataSize))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// MetricsAuthEnabled reports whether /metrics requires Basic Auth
func (c *Config) MetricsAuthEnabled() bool {
	return c.MetricsPassword != ""
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
