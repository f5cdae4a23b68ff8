// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// LINE channel (Required except ID)
	EnvLineChannelID     = "LINE_CHANNEL_ID"
	EnvLineChannelSecret = "LINE_CHANNEL_SECRET"
	EnvLineChannelToken  = "LINE_CHANNEL_TOKEN"

	// HotPepper
	EnvHotPepperAPIKey     = "HOTPEPPER_API_KEY"
	EnvHotPepperGourmetURL = "HOTPEPPER_GOURMET_URL"
	EnvHotPepperGenreURL   = "HOTPEPPER_GENRE_URL"
	EnvSearchTimeout       = "SEARCH_TIMEOUT"
	EnvSearchResultLimit   = "SEARCH_RESULT_LIMIT"
	EnvSearchRange         = "SEARCH_RANGE"

	// Server
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvServiceName     = "SERVICE_NAME"

	// Webhook
	EnvWebhookTimeout = "BOT_WEBHOOK_TIMEOUT"
	EnvGlobalRate     = "BOT_GLOBAL_RATE"
	EnvGlobalBurst    = "BOT_GLOBAL_BURST"
	EnvChatBurst      = "BOT_CHAT_BURST"
	EnvChatRefill     = "BOT_CHAT_REFILL"
	EnvChatDailyLimit = "BOT_CHAT_DAILY_LIMIT"

	// Metrics
	EnvMetricsUsername = "METRICS_USERNAME"
	EnvMetricsPassword = "METRICS_PASSWORD"

	// Sentry
	EnvSentryDSN         = "SENTRY_DSN"
	EnvSentryEnvironment = "SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "SENTRY_SAMPLE_RATE"

	// Better Stack
	EnvBetterStackToken    = "BETTERSTACK_SOURCE_TOKEN"
	EnvBetterStackEndpoint = "BETTERSTACK_ENDPOINT"
)
