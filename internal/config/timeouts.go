// Package config provides centralized timeout constants for the application.
//
// # LINE API Constraints
//
// LINE webhook has specific timing requirements:
//   - Webhook response: LINE expects quick acknowledgment (200 OK)
//   - Reply token: valid for a short window, reply as soon as possible
//   - Loading animation: shows for up to 60 seconds
//
// Search calls to HotPepper are kept short so an unresponsive upstream
// cannot hold an event goroutine for the whole webhook budget.
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing is the timeout for processing a single webhook event,
	// including the search call and the reply delivery.
	WebhookProcessing = 60 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// LINE sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	// The webhook acknowledges before processing, so this only covers the 200 OK.
	WebhookHTTPWrite = 15 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second

	// LoadingAnimationSeconds is how long the LINE loading indicator is requested for.
	// LINE accepts multiples of 5 between 5 and 60.
	LoadingAnimationSeconds = 20

	// LineAPIRequest bounds each call to the LINE Messaging API.
	LineAPIRequest = 10 * time.Second
)

// Search timeouts
const (
	// SearchRequest is the default timeout for a single HotPepper API call.
	SearchRequest = 5 * time.Second
)

// Rate limiting
const (
	// RateLimiterCleanup is how often idle per-chat limiter entries are evicted.
	RateLimiterCleanup = 5 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight events to finish replying before forceful termination.
	GracefulShutdown = 30 * time.Second

	// SentryFlush bounds how long buffered Sentry events are flushed on exit.
	SentryFlush = 2 * time.Second
)
