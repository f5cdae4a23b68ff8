// Package webhook receives LINE webhook callbacks, hands each event to the
// bot processor and delivers the replies.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/garyellow/gourmet-linebot-go/internal/bot"
	"github.com/garyellow/gourmet-linebot-go/internal/config"
	"github.com/garyellow/gourmet-linebot-go/internal/ctxutil"
	"github.com/garyellow/gourmet-linebot-go/internal/logger"
	"github.com/garyellow/gourmet-linebot-go/internal/metrics"
	"github.com/garyellow/gourmet-linebot-go/internal/ratelimit"
)

// Global limiter names used in metrics.
const (
	replyLimiterName   = "reply"
	loadingLimiterName = "loading"
)

// EventProcessor turns one decoded event into reply messages.
type EventProcessor interface {
	Process(ctx context.Context, event bot.Event) ([]messaging_api.MessageInterface, error)
}

// Handler handles LINE webhook events
type Handler struct {
	channelSecret  string
	messenger      Messenger
	processor      EventProcessor
	metrics        *metrics.Metrics
	logger         *logger.Logger
	replyLimiter   *ratelimit.Limiter // Global limiter for LINE API calls
	wg             sync.WaitGroup     // Tracks async event processing
	loadingSeconds int32              // 0 disables the loading animation

	// LINE API constraints (from config.BotConfig)
	webhookTimeout      time.Duration
	maxMessagesPerReply int
	maxEventsPerWebhook int
	minReplyTokenLength int
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	ChannelSecret string
	Messenger     Messenger
	Processor     EventProcessor
	BotConfig     *config.BotConfig
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig, opts ...HandlerOption) *Handler {
	h := &Handler{
		channelSecret:       cfg.ChannelSecret,
		messenger:           cfg.Messenger,
		processor:           cfg.Processor,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger.WithModule("webhook"),
		loadingSeconds:      config.LoadingAnimationSeconds,
		webhookTimeout:      cfg.BotConfig.WebhookTimeout,
		maxMessagesPerReply: cfg.BotConfig.MaxMessagesPerReply,
		maxEventsPerWebhook: cfg.BotConfig.MaxEventsPerWebhook,
		minReplyTokenLength: cfg.BotConfig.MinReplyTokenLength,
		replyLimiter:        ratelimit.New(cfg.BotConfig.GlobalBurst, cfg.BotConfig.GlobalRate),
	}
	if h.webhookTimeout <= 0 {
		h.webhookTimeout = config.WebhookProcessing
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle is the Gin handler for the webhook endpoint
func (h *Handler) Handle(c *gin.Context) {
	// 1. Parse request; the signature is verified before anything is decoded
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.WarnContext(c.Request.Context(), "Invalid webhook signature")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).ErrorContext(c.Request.Context(), "Failed to parse webhook request")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	// 2. Return 200 OK immediately (LINE requirement)
	c.Status(http.StatusOK)

	if len(cb.Events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(cb.Events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		cb.Events = cb.Events[:h.maxEventsPerWebhook]
	}

	// Copy events; the request is done once the handler returns
	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)

	// 3. Process events asynchronously, in order
	ctx := ctxutil.PreserveTracing(c.Request.Context())
	start := time.Now()
	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).ErrorContext(ctx, "Panic in async event processing")
			}
		}()

		for _, event := range events {
			h.processEvent(ctx, event, start)
		}
	})
}

// processEvent handles a single webhook event and sends at most one reply.
func (h *Handler) processEvent(ctx context.Context, raw webhook.EventInterface, batchStart time.Time) {
	eventStart := time.Now()

	event, ok := bot.DecodeEvent(raw)
	if !ok {
		h.logger.WithField("event_type", fmt.Sprintf("%T", raw)).DebugContext(ctx, "Unsupported event type")
		return
	}
	meta := event.Meta()

	ctx, cancel := context.WithTimeout(ctx, h.webhookTimeout)
	defer cancel()

	log := h.logger.WithField("event_type", event.Type())
	if meta.WebhookEventID != "" {
		log = log.WithField("event_id", meta.WebhookEventID)
	}
	if meta.Redelivery {
		log = log.WithField("is_redelivery", true)
	}
	if meta.Timestamp > 0 {
		log = log.WithField("event_timestamp_ms", meta.Timestamp)
	}

	if h.shouldShowLoading(event) {
		if !h.replyLimiter.Allow() {
			// Replies wait for tokens; the animation is skipped instead
			h.metrics.RecordRateLimiterDrop(loadingLimiterName)
			log.DebugContext(ctx, "Loading animation skipped by global rate limit")
		} else if err := h.messenger.ShowLoading(ctx, meta.ChatID, h.loadingSeconds); err != nil {
			h.metrics.RecordLineAPIError("loading", classifyLineError(err))
			log.WithError(err).WarnContext(ctx, "Failed to show loading animation")
		}
	}

	messages, err := h.processor.Process(ctx, event)
	if err != nil {
		log.WithError(err).ErrorContext(ctx, "Failed to handle event")
		return
	}
	if len(messages) == 0 {
		log.DebugContext(ctx, "No reply for event")
		return
	}

	// LINE API restriction: max messages per reply
	if len(messages) > h.maxMessagesPerReply {
		log.WithField("message_count", len(messages)).
			WithField("limit", h.maxMessagesPerReply).
			WarnContext(ctx, "Message count exceeds limit; truncating")
		messages = messages[:h.maxMessagesPerReply]
	}

	if len(meta.ReplyToken) < h.minReplyTokenLength {
		log.WithField("token_length", len(meta.ReplyToken)).DebugContext(ctx, "Invalid reply token format")
		return
	}

	waited, err := h.replyLimiter.Wait(ctx)
	if waited {
		h.metrics.RecordRateLimiterDrop(replyLimiterName)
		log.DebugContext(ctx, "Reply delayed by global rate limit")
	}
	if err != nil {
		log.WithError(err).WarnContext(ctx, "Gave up waiting for reply rate limit")
		return
	}

	if err := h.messenger.Reply(ctx, meta.ReplyToken, messages); err != nil {
		reason := classifyLineError(err)
		h.metrics.RecordLineAPIError("reply", reason)
		switch reason {
		case "invalid_token":
			log.WithError(err).DebugContext(ctx, "Reply token already used or expired")
		default:
			log.WithError(err).
				WithField("reason", reason).
				ErrorContext(ctx, "Failed to send reply")
		}
		return
	}

	log.WithField("message_count", len(messages)).
		WithField("event_duration_ms", time.Since(eventStart).Milliseconds()).
		WithField("batch_duration_ms", time.Since(batchStart).Milliseconds()).
		InfoContext(ctx, "Event processed")
}

// shouldShowLoading reports whether the event may trigger a search in a 1:1 chat.
// LINE only supports the loading animation in 1:1 chats.
func (h *Handler) shouldShowLoading(event bot.Event) bool {
	if h.loadingSeconds <= 0 || !event.Meta().Personal || event.Meta().ChatID == "" {
		return false
	}
	switch event.(type) {
	case bot.TextEvent, bot.PostbackEvent:
		return true
	default:
		return false
	}
}

// classifyLineError maps a LINE API error to a metrics reason.
func classifyLineError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid reply token"):
		return "invalid_token"
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return "rate_limit"
	default:
		return "other"
	}
}

// Shutdown waits for all async event processing to complete.
// It returns an error if the context is canceled before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		h.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
