// Package bot turns decoded LINE webhook events into reply messages.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/gourmet-linebot-go/internal/config"
	"github.com/garyellow/gourmet-linebot-go/internal/ctxutil"
	"github.com/garyellow/gourmet-linebot-go/internal/lineutil"
	"github.com/garyellow/gourmet-linebot-go/internal/logger"
	"github.com/garyellow/gourmet-linebot-go/internal/metrics"
	"github.com/garyellow/gourmet-linebot-go/internal/ratelimit"
	"github.com/garyellow/gourmet-linebot-go/internal/sentry"
)

// MsgRateLimited is sent in 1:1 chats that exceed the per-chat search limit.
const MsgRateLimited = "検索が多すぎるみたい。少し待ってからもう一度試してネ"

// Event processing outcomes recorded in metrics.
const (
	statusSuccess     = "success"
	statusIgnored     = "ignored"
	statusRateLimited = "rate_limited"
	statusError       = "error"
)

// ProcessorConfig holds dependencies for creating a Processor.
type ProcessorConfig struct {
	Handler     Handler
	ChatLimiter *ratelimit.KeyedLimiter // Optional; nil disables the per-chat limit
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
	BotConfig   *config.BotConfig
}

// Processor dispatches events to the Handler. It normalizes user input,
// enforces the per-chat limit, bounds each event with a timeout and turns
// handler panics into errors.
type Processor struct {
	handler     Handler
	chatLimiter *ratelimit.KeyedLimiter
	logger      *logger.Logger
	metrics     *metrics.Metrics

	webhookTimeout      time.Duration
	maxKeywordLength    int
	maxPostbackDataSize int
}

// NewProcessor creates a Processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	p := &Processor{
		handler:     cfg.Handler,
		chatLimiter: cfg.ChatLimiter,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
	if cfg.BotConfig != nil {
		p.webhookTimeout = cfg.BotConfig.WebhookTimeout
		p.maxKeywordLength = cfg.BotConfig.MaxKeywordLength
		p.maxPostbackDataSize = cfg.BotConfig.MaxPostbackDataSize
	}
	if p.webhookTimeout <= 0 {
		p.webhookTimeout = config.WebhookProcessing
	}
	return p
}

// Process runs one event through the handler and returns the reply messages.
// A nil slice with a nil error means the event is ignored.
func (p *Processor) Process(ctx context.Context, event Event) (msgs []messaging_api.MessageInterface, err error) {
	start := time.Now()
	meta := event.Meta()
	status := statusSuccess

	ctx = ctxutil.WithChatID(ctx, meta.ChatID)
	ctx = ctxutil.WithUserID(ctx, meta.UserID)
	ctx = ctxutil.WithEventID(ctx, meta.WebhookEventID)
	ctx, cancel := context.WithTimeout(ctx, p.webhookTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			sentry.CapturePanic(ctx, r, map[string]string{"module": p.handler.Name(), "event_type": event.Type()})
			p.logger.WithField("panic", r).
				WithField("event_type", event.Type()).
				ErrorContext(ctx, "Panic while processing event")
			msgs, err = nil, fmt.Errorf("panic while processing %s event: %v", event.Type(), r)
			status = statusError
		} else if status == statusSuccess && len(msgs) == 0 {
			status = statusIgnored
		}
		p.metrics.RecordWebhook(event.Type(), status, time.Since(start).Seconds())
	}()

	switch e := event.(type) {
	case TextEvent:
		text := NormalizeKeyword(e.Text, p.maxKeywordLength)
		if text == "" {
			return nil, nil
		}
		if p.handler.IsSearchText(text) && !p.allowChat(meta) {
			status = statusRateLimited
			return p.rateLimitedReply(ctx, meta), nil
		}
		return p.handler.HandleText(ctx, text), nil

	case LocationEvent:
		if !validCoordinates(e.Latitude, e.Longitude) {
			p.logger.WithField("lat", e.Latitude).
				WithField("lng", e.Longitude).
				WarnContext(ctx, "Ignoring location with invalid coordinates")
			return nil, nil
		}
		return p.handler.HandleLocation(ctx, e.Latitude, e.Longitude), nil

	case PostbackEvent:
		data := strings.TrimSpace(e.Data)
		if data == "" {
			return nil, nil
		}
		if p.maxPostbackDataSize > 0 && len(data) > p.maxPostbackDataSize {
			p.logger.WithField("size", len(data)).
				WarnContext(ctx, "Ignoring oversized postback data")
			return nil, nil
		}
		if !p.allowChat(meta) {
			status = statusRateLimited
			return p.rateLimitedReply(ctx, meta), nil
		}
		return p.handler.HandlePostback(ctx, data), nil

	case FollowEvent:
		return p.handler.HandleFollow(ctx), nil
	}

	return nil, nil
}

func (p *Processor) allowChat(meta EventMeta) bool {
	if p.chatLimiter == nil {
		return true
	}
	return p.chatLimiter.Allow(meta.ChatID)
}

// Groups and rooms are dropped silently to keep the bot from spamming them.
func (p *Processor) rateLimitedReply(ctx context.Context, meta EventMeta) []messaging_api.MessageInterface {
	p.logger.WithField("personal", meta.Personal).
		InfoContext(ctx, "Chat search limit exceeded")
	if !meta.Personal {
		return nil
	}
	return []messaging_api.MessageInterface{lineutil.NewTextMessage(MsgRateLimited)}
}

func validCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
