package webhook

import (
	"github.com/garyellow/gourmet-linebot-go/internal/ratelimit"
)

// HandlerOption is a functional option for configuring Handler.
type HandlerOption func(*Handler)

// WithReplyLimiter replaces the global reply limiter built from BotConfig.
func WithReplyLimiter(limiter *ratelimit.Limiter) HandlerOption {
	return func(h *Handler) {
		h.replyLimiter = limiter
	}
}

// WithLoadingSeconds sets how long the loading animation runs.
// Values are rounded down to a multiple of 5 and clamped to 5-60.
func WithLoadingSeconds(seconds int32) HandlerOption {
	return func(h *Handler) {
		h.loadingSeconds = min(max(seconds-seconds%5, 5), 60)
	}
}

// WithoutLoadingAnimation disables the loading animation.
func WithoutLoadingAnimation() HandlerOption {
	return func(h *Handler) {
		h.loadingSeconds = 0
	}
}
