// Package gourmet implements the restaurant search module for the LINE bot.
// It turns keywords, shared locations and postback tokens into HotPepper
// searches and renders the results as LINE messages.
package gourmet

import (
	"context"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	domerrors "github.com/garyellow/gourmet-linebot-go/internal/errors"
	"github.com/garyellow/gourmet-linebot-go/internal/hotpepper"
	"github.com/garyellow/gourmet-linebot-go/internal/lineutil"
	"github.com/garyellow/gourmet-linebot-go/internal/logger"
	"github.com/garyellow/gourmet-linebot-go/internal/sentry"
)

// ModuleName identifies this module in logs and error reports.
const ModuleName = "gourmet"

// Default search settings.
const (
	DefaultResultLimit = MaxResults
	DefaultSearchRange = 3
)

// Searcher is the subset of the HotPepper client the handler needs.
type Searcher interface {
	SearchRestaurants(ctx context.Context, params *hotpepper.Params, limit int) (*hotpepper.SearchResult, error)
	SearchGenres(ctx context.Context, shuffle bool, limit int) ([]hotpepper.Genre, error)
}

// Handler answers gourmet searches.
type Handler struct {
	searcher    Searcher
	logger      *logger.Logger
	resultLimit int
	searchRange int

	searchErr *domerrors.ErrorWrapper
	genresErr *domerrors.ErrorWrapper
}

// NewHandler creates a gourmet handler backed by searcher.
func NewHandler(searcher Searcher, log *logger.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		searcher:    searcher,
		logger:      log.WithModule(ModuleName),
		resultLimit: DefaultResultLimit,
		searchRange: DefaultSearchRange,
		searchErr:   domerrors.NewWrapper(ModuleName, "search_restaurants"),
		genresErr:   domerrors.NewWrapper(ModuleName, "search_genres"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name returns the module name
func (h *Handler) Name() string {
	return ModuleName
}

// IsSearchText reports whether text is searched as a keyword rather than
// answered with a prompt.
func (h *Handler) IsSearchText(text string) bool {
	switch text {
	case "", TriggerKeywordSearch, TriggerLocationSearch:
		return false
	}
	return true
}

// HandleText answers a normalized text message. The two trigger phrases
// return prompts; anything else is searched as a keyword.
func (h *Handler) HandleText(ctx context.Context, text string) []messaging_api.MessageInterface {
	switch text {
	case "":
		return nil
	case TriggerKeywordSearch:
		return []messaging_api.MessageInterface{KeywordPrompt()}
	case TriggerLocationSearch:
		return []messaging_api.MessageInterface{LocationPrompt()}
	}

	h.logger.WithField("keyword", text).DebugContext(ctx, "Keyword search")
	return h.search(ctx, hotpepper.KeywordParams(text))
}

// HandleLocation answers a shared location with the genre refinement confirm.
func (h *Handler) HandleLocation(_ context.Context, lat, lng float64) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{LocationFollowupConfirm(lat, lng, h.searchRange)}
}

// HandlePostback answers a postback produced by this module. Unknown or
// invalid data returns nil so the event is ignored.
func (h *Handler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	token, err := DecodeSearchToken(data)
	if err != nil {
		h.logger.WithError(err).DebugContext(ctx, "Ignoring postback")
		return nil
	}

	switch token.Action {
	case ActionSearchRestaurants:
		return h.search(ctx, token.Params())
	case ActionGenreSearch:
		return h.genres(ctx, token)
	}
	return nil
}

// HandleFollow greets a user who added the bot as a friend.
func (h *Handler) HandleFollow(context.Context) []messaging_api.MessageInterface {
	return WelcomeMessages()
}

func (h *Handler) search(ctx context.Context, params *hotpepper.Params) []messaging_api.MessageInterface {
	result, err := h.searcher.SearchRestaurants(ctx, params, h.resultLimit)
	if err != nil {
		return h.failed(ctx, h.searchErr.Wrap(err, MsgSearchFailed))
	}
	return ResultsMessages(result)
}

func (h *Handler) genres(ctx context.Context, token SearchToken) []messaging_api.MessageInterface {
	genres, err := h.searcher.SearchGenres(ctx, true, hotpepper.MaxGenres)
	if err != nil {
		return h.failed(ctx, h.genresErr.Wrap(err, MsgSearchFailed))
	}
	if len(genres) == 0 {
		return []messaging_api.MessageInterface{NoResultsMessage()}
	}
	return []messaging_api.MessageInterface{GenreQuickReply(genres, token.Lat, token.Lng, token.Range)}
}

func (h *Handler) failed(ctx context.Context, err error) []messaging_api.MessageInterface {
	h.logger.WithError(err).ErrorContext(ctx, "Search failed")
	sentry.CaptureError(ctx, err, map[string]string{"module": ModuleName})
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(domerrors.GetUserMessage(err, MsgSearchFailed)),
	}
}
