package bot

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/gourmet-linebot-go/internal/config"
	"github.com/garyellow/gourmet-linebot-go/internal/ctxutil"
	"github.com/garyellow/gourmet-linebot-go/internal/lineutil"
	"github.com/garyellow/gourmet-linebot-go/internal/logger"
	"github.com/garyellow/gourmet-linebot-go/internal/metrics"
	"github.com/garyellow/gourmet-linebot-go/internal/ratelimit"
)

type call struct {
	kind   string
	text   string
	lat    float64
	lng    float64
	chatID string
}

type fakeHandler struct {
	mu    sync.Mutex
	calls []call
	panic bool
}

func (f *fakeHandler) Name() string { return "fake" }

// Texts starting with "menu" stand in for prompts that never search.
func (f *fakeHandler) IsSearchText(text string) bool { return !strings.HasPrefix(text, "menu") }

func (f *fakeHandler) record(ctx context.Context, c call) []messaging_api.MessageInterface {
	if f.panic {
		panic("boom")
	}
	c.chatID = ctxutil.GetChatID(ctx)
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	return []messaging_api.MessageInterface{lineutil.NewTextMessage(c.kind)}
}

func (f *fakeHandler) HandleText(ctx context.Context, text string) []messaging_api.MessageInterface {
	return f.record(ctx, call{kind: "text", text: text})
}

func (f *fakeHandler) HandleLocation(ctx context.Context, lat, lng float64) []messaging_api.MessageInterface {
	return f.record(ctx, call{kind: "location", lat: lat, lng: lng})
}

func (f *fakeHandler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	return f.record(ctx, call{kind: "postback", text: data})
}

func (f *fakeHandler) HandleFollow(ctx context.Context) []messaging_api.MessageInterface {
	return f.record(ctx, call{kind: "follow"})
}

func (f *fakeHandler) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func newTestProcessor(t *testing.T, h Handler, limiter *ratelimit.KeyedLimiter) (*Processor, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	p := NewProcessor(ProcessorConfig{
		Handler:     h,
		ChatLimiter: limiter,
		Logger:      logger.NewWithWriter("error", io.Discard),
		Metrics:     m,
		BotConfig: &config.BotConfig{
			WebhookTimeout:      5 * time.Second,
			MaxKeywordLength:    10,
			MaxPostbackDataSize: 300,
		},
	})
	return p, m
}

func userMeta(id string) EventMeta {
	return EventMeta{ReplyToken: "reply-token", ChatID: id, UserID: id, Personal: true}
}

func groupMeta(id string) EventMeta {
	return EventMeta{ReplyToken: "reply-token", ChatID: id, UserID: "U1"}
}

func firstText(t *testing.T, msgs []messaging_api.MessageInterface) string {
	t.Helper()
	require.NotEmpty(t, msgs)
	msg, ok := msgs[0].(*messaging_api.TextMessage)
	require.True(t, ok, "first message is %T", msgs[0])
	return msg.Text
}

func TestProcessor_Text(t *testing.T) {
	t.Parallel()
	h := &fakeHandler{}
	p, m := newTestProcessor(t, h, nil)

	msgs, err := p.Process(context.Background(), TextEvent{EventMeta: userMeta("U1"), Text: "  ｐｉｚｚａ   shinjuku station "})
	require.NoError(t, err)
	assert.Equal(t, "text", firstText(t, msgs))

	calls := h.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "pizza shin", calls[0].text, "normalized and cut to 10 runes")
	assert.Equal(t, "U1", calls[0].chatID)
	assert.InDelta(t, 1, testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues(EventTypeText, statusSuccess)), 0)
}

func TestProcessor_BlankTextIgnored(t *testing.T) {
	t.Parallel()
	h := &fakeHandler{}
	p, m := newTestProcessor(t, h, nil)

	msgs, err := p.Process(context.Background(), TextEvent{EventMeta: userMeta("U1"), Text: " 　 "})
	require.NoError(t, err)
	assert.Nil(t, msgs)
	assert.Empty(t, h.Calls())
	assert.InDelta(t, 1, testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues(EventTypeText, statusIgnored)), 0)
}

func TestProcessor_Location(t *testing.T) {
	t.Parallel()
	h := &fakeHandler{}
	p, _ := newTestProcessor(t, h, nil)

	msgs, err := p.Process(context.Background(), LocationEvent{EventMeta: userMeta("U1"), Latitude: 35.68, Longitude: 139.76})
	require.NoError(t, err)
	assert.Equal(t, "location", firstText(t, msgs))
	require.Len(t, h.Calls(), 1)
	assert.InDelta(t, 35.68, h.Calls()[0].lat, 1e-9)
	assert.InDelta(t, 139.76, h.Calls()[0].lng, 1e-9)

	msgs, err = p.Process(context.Background(), LocationEvent{EventMeta: userMeta("U1"), Latitude: 95, Longitude: 0})
	require.NoError(t, err)
	assert.Nil(t, msgs)
	assert.Len(t, h.Calls(), 1)
}

func TestProcessor_Postback(t *testing.T) {
	t.Parallel()
	h := &fakeHandler{}
	p, _ := newTestProcessor(t, h, nil)

	msgs, err := p.Process(context.Background(), PostbackEvent{EventMeta: userMeta("U1"), Data: " action=genre_search "})
	require.NoError(t, err)
	assert.Equal(t, "postback", firstText(t, msgs))
	require.Len(t, h.Calls(), 1)
	assert.Equal(t, "action=genre_search", h.Calls()[0].text)

	oversized := make([]byte, 301)
	for i := range oversized {
		oversized[i] = 'a'
	}
	msgs, err = p.Process(context.Background(), PostbackEvent{EventMeta: userMeta("U1"), Data: string(oversized)})
	require.NoError(t, err)
	assert.Nil(t, msgs)

	msgs, err = p.Process(context.Background(), PostbackEvent{EventMeta: userMeta("U1"), Data: ""})
	require.NoError(t, err)
	assert.Nil(t, msgs)
	assert.Len(t, h.Calls(), 1)
}

func TestProcessor_Follow(t *testing.T) {
	t.Parallel()
	h := &fakeHandler{}
	p, _ := newTestProcessor(t, h, nil)

	msgs, err := p.Process(context.Background(), FollowEvent{EventMeta: userMeta("U1")})
	require.NoError(t, err)
	assert.Equal(t, "follow", firstText(t, msgs))
}

func TestProcessor_ChatLimit(t *testing.T) {
	t.Parallel()
	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{Name: "chat", Burst: 1, RefillRate: 0.0001})
	t.Cleanup(limiter.Stop)

	h := &fakeHandler{}
	p, m := newTestProcessor(t, h, limiter)
	ctx := context.Background()

	t.Run("personal chat is told", func(t *testing.T) {
		_, err := p.Process(ctx, TextEvent{EventMeta: userMeta("U1"), Text: "pizza"})
		require.NoError(t, err)

		msgs, err := p.Process(ctx, PostbackEvent{EventMeta: userMeta("U1"), Data: "action=genre_search"})
		require.NoError(t, err)
		assert.Equal(t, MsgRateLimited, firstText(t, msgs))
	})

	t.Run("group is dropped silently", func(t *testing.T) {
		_, err := p.Process(ctx, TextEvent{EventMeta: groupMeta("G1"), Text: "pizza"})
		require.NoError(t, err)

		msgs, err := p.Process(ctx, TextEvent{EventMeta: groupMeta("G1"), Text: "ramen"})
		require.NoError(t, err)
		assert.Nil(t, msgs)
	})

	t.Run("location and follow are not limited", func(t *testing.T) {
		msgs, err := p.Process(ctx, LocationEvent{EventMeta: userMeta("U1"), Latitude: 35, Longitude: 139})
		require.NoError(t, err)
		assert.Equal(t, "location", firstText(t, msgs))

		msgs, err = p.Process(ctx, FollowEvent{EventMeta: userMeta("U1")})
		require.NoError(t, err)
		assert.Equal(t, "follow", firstText(t, msgs))
	})

	assert.Len(t, h.Calls(), 4)
	assert.InDelta(t, 2, testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues(EventTypeText, statusRateLimited))+
		testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues(EventTypePostback, statusRateLimited)), 0)
}

func TestProcessor_PromptTextSkipsChatLimit(t *testing.T) {
	t.Parallel()
	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{Name: "chat", Burst: 1, RefillRate: 0.0001})
	t.Cleanup(limiter.Stop)

	h := &fakeHandler{}
	p, m := newTestProcessor(t, h, limiter)
	ctx := context.Background()

	for _, text := range []string{"menu", "menu", "pizza"} {
		msgs, err := p.Process(ctx, TextEvent{EventMeta: userMeta("U1"), Text: text})
		require.NoError(t, err)
		assert.Equal(t, "text", firstText(t, msgs), "text %q", text)
	}

	msgs, err := p.Process(ctx, TextEvent{EventMeta: userMeta("U1"), Text: "ramen"})
	require.NoError(t, err)
	assert.Equal(t, MsgRateLimited, firstText(t, msgs))

	assert.Len(t, h.Calls(), 3)
	assert.InDelta(t, 1, testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues(EventTypeText, statusRateLimited)), 0)
}

func TestProcessor_Panic(t *testing.T) {
	t.Parallel()
	h := &fakeHandler{panic: true}
	p, m := newTestProcessor(t, h, nil)

	msgs, err := p.Process(context.Background(), TextEvent{EventMeta: userMeta("U1"), Text: "pizza"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Nil(t, msgs)
	assert.InDelta(t, 1, testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues(EventTypeText, statusError)), 0)
}

func TestProcessor_DefaultTimeout(t *testing.T) {
	t.Parallel()
	p := NewProcessor(ProcessorConfig{Handler: &fakeHandler{}})
	assert.Equal(t, config.WebhookProcessing, p.webhookTimeout)
}
