package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Messenger delivers replies through the LINE Messaging API.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, messages []messaging_api.MessageInterface) error
	ShowLoading(ctx context.Context, chatID string, seconds int32) error
}

// LineMessenger is the Messenger backed by the LINE SDK client.
// The SDK client keeps its context on the shared struct, so calls are bounded
// by the HTTP client timeout rather than ctx.
type LineMessenger struct {
	client *messaging_api.MessagingApiAPI
}

// NewLineMessenger creates a LineMessenger for the channel access token.
func NewLineMessenger(channelToken string, timeout time.Duration) (*LineMessenger, error) {
	client, err := messaging_api.NewMessagingApiAPI(
		channelToken,
		messaging_api.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}
	return &LineMessenger{client: client}, nil
}

// Reply sends messages with a reply token.
func (m *LineMessenger) Reply(_ context.Context, replyToken string, messages []messaging_api.MessageInterface) error {
	_, err := m.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	return err
}

// ShowLoading shows the loading animation in a 1:1 chat.
// LINE accepts 5 to 60 seconds in steps of 5.
func (m *LineMessenger) ShowLoading(_ context.Context, chatID string, seconds int32) error {
	_, err := m.client.ShowLoadingAnimation(&messaging_api.ShowLoadingAnimationRequest{
		ChatId:         chatID,
		LoadingSeconds: seconds,
	})
	return err
}
