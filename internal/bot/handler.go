package bot

import (
	"context"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Handler produces the reply for each kind of event. Returning no messages
// means the event gets no reply.
type Handler interface {
	// Name identifies the handler in logs and error reports.
	Name() string

	// IsSearchText reports whether HandleText would call the search API for
	// text. Only such texts count against the per-chat limit.
	IsSearchText(text string) bool

	HandleText(ctx context.Context, text string) []messaging_api.MessageInterface
	HandleLocation(ctx context.Context, lat, lng float64) []messaging_api.MessageInterface
	HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface
	HandleFollow(ctx context.Context) []messaging_api.MessageInterface
}
