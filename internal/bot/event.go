package bot

import "github.com/line/line-bot-sdk-go/v8/linebot/webhook"

// Event type names used in logs and metrics.
const (
	EventTypeText     = "text"
	EventTypeLocation = "location"
	EventTypePostback = "postback"
	EventTypeFollow   = "follow"
)

// EventMeta is what every handled event carries besides its payload.
type EventMeta struct {
	ReplyToken     string
	ChatID         string // user, group or room ID, whichever the event came from
	UserID         string
	WebhookEventID string
	Redelivery     bool
	Timestamp      int64 // milliseconds since epoch
	Personal       bool  // 1:1 chat with the bot
}

// Meta returns the event metadata.
func (m EventMeta) Meta() EventMeta {
	return m
}

// Event is a decoded webhook event the bot reacts to. The concrete types are
// TextEvent, LocationEvent, PostbackEvent and FollowEvent.
type Event interface {
	Meta() EventMeta
	Type() string
	sealed()
}

// TextEvent is a text message.
type TextEvent struct {
	EventMeta
	Text string
}

// LocationEvent is a shared location.
type LocationEvent struct {
	EventMeta
	Latitude  float64
	Longitude float64
	Title     string
	Address   string
}

// PostbackEvent is a postback action tapped by the user.
type PostbackEvent struct {
	EventMeta
	Data string
}

// FollowEvent is sent when a user adds the bot as a friend or unblocks it.
type FollowEvent struct {
	EventMeta
}

func (TextEvent) Type() string     { return EventTypeText }
func (LocationEvent) Type() string { return EventTypeLocation }
func (PostbackEvent) Type() string { return EventTypePostback }
func (FollowEvent) Type() string   { return EventTypeFollow }

func (TextEvent) sealed()     {}
func (LocationEvent) sealed() {}
func (PostbackEvent) sealed() {}
func (FollowEvent) sealed()   {}

// DecodeEvent converts a LINE webhook event into an Event.
// Events and message types the bot does not handle return (nil, false).
func DecodeEvent(event webhook.EventInterface) (Event, bool) {
	switch e := event.(type) {
	case webhook.MessageEvent:
		meta := newMeta(e.Source, e.ReplyToken, e.WebhookEventId, e.Timestamp, e.DeliveryContext)
		switch m := e.Message.(type) {
		case webhook.TextMessageContent:
			return TextEvent{EventMeta: meta, Text: m.Text}, true
		case webhook.LocationMessageContent:
			return LocationEvent{
				EventMeta: meta,
				Latitude:  m.Latitude,
				Longitude: m.Longitude,
				Title:     m.Title,
				Address:   m.Address,
			}, true
		}
	case webhook.PostbackEvent:
		if e.Postback == nil {
			return nil, false
		}
		meta := newMeta(e.Source, e.ReplyToken, e.WebhookEventId, e.Timestamp, e.DeliveryContext)
		return PostbackEvent{EventMeta: meta, Data: e.Postback.Data}, true
	case webhook.FollowEvent:
		meta := newMeta(e.Source, e.ReplyToken, e.WebhookEventId, e.Timestamp, e.DeliveryContext)
		return FollowEvent{EventMeta: meta}, true
	}
	return nil, false
}

func newMeta(source webhook.SourceInterface, replyToken, eventID string, timestamp int64, dc *webhook.DeliveryContext) EventMeta {
	meta := EventMeta{
		ReplyToken:     replyToken,
		WebhookEventID: eventID,
		Timestamp:      timestamp,
	}
	if dc != nil {
		meta.Redelivery = dc.IsRedelivery
	}

	switch s := source.(type) {
	case webhook.UserSource:
		meta.ChatID, meta.UserID, meta.Personal = s.UserId, s.UserId, true
	case webhook.GroupSource:
		meta.ChatID, meta.UserID = s.GroupId, s.UserId
	case webhook.RoomSource:
		meta.ChatID, meta.UserID = s.RoomId, s.UserId
	}
	return meta
}
