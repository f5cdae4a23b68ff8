// Package lineutil provides utility functions for building LINE messages and actions.
// Builders clamp their inputs to the Messaging API limits so callers can pass
// upstream data without pre-validating it.
package lineutil

import (
	"unicode/utf8"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// QuickReplyItem represents an item in a quick reply.
type QuickReplyItem struct {
	ImageURL string
	Action   messaging_api.ActionInterface
}

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// NewTextMessage creates a simple text message without sender information.
// LINE API limits: max 5000 characters per text message
func NewTextMessage(text string) *messaging_api.TextMessage {
	return &messaging_api.TextMessage{
		Text: TruncateRunes(text, MaxTextMessageLength),
	}
}

// NewTextMessageWithQuickReply creates a text message with quick reply buttons attached.
func NewTextMessageWithQuickReply(text string, items []QuickReplyItem) *messaging_api.TextMessage {
	msg := NewTextMessage(text)
	if len(items) > 0 {
		msg.QuickReply = NewQuickReply(items)
	}
	return msg
}

// NewButtonsTemplate creates a buttons template message.
// LINE API limits: max 4 actions, text max 160 chars (no image) or 60 chars (with image)
func NewButtonsTemplate(altText, title, text string, actions []Action) *messaging_api.TemplateMessage {
	return NewButtonsTemplateWithImage(altText, title, text, "", actions)
}

// NewButtonsTemplateWithImage creates a buttons template message with an optional thumbnail image.
func NewButtonsTemplateWithImage(altText, title, text, thumbnailImageURL string, actions []Action) *messaging_api.TemplateMessage {
	if len(actions) > MaxTemplateActionCount {
		actions = actions[:MaxTemplateActionCount]
	}

	maxTextLen := MaxTemplateTextNoImage
	if thumbnailImageURL != "" {
		maxTextLen = MaxTemplateTextWithImage
	}

	return &messaging_api.TemplateMessage{
		AltText: TruncateRunes(altText, MaxAltTextLength),
		Template: &messaging_api.ButtonsTemplate{
			Title:             TruncateRunes(title, MaxTemplateTitleLength),
			Text:              TruncateRunes(text, maxTextLen),
			ThumbnailImageUrl: thumbnailImageURL,
			Actions:           actions,
		},
	}
}

// NewConfirmTemplate creates a confirmation template with Yes/No buttons.
func NewConfirmTemplate(altText, text string, yesAction, noAction Action) *messaging_api.TemplateMessage {
	return &messaging_api.TemplateMessage{
		AltText: TruncateRunes(altText, MaxAltTextLength),
		Template: &messaging_api.ConfirmTemplate{
			Text:    TruncateRunes(text, MaxConfirmTextLength),
			Actions: []messaging_api.ActionInterface{yesAction, noAction},
		},
	}
}

// NewQuickReply creates a quick reply message component.
// LINE API limits: max 13 items
func NewQuickReply(items []QuickReplyItem) *messaging_api.QuickReply {
	if len(items) > MaxQuickReplyItemCount {
		items = items[:MaxQuickReplyItemCount]
	}

	quickReplyItems := make([]messaging_api.QuickReplyItem, len(items))
	for i, item := range items {
		quickReplyItems[i] = messaging_api.QuickReplyItem{
			ImageUrl: item.ImageURL,
			Action:   item.Action,
		}
	}

	return &messaging_api.QuickReply{
		Items: quickReplyItems,
	}
}

// NewMessageAction creates a message action that sends text when clicked.
func NewMessageAction(label, text string) Action {
	return &messaging_api.MessageAction{
		Label: TruncateRunes(label, MaxActionLabel),
		Text:  text,
	}
}

// NewPostbackActionWithDisplayText creates a postback action that also posts
// displayText into the chat as the user's message.
func NewPostbackActionWithDisplayText(label, displayText, data string) Action {
	return &messaging_api.PostbackAction{
		Label:       TruncateRunes(label, MaxActionLabel),
		DisplayText: displayText,
		Data:        data,
	}
}

// NewURIAction creates a URI action that opens a URL when clicked.
func NewURIAction(label, uri string) Action {
	return &messaging_api.UriAction{
		Label: TruncateRunes(label, MaxActionLabel),
		Uri:   uri,
	}
}

// NewFlexMessage creates a flex message with the given alt text and flex container.
func NewFlexMessage(altText string, contents messaging_api.FlexContainerInterface) *messaging_api.FlexMessage {
	return &messaging_api.FlexMessage{
		AltText:  TruncateRunes(altText, MaxAltTextLength),
		Contents: contents,
	}
}

// TruncateRunes shortens text to at most maxRunes runes, ending with "..."
// when truncated and there is room for it.
func TruncateRunes(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(text)
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
