package lineutil

// LINE API Character Limits (Rune count)
// References: https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // Text message max content length
	MaxAltTextLength     = 400  // Template/Flex message alt text length
	MaxPostbackData      = 300  // Postback action data length
	MaxActionLabel       = 20   // Action label length

	// Template Message Limits
	MaxTemplateTitleLength   = 40  // Buttons template title
	MaxTemplateTextNoImage   = 160 // Buttons template text without image
	MaxTemplateTextWithImage = 60  // Buttons template text with image
	MaxConfirmTextLength     = 240 // Confirm template text
	MaxTemplateActionCount   = 4   // Max actions per buttons template

	// Flex Message Limits
	MaxFlexCarouselBubbleCount = 12 // Max bubbles in a Flex carousel

	// Quick Reply Limits
	MaxQuickReplyItemCount = 13 // Max items in a quick reply (labels follow MaxActionLabel)

	// Reply Limits
	MaxMessagesPerReply = 5 // Max message objects per reply call
)
