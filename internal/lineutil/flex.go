package lineutil

import (
	"math"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// FlexBubble wrapper
type FlexBubble struct {
	*messaging_api.FlexBubble
}

// NewFlexBubble creates a new Flex Bubble container
// Note: header, body, footer must be FlexBox or nil
func NewFlexBubble(header *FlexBox, hero messaging_api.FlexComponentInterface, body *FlexBox, footer *FlexBox) *FlexBubble {
	bubble := &messaging_api.FlexBubble{}
	if header != nil {
		bubble.Header = header.FlexBox
	}
	if hero != nil {
		bubble.Hero = hero
	}
	if body != nil {
		bubble.Body = body.FlexBox
	}
	if footer != nil {
		bubble.Footer = footer.FlexBox
	}
	return &FlexBubble{bubble}
}

// WithSize sets the bubble size (nano/micro/kilo/mega/giga).
func (b *FlexBubble) WithSize(size string) *FlexBubble {
	b.Size = messaging_api.FlexBubbleSIZE(size)
	return b
}

// NewFlexCarousel creates a Flex Carousel from a slice of bubbles.
// Bubbles beyond the LINE API limit are dropped.
func NewFlexCarousel(bubbles []messaging_api.FlexBubble) *messaging_api.FlexCarousel {
	if len(bubbles) > MaxFlexCarouselBubbleCount {
		bubbles = bubbles[:MaxFlexCarouselBubbleCount]
	}
	return &messaging_api.FlexCarousel{
		Contents: bubbles,
	}
}

// FlexBox wrapper for messaging_api.FlexBox with fluent API.
type FlexBox struct {
	*messaging_api.FlexBox
}

// NewFlexBox creates a new FlexBox with the specified layout and contents.
func NewFlexBox(layout string, contents ...messaging_api.FlexComponentInterface) *FlexBox {
	return &FlexBox{&messaging_api.FlexBox{
		Layout:   messaging_api.FlexBoxLAYOUT(layout),
		Contents: contents,
	}}
}

// WithSpacing sets the spacing between components.
func (b *FlexBox) WithSpacing(spacing string) *FlexBox {
	b.Spacing = spacing
	return b
}

// WithMargin sets the margin of the box.
func (b *FlexBox) WithMargin(margin string) *FlexBox {
	b.Margin = margin
	return b
}

// WithPaddingTop sets the top padding of the box.
func (b *FlexBox) WithPaddingTop(padding string) *FlexBox {
	b.PaddingTop = padding
	return b
}

// FlexText wrapper for messaging_api.FlexText with fluent API.
type FlexText struct {
	*messaging_api.FlexText
}

// NewFlexText creates a new FlexText with the specified text.
func NewFlexText(text string) *FlexText {
	return &FlexText{&messaging_api.FlexText{
		Text: text,
	}}
}

// WithWeight sets the font weight (regular/bold).
func (t *FlexText) WithWeight(weight string) *FlexText {
	t.Weight = messaging_api.FlexTextWEIGHT(weight)
	return t
}

// WithSize sets the font size.
func (t *FlexText) WithSize(size string) *FlexText {
	t.Size = size
	return t
}

// WithColor sets the text color.
func (t *FlexText) WithColor(color string) *FlexText {
	t.Color = color
	return t
}

// WithWrap enables or disables text wrapping.
func (t *FlexText) WithWrap(wrap bool) *FlexText {
	t.Wrap = wrap
	return t
}

// WithFlex sets the flex factor for the text component.
func (t *FlexText) WithFlex(flex int) *FlexText {
	t.Flex = clampInt32(flex)
	return t
}

// WithMargin sets the margin of the text component.
func (t *FlexText) WithMargin(margin string) *FlexText {
	t.Margin = margin
	return t
}

// FlexButton wrapper for messaging_api.FlexButton with fluent API.
type FlexButton struct {
	*messaging_api.FlexButton
}

// NewFlexButton creates a new FlexButton with the specified action.
func NewFlexButton(action messaging_api.ActionInterface) *FlexButton {
	return &FlexButton{&messaging_api.FlexButton{
		Action: action,
	}}
}

// WithStyle sets the button style (link/primary/secondary).
func (b *FlexButton) WithStyle(style string) *FlexButton {
	b.Style = messaging_api.FlexButtonSTYLE(style)
	return b
}

// WithColor sets the button color.
func (b *FlexButton) WithColor(color string) *FlexButton {
	b.Color = color
	return b
}

// WithHeight sets the button height (sm/md).
func (b *FlexButton) WithHeight(height string) *FlexButton {
	b.Height = messaging_api.FlexButtonHEIGHT(height)
	return b
}

// FlexImage wrapper for messaging_api.FlexImage with fluent API.
type FlexImage struct {
	*messaging_api.FlexImage
}

// NewFlexImage creates a new FlexImage for the given URL.
func NewFlexImage(url string) *FlexImage {
	return &FlexImage{&messaging_api.FlexImage{
		Url: url,
	}}
}

// WithSize sets the image width (xxs..5xl, full, or px/% values).
func (i *FlexImage) WithSize(size string) *FlexImage {
	i.Size = size
	return i
}

// WithAspectRatio sets the aspect ratio as "width:height".
func (i *FlexImage) WithAspectRatio(ratio string) *FlexImage {
	i.AspectRatio = ratio
	return i
}

// WithAspectMode sets how the image fills its area (fit/cover).
func (i *FlexImage) WithAspectMode(mode string) *FlexImage {
	i.AspectMode = messaging_api.FlexImageASPECT_MODE(mode)
	return i
}

// NewLabelValueRow creates a horizontal row with a fixed-width label and a wrapping value.
//
//	┌──────┬──────────────────────────┐
//	│label │ value text with wrap     │
//	└──────┴──────────────────────────┘
func NewLabelValueRow(label, value string) *FlexBox {
	return NewFlexBox("horizontal",
		NewFlexText(label).WithColor(ColorLabel).WithSize("sm").WithFlex(1).FlexText,
		NewFlexText(value).WithColor(ColorValue).WithSize("sm").WithWrap(true).WithFlex(5).FlexText,
	)
}

func clampInt32(n int) int32 {
	if n < 0 {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}
