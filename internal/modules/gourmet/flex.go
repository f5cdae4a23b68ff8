package gourmet

import (
	"net/url"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/gourmet-linebot-go/internal/hotpepper"
	"github.com/garyellow/gourmet-linebot-go/internal/lineutil"
)

// ShopBubble renders one shop as a mega bubble: photo, name, catch copy,
// genre/open/place rows and two link buttons.
// LINE rejects empty text components, so missing values show a placeholder.
func ShopBubble(shop *hotpepper.Shop) *lineutil.FlexBubble {
	var hero messaging_api.FlexComponentInterface
	if photo := shop.PhotoURL(); photo != "" {
		hero = lineutil.NewFlexImage(photo).
			WithSize("full").
			WithAspectMode("cover").
			WithAspectRatio("320:213").
			FlexImage
	}

	body := []messaging_api.FlexComponentInterface{
		lineutil.NewFlexText(orPlaceholder(shop.Name)).WithWeight("bold").WithSize("lg").WithWrap(true).FlexText,
	}
	if catch := shop.GenreCatch(); catch != "" {
		body = append(body, lineutil.NewFlexText(catch).
			WithColor(lineutil.ColorValue).
			WithSize("sm").
			WithWrap(true).
			WithFlex(5).
			WithMargin("md").
			FlexText)
	}
	body = append(body, lineutil.NewFlexBox("vertical",
		lineutil.NewLabelValueRow(labelGenre, orPlaceholder(shop.GenreLabel())).FlexBox,
		lineutil.NewLabelValueRow(labelOpen, orPlaceholder(shop.Open)).FlexBox,
		lineutil.NewLabelValueRow(labelPlace, orPlaceholder(shop.Address)).FlexBox,
	).WithSpacing("sm").WithPaddingTop(lineutil.SpacingL).FlexBox)

	footer := lineutil.NewFlexBox("horizontal",
		linkButton(labelURL, siteURL(shop)),
		linkButton(labelMap, MapURL(shop.Name)),
	).WithSpacing("sm")

	return lineutil.NewFlexBubble(nil, hero, lineutil.NewFlexBox("vertical", body...), footer).WithSize("mega")
}

// MapURL returns a Google Maps search link for a shop name.
func MapURL(name string) string {
	return mapsSearchURL + url.QueryEscape(name)
}

func siteURL(shop *hotpepper.Shop) string {
	if u := shop.SiteURL(); u != "" {
		return u
	}
	return fallbackSiteURL
}

func linkButton(label, uri string) *messaging_api.FlexButton {
	return lineutil.NewFlexButton(lineutil.NewURIAction(label, uri)).
		WithStyle("link").
		WithHeight("sm").
		WithColor(lineutil.ColorLinkButton).
		FlexButton
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
