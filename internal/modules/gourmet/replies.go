package gourmet

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/gourmet-linebot-go/internal/hotpepper"
	"github.com/garyellow/gourmet-linebot-go/internal/lineutil"
)

// MaxResults is the most shops shown in one results carousel.
const MaxResults = 10

// NoResultsMessage is sent when a search returns no shops.
func NoResultsMessage() messaging_api.MessageInterface {
	return lineutil.NewTextMessage(MsgNoResults)
}

// ResultsSummary returns the "N件見つかりました" headline.
func ResultsSummary(n int) messaging_api.MessageInterface {
	return lineutil.NewTextMessage(fmt.Sprintf(MsgResultsSummary, n))
}

// ResultsCarousel renders up to MaxResults shops, in order, as one carousel.
func ResultsCarousel(shops []hotpepper.Shop) *messaging_api.FlexMessage {
	if len(shops) > MaxResults {
		shops = shops[:MaxResults]
	}
	bubbles := make([]messaging_api.FlexBubble, 0, len(shops))
	for i := range shops {
		bubbles = append(bubbles, *ShopBubble(&shops[i]).FlexBubble)
	}
	return lineutil.NewFlexMessage(MsgResultsAltText, lineutil.NewFlexCarousel(bubbles))
}

// ResultsMessages builds the reply for a search result: a single no-results
// text, or a summary followed by the carousel. The summary counts the shops
// actually shown.
func ResultsMessages(result *hotpepper.SearchResult) []messaging_api.MessageInterface {
	n := min(result.Count(), MaxResults)
	if n == 0 {
		return []messaging_api.MessageInterface{NoResultsMessage()}
	}
	return []messaging_api.MessageInterface{
		ResultsSummary(n),
		ResultsCarousel(result.Shops),
	}
}

// KeywordPrompt asks the user to type a keyword.
func KeywordPrompt() messaging_api.MessageInterface {
	return lineutil.NewTextMessage(MsgKeywordPrompt)
}

// LocationPrompt offers a button that opens LINE's location picker.
func LocationPrompt() messaging_api.MessageInterface {
	return lineutil.NewButtonsTemplate(
		MsgLocationPromptAlt,
		"",
		MsgLocationPromptText,
		[]lineutil.Action{lineutil.NewURIAction(MsgLocationPromptButton, locationPickerURI)},
	)
}

// GenreQuickReply lists genres as quick-reply buttons. Choosing one searches
// around (lat, lng) within rng, filtered by that genre.
func GenreQuickReply(genres []hotpepper.Genre, lat, lng float64, rng int) messaging_api.MessageInterface {
	if len(genres) > hotpepper.MaxGenres {
		genres = genres[:hotpepper.MaxGenres]
	}
	items := make([]lineutil.QuickReplyItem, 0, len(genres))
	for _, g := range genres {
		if g.Code == "" || g.Name == "" {
			continue
		}
		data := SearchToken{
			Action: ActionSearchRestaurants,
			Lat:    lat,
			Lng:    lng,
			Range:  rng,
			Genre:  g.Code,
		}.Encode()
		items = append(items, lineutil.QuickReplyItem{
			Action: lineutil.NewPostbackActionWithDisplayText(g.Name, g.Name, data),
		})
	}
	return lineutil.NewTextMessageWithQuickReply(MsgGenrePrompt, items)
}

// LocationFollowupConfirm asks whether to narrow a location search by genre.
// "はい" leads to the genre list, "いいえ" searches right away.
func LocationFollowupConfirm(lat, lng float64, rng int) messaging_api.MessageInterface {
	yes := SearchToken{Action: ActionGenreSearch, Lat: lat, Lng: lng, Range: rng}
	no := SearchToken{Action: ActionSearchRestaurants, Lat: lat, Lng: lng, Range: rng}
	return lineutil.NewConfirmTemplate(
		MsgRefineAltText,
		MsgRefineText,
		lineutil.NewPostbackActionWithDisplayText(MsgRefineYes, MsgRefineYes, yes.Encode()),
		lineutil.NewPostbackActionWithDisplayText(MsgRefineNo, MsgRefineNo, no.Encode()),
	)
}

// SearchFailedMessage apologizes for an upstream search failure.
func SearchFailedMessage() messaging_api.MessageInterface {
	return lineutil.NewTextMessage(MsgSearchFailed)
}

// WelcomeMessages greets a new friend and offers both search modes.
func WelcomeMessages() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessage(MsgWelcome),
		lineutil.NewTextMessageWithQuickReply(MsgWelcomeHint, []lineutil.QuickReplyItem{
			{Action: lineutil.NewMessageAction(TriggerKeywordSearch, TriggerKeywordSearch)},
			{Action: lineutil.NewMessageAction(TriggerLocationSearch, TriggerLocationSearch)},
		}),
	}
}
