package gourmet

// Message constants for the gourmet module
// Centralized management of user-facing messages
const (
	// Trigger phrases sent from the rich menu
	TriggerKeywordSearch  = "キーワード検索"
	TriggerLocationSearch = "位置情報検索"

	// Search results
	MsgNoResults      = "ごめんなさい。見つかりませんでした(._.)"
	MsgResultsSummary = "%d件見つかりました"
	MsgResultsAltText = "検索結果"

	// Input prompts
	MsgKeywordPrompt        = "キーワードを入力してネ"
	MsgLocationPromptAlt    = "位置情報送信ボタン"
	MsgLocationPromptText   = "位置情報を送信してネ"
	MsgLocationPromptButton = "送信する"
	MsgGenrePrompt          = "ジャンルを選んでネ"

	// Genre refinement confirm
	MsgRefineAltText = "絞り込み検索"
	MsgRefineText    = "ジャンルで絞り込みますか？"
	MsgRefineYes     = "はい"
	MsgRefineNo      = "いいえ"

	// Welcome
	MsgWelcome     = "友だち追加ありがとう！お店探しをお手伝いするネ"
	MsgWelcomeHint = "「キーワード検索」か「位置情報検索」を選んでネ"

	// Errors
	MsgSearchFailed = "ごめんなさい。いまお店を検索できません。しばらくしてからもう一度試してネ"
)

// Shop card labels and links
const (
	labelGenre  = "Genre"
	labelOpen   = "Open"
	labelPlace  = "Place"
	labelURL    = "URL"
	labelMap    = "マップで見る"
	placeholder = "-"

	// HotPepper top page, used when a shop has no page of its own
	fallbackSiteURL   = "https://www.hotpepper.jp/"
	mapsSearchURL     = "https://www.google.com/maps/search/?api=1&query="
	locationPickerURI = "https://line.me/R/nv/location/"
)
