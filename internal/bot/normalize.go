package bot

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// NormalizeKeyword prepares user text for matching and searching:
// full-width ASCII and half-width katakana are folded to their canonical
// width, runs of whitespace collapse to one space, and the result is cut
// to maxRunes runes (maxRunes <= 0 means no limit).
func NormalizeKeyword(text string, maxRunes int) string {
	text = norm.NFC.String(width.Fold.String(text))
	text = strings.Join(strings.Fields(text), " ")
	if maxRunes > 0 && utf8.RuneCountInString(text) > maxRunes {
		text = strings.TrimSpace(string([]rune(text)[:maxRunes]))
	}
	return text
}
