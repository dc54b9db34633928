package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes characters and drops combining marks so that
// accented titles compare equal to their plain-ASCII renderings.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle reduces a movie title to a canonical comparison form:
// diacritics folded, lowercased, punctuation and whitespace removed.
// "Amélie: The Re-Release" and "amelie the rerelease" normalize identically.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	if folded, _, err := transform.String(diacriticStripper, title); err == nil {
		title = folded
	}
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
