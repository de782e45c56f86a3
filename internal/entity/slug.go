package entity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
	// đ has no decomposition, so NFD leaves it intact
	strokeLetters = strings.NewReplacer("đ", "d", "Đ", "D")
)

// Slugify builds a URL-friendly slug from a campaign title.
// Diacritics are stripped first so "Áo thun" becomes "ao-thun".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}
	plain = strokeLetters.Replace(plain)

	slug := strings.ToLower(strings.TrimSpace(plain))
	slug = slugSeparators.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
