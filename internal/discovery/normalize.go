package discovery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var apostrophes = strings.NewReplacer(
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
	"`", "'",
	"ʼ", "'", // modifier letter apostrophe
	"“", `"`,
	"”", `"`,
)

// Normalize reduces an artist name to the form used for comparison:
// lowercase, diacritics folded, quotes unified, only [a-z0-9 '&-] kept,
// single spaces, trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(name string) string {
	s := strings.ToLower(name)
	s = foldDiacritics(s)
	s = apostrophes.Replace(s)
	s = collapseSpaces(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isNameRune(r) {
			b.WriteRune(r)
		}
	}

	// Stripping can leave adjacent spaces ("a . b"), so collapse again.
	return strings.TrimSpace(collapseSpaces(b.String()))
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '\'', r == '&', r == '-':
		return true
	}
	return false
}

// collapseSpaces replaces every run of Unicode whitespace with one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// foldDiacritics strips combining marks: "Beyoncé" becomes "Beyonce".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
