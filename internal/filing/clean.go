// Package filing reads filing documents and the index that lists them.
package filing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func newFolder() transform.Transformer {
	return transform.Chain(
		runes.Remove(runes.In(unicode.C)),
		norm.NFKD,
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
		norm.NFKC,
	)
}

// CleanText trims the text, collapses whitespace runs to single spaces, drops
// control and format characters, and folds the rest to ASCII.
func CleanText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}
	out, _, err := transform.String(newFolder(), text)
	if err != nil {
		return text
	}
	return out
}
