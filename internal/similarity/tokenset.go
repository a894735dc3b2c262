// Package similarity implements the string scorers used for name matching.
package similarity

import fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

// TokenSetRatio compares the word sets of a and b after ASCII folding,
// lowercasing and punctuation removal. A name whose words are a subset of
// the other's scores 100.
func TokenSetRatio(a, b string) int {
	return fuzzy.TokenSetRatio(a, b, true, true)
}
