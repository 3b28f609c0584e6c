// Package stemmer implements the fixed, order-sensitive suffix-stripping
// cascade applied to query terms by the query tokenizer. The index
// builder does not call Stem: it reads pre-stemmed tokens, so the
// upstream stemming step must apply the same cascade or recall suffers.
package stemmer

import "strings"

// Stem applies the rule cascade to term and returns the stemmed form.
// Terms of length 2 or less are returned unchanged.
func Stem(term string) string {
	n := len(term)
	if n <= 2 {
		return term
	}

	switch {
	case n >= 6 && strings.HasSuffix(term, "ingly"):
		return term[:n-5]
	case n >= 5 && strings.HasSuffix(term, "edly"):
		return term[:n-4]
	case n >= 4 && strings.HasSuffix(term, "ing"):
		return term[:n-3]
	case n >= 4 && strings.HasSuffix(term, "ed"):
		return term[:n-2]
	case n >= 5 && strings.HasSuffix(term, "ies"):
		stem := term[:n-2]
		return stem[:len(stem)-1] + "y"
	case n >= 4 && strings.HasSuffix(term, "es"):
		return term[:n-2]
	case n >= 4 && strings.HasSuffix(term, "ly"):
		return term[:n-2]
	case n >= 4 && term[n-1] == 's':
		return term[:n-1]
	default:
		return term
	}
}
