package client

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FilterLocal keeps the already fetched items whose fields contain every word of query,
// ignoring case and accents ("matematica" matches "Matemática").
func FilterLocal[T any](items []T, query string, fields func(T) []string) []T {
	terms := strings.Fields(fold(query))
	if len(terms) == 0 {
		return items
	}

	var matched []T
	for _, item := range items {
		haystack := fold(strings.Join(fields(item), " "))
		ok := true
		for _, term := range terms {
			if !strings.Contains(haystack, term) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, item)
		}
	}
	return matched
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
