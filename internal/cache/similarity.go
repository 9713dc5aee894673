package cache

import (
	"strings"
	"unicode"
)

// tokenize lower-cases s and splits it into a word set on any run of
// non-letter, non-digit runes. Punctuation never reaches the set, so
// "France?" and "france" produce the same token.
func tokenize(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// jaccard returns |a ∩ b| / |a ∪ b|. An empty union scores 0. The result is
// symmetric, bounded in [0,1], and grows with the shared-token proportion.
func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
