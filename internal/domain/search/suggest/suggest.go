// Package suggest ranks candidate field values against partial user
// input, backing did-you-mean affordances when a refine filter matches
// nothing in the cache.
package suggest

import "github.com/sahilm/fuzzy"

// DefaultLimit caps suggestion lists when the caller does not.
const DefaultLimit = 5

// Rank orders candidates by fuzzy relevance to the input, best first,
// dropping candidates that do not match at all. Empty input returns
// the candidates unranked, capped at the limit.
func Rank(input string, candidates []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if input == "" {
		if len(candidates) > limit {
			return candidates[:limit:limit]
		}
		return candidates
	}

	matches := fuzzy.Find(input, candidates)
	if len(matches) == 0 {
		return nil
	}
	n := len(matches)
	if n > limit {
		n = limit
	}
	out := make([]string, 0, n)
	for _, m := range matches[:n] {
		out = append(out, m.Str)
	}
	return out
}
