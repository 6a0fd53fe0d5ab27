package search

import (
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

// MaxSuggestions is how many breeds are suggested for a query.
const MaxSuggestions = 5

// minSimilarity is the lowest Jaro-Winkler similarity a fuzzy suggestion needs.
const minSimilarity = 0.75

type scoredBreed struct {
	breed      string
	similarity float64
}

// SuggestBreeds returns up to limit breeds for the query. Breeds containing
// the query (ignoring case) come first in catalog order, the remaining slots
// are filled with the most similar breeds by Jaro-Winkler distance so that
// typos still find something.
func SuggestBreeds(query string, breeds []string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}

	var out []string
	picked := map[string]struct{}{}
	for _, breed := range breeds {
		if len(out) >= limit {
			return out
		}
		if strings.Contains(strings.ToLower(breed), query) {
			out = append(out, breed)
			picked[breed] = struct{}{}
		}
	}

	var scored []scoredBreed
	for _, breed := range breeds {
		if _, ok := picked[breed]; ok {
			continue
		}
		similarity := matchr.JaroWinkler(query, strings.ToLower(breed), false)
		if similarity < minSimilarity {
			continue
		}
		scored = append(scored, scoredBreed{breed: breed, similarity: similarity})
	}
	slices.SortStableFunc(scored, func(a, b scoredBreed) int {
		switch {
		case a.similarity > b.similarity:
			return -1
		case a.similarity < b.similarity:
			return 1
		}
		return 0
	})

	for _, s := range scored {
		if len(out) >= limit {
			break
		}
		out = append(out, s.breed)
	}
	return out
}

// ResolveBreed maps free text to a single catalog breed: an exact match
// ignoring case, otherwise the only suggestion. ok is false when the text is
// ambiguous or matches nothing, suggestions then lists the candidates.
func ResolveBreed(text string, breeds []string) (breed string, suggestions []string, ok bool) {
	text = strings.TrimSpace(text)
	for _, b := range breeds {
		if strings.EqualFold(b, text) {
			return b, nil, true
		}
	}
	suggestions = SuggestBreeds(text, breeds, MaxSuggestions)
	if len(suggestions) == 1 {
		return suggestions[0], suggestions, true
	}
	return "", suggestions, false
}
