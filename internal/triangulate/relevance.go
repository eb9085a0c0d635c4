package triangulate

import (
	"strings"
	"unicode"

	"github.com/ppiankov/newsintel/internal/model"
	"github.com/sahilm/fuzzy"
)

// Relevance tags how many subject terms a hit mentions. An exact mention
// counts fully; a close spelling (fuzzy match against a word of similar
// length, e.g. a plural) counts half.
func Relevance(terms []string, text string) model.Relevance {
	if len(terms) == 0 {
		return model.RelevanceLow
	}
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	score := 0.0
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(lower, term) {
			score++
			continue
		}
		if closeMatch(term, words) {
			score += 0.5
		}
	}

	ratio := score / float64(len(terms))
	switch {
	case ratio >= 0.66:
		return model.RelevanceHigh
	case ratio >= 0.33:
		return model.RelevanceMedium
	default:
		return model.RelevanceLow
	}
}

func closeMatch(term string, words []string) bool {
	if len([]rune(term)) < 4 {
		return false
	}
	for _, m := range fuzzy.Find(term, words) {
		diff := len([]rune(m.Str)) - len([]rune(term))
		if diff >= 0 && diff <= 3 && strings.HasPrefix(m.Str, term[:2]) {
			return true
		}
	}
	stem := strings.TrimSuffix(term, "s")
	for _, w := range words {
		if w == stem || strings.TrimSuffix(w, "s") == stem {
			return true
		}
	}
	return false
}
