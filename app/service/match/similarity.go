package match

import (
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"
)

// Similarity scores how alike two strings are on a 0..1 scale. The pet
// matcher only depends on this interface, so the metric can be swapped
// without touching stage logic.
type Similarity interface {
	Score(a, b string) float64
}

type indelSimilarity struct {
	metric *metrics.Levenshtein
}

// NewIndelSimilarity returns the default metric: an insert/delete-only edit
// distance normalized by the combined length. "bella" vs "bela" scores ~0.89,
// "rex" vs "max" ~0.33.
func NewIndelSimilarity() Similarity {
	metric := metrics.NewLevenshtein()
	metric.CaseSensitive = false
	// Substitutions count as delete+insert so the score matches the usual
	// ratio definition instead of the max-length normalization.
	metric.ReplaceCost = 2

	return &indelSimilarity{metric: metric}
}

func (s *indelSimilarity) Score(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	distance := s.metric.Distance(a, b)

	return 1 - float64(distance)/float64(total)
}
