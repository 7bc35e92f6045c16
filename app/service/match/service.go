package match

import (
	"strings"

	"petsync/app/client/petpro"

	"github.com/elliotchance/pie/v2"
)

const (
	scoreExact       = 1000
	scoreContainment = 900
	scoreKeywordBase = 500
)

// Keyword categories for semantic service matching. Earlier keywords within a
// category are more specific and score higher. Category order is fixed so
// scoring stays deterministic.
var serviceKeywords = []struct {
	category string
	keywords []string
}{
	{
		category: "pet sitting",
		keywords: []string{
			"pet sitting", "pet sitter", "sitting", "overnight", "overnight care",
			"watch", "watch my", "look after", "look after my",
			"care for", "care for my", "pet care", "dog sitting", "cat sitting",
			"babysit", "babysitting", "pet babysitting", "stay with", "stay with my",
			"house sit", "house sitting", "pet house sitting",
		},
	},
	{
		category: "dog walking",
		keywords: []string{
			"dog walking", "dog walker", "walk", "walk my dog",
			"take my dog for a walk", "dog walk", "take dog out", "walk the dog",
			"daily walk", "regular walk",
		},
	},
	{
		category: "grooming",
		keywords: []string{
			"grooming", "groom", "bath", "bathe", "bathe my", "wash",
			"wash my", "pet grooming", "dog grooming", "cat grooming", "nail trim",
			"nail clipping", "haircut", "hair cut", "trim",
		},
	},
}

// Words too generic to signal a service on their own.
var stopWords = map[string]bool{
	"pet": true, "my": true, "the": true, "a": true, "an": true,
	"for": true, "of": true, "with": true,
}

// Service semantically matches a requested phrase against the professional's
// services. Exact name equality wins, then substring containment, then
// keyword-category membership ranked by keyword specificity, then residual
// meaningful-word overlap. Returns nil when no service scores positively, so
// "grooming" requests never land on "Dog Walking" just because both say "dog".
func Service(services []petpro.Service, request string) *petpro.Service {
	request = strings.ToLower(strings.TrimSpace(request))
	if request == "" || len(services) == 0 {
		return nil
	}

	var best *petpro.Service
	bestScore := 0

	for i := range services {
		score := scoreService(&services[i], request)
		if score > bestScore {
			bestScore = score
			best = &services[i]
		}
	}

	return best
}

func scoreService(service *petpro.Service, request string) int {
	name := strings.ToLower(strings.TrimSpace(service.Name))
	if name == "" {
		return 0
	}

	score := 0

	switch {
	case request == name:
		score = scoreExact
	case strings.Contains(name, request) || strings.Contains(request, name):
		score = scoreContainment
	}

	for _, entry := range serviceKeywords {
		if !strings.Contains(name, entry.category) {
			continue
		}

		for idx, keyword := range entry.keywords {
			if strings.Contains(request, keyword) {
				priority := (len(entry.keywords) - idx) * 10
				score = max(score, scoreKeywordBase+priority)
				break
			}
		}
	}

	if score < scoreKeywordBase {
		overlap := meaningfulOverlap(name, request)
		score = max(score, overlap*10)
	}

	return score
}

func meaningfulOverlap(name, request string) int {
	nameWords := pie.Filter(strings.Fields(name), func(w string) bool { return !stopWords[w] })
	requestWords := strings.Fields(request)

	common := 0
	for _, word := range pie.Unique(nameWords) {
		if pie.Contains(requestWords, word) {
			common++
		}
	}

	return common
}
