package match

import (
	"strings"

	"petsync/app/client/petpro"
)

// Conversational pet names must tolerate minor typos without creating
// duplicate records, but must not merge genuinely distinct pets.
const petSimilarityThreshold = 0.85

// Pet finds an existing pet by name: exact case-insensitive match first, then
// the best similarity hit at or above the threshold, then a bidirectional
// substring match as last resort. Returns nil when nothing matches.
func Pet(existing []petpro.Pet, name string, sim Similarity) *petpro.Pet {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}

	for i := range existing {
		if strings.ToLower(strings.TrimSpace(existing[i].Name)) == name {
			return &existing[i]
		}
	}

	var best *petpro.Pet
	bestScore := 0.0

	for i := range existing {
		existingName := strings.ToLower(strings.TrimSpace(existing[i].Name))
		if existingName == "" {
			continue
		}

		score := sim.Score(name, existingName)
		if score >= petSimilarityThreshold && score > bestScore {
			bestScore = score
			best = &existing[i]
		}
	}

	if best != nil {
		return best
	}

	for i := range existing {
		existingName := strings.ToLower(strings.TrimSpace(existing[i].Name))
		if existingName == "" {
			continue
		}

		if strings.Contains(existingName, name) || strings.Contains(name, existingName) {
			return &existing[i]
		}
	}

	return nil
}
