package learning

import "strings"

const (
	// significantWordMinLen: tokens this short carry no signal for overlap.
	significantWordMinLen = 5
	// duplicateOverlapRatio: a candidate sharing this fraction of its
	// significant words with any stored content is a near-duplicate.
	duplicateOverlapRatio = 0.6
)

// Dedupe filters candidates that are near-duplicates of existing memory
// contents. A candidate is dropped when any single existing content contains
// at least 60% of the candidate's significant words (lower-cased tokens
// longer than 4 characters). Candidates with no significant words always pass.
// Candidates are not compared against each other, only against the snapshot
// of existing contents; input order is preserved.
func Dedupe(candidates, existing []string) []string {
	lowered := make([]string, len(existing))
	for i, e := range existing {
		lowered[i] = strings.ToLower(e)
	}

	kept := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if !isDuplicate(candidate, lowered) {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func isDuplicate(candidate string, loweredExisting []string) bool {
	words := significantWords(candidate)
	if len(words) == 0 {
		return false
	}

	for _, content := range loweredExisting {
		matched := 0
		for _, w := range words {
			if strings.Contains(content, w) {
				matched++
			}
		}
		if float64(matched)/float64(len(words)) >= duplicateOverlapRatio {
			return true
		}
	}
	return false
}

func significantWords(s string) []string {
	var words []string
	for _, token := range strings.Fields(strings.ToLower(s)) {
		if len(token) >= significantWordMinLen {
			words = append(words, token)
		}
	}
	return words
}
