package syllabus

import "strings"

// TokenSimilarity returns the Jaccard index of the whitespace token sets of a
// and b after lowercasing. Identical strings (including two empty strings)
// score 1.0; disjoint token sets score 0.0.
func TokenSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
