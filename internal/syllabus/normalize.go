package syllabus

import (
	"regexp"
	"strings"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
)

const (
	defaultConfidence = 0.85
	defaultRelevance  = 1.0

	// Cleaned titles shorter than this are treated as extraction noise.
	minTopicLength = 3
)

var (
	ordinalPrefixRE = regexp.MustCompile(`^\s*\d+[.)]\s*`)
	citationRE      = regexp.MustCompile(`\[\d+\]`)
	bulletPrefixRE  = regexp.MustCompile(`^\s*[-*•–]\s*`)
	headingPrefixRE = regexp.MustCompile(`^\s*#{1,6}\s*`)
	nonWordRE       = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	wsRE            = regexp.MustCompile(`\s+`)
)

// NormalizeTopics cleans raw topic strings and collapses near-duplicates.
//
// Cleaning strips leading ordinal numbering ("12. "), bracketed citation
// markers ("[3]"), leading bullet glyphs, markdown bold markers and markdown
// heading markers. Strings shorter than 3 characters after cleaning are
// dropped. Duplicates by normalization key (lowercase, punctuation stripped,
// whitespace collapsed) collapse to the variant with the longer raw string;
// the discarded raw strings are kept in MergedFrom. Output order is the
// insertion order of first key occurrence.
//
// Never fails: a nil or empty input yields an empty slice.
func NormalizeTopics(raw []string, source string) []types.ProcessedTopic {
	if source == "" {
		source = types.SourceSearch
	}

	byKey := make(map[string]int, len(raw))
	out := make([]types.ProcessedTopic, 0, len(raw))

	for _, r := range raw {
		cleaned := CleanTopicTitle(r)
		if len([]rune(cleaned)) < minTopicLength {
			continue
		}

		key := normalizationKey(cleaned)
		if key == "" {
			continue
		}

		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, types.ProcessedTopic{
				Title:      cleaned,
				Original:   r,
				Source:     source,
				Relevance:  defaultRelevance,
				Confidence: defaultConfidence,
			})
			continue
		}

		// Longer raw string wins as the more detailed variant.
		existing := &out[idx]
		if len(r) > len(existing.Original) {
			existing.MergedFrom = append(existing.MergedFrom, existing.Original)
			existing.Title = cleaned
			existing.Original = r
		} else {
			existing.MergedFrom = append(existing.MergedFrom, r)
		}
	}

	return out
}

// CleanTopicTitle strips the list/markdown decoration that LLM and search
// responses wrap around topic strings.
func CleanTopicTitle(raw string) string {
	s := strings.TrimSpace(raw)
	s = headingPrefixRE.ReplaceAllString(s, "")
	s = bulletPrefixRE.ReplaceAllString(s, "")
	s = ordinalPrefixRE.ReplaceAllString(s, "")
	s = citationRE.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = wsRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func normalizationKey(title string) string {
	s := strings.ToLower(title)
	s = nonWordRE.ReplaceAllString(s, " ")
	s = wsRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
