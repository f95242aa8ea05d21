package syllabus

import (
	types "github.com/edukraft/courseforge-backend/internal/domain/course"
)

// TruncationReport describes the outcome of a guarded transformation.
type TruncationReport struct {
	Rejected        bool   `json:"rejected"`
	Reason          string `json:"reason,omitempty"`
	OriginalTopics  int    `json:"original_topics"`
	CandidateTopics int    `json:"candidate_topics"`
}

// CountTopics sums topics across all modules of a structure.
func CountTopics(modules []types.Module) int {
	total := 0
	for _, m := range modules {
		total += len(m.Topics)
	}
	return total
}

// GuardTruncation compares topic counts before and after a structure
// transformation. A candidate with fewer topics than the original is
// rejected and the original returned unchanged; the report carries the
// rejection so callers can surface the no-op. Must run after every
// LLM-driven pass that rewrites a structure.
func GuardTruncation(original, candidate []types.Module) ([]types.Module, TruncationReport) {
	report := TruncationReport{
		OriginalTopics:  CountTopics(original),
		CandidateTopics: CountTopics(candidate),
	}
	if report.CandidateTopics < report.OriginalTopics {
		report.Rejected = true
		report.Reason = "candidate drops topics"
		return original, report
	}
	return candidate, report
}
