package syllabus

import (
	"fmt"
	"testing"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
)

func mkModules(moduleCount, topicsPerModule int) []types.Module {
	modules := make([]types.Module, 0, moduleCount)
	for i := 0; i < moduleCount; i++ {
		m := types.Module{
			ID:    fmt.Sprintf("m-%d", i),
			Title: fmt.Sprintf("Módulo %d", i+1),
			Order: i + 1,
		}
		for j := 0; j < topicsPerModule; j++ {
			m.Topics = append(m.Topics, types.Topic{
				ID:    fmt.Sprintf("m-%d-t-%d", i, j),
				Title: fmt.Sprintf("Tópico %d.%d", i+1, j+1),
				Order: j + 1,
			})
		}
		modules = append(modules, m)
	}
	return modules
}

func TestCountTopics(t *testing.T) {
	if got := CountTopics(mkModules(5, 10)); got != 50 {
		t.Fatalf("CountTopics: got %d, want 50", got)
	}
	if got := CountTopics(nil); got != 0 {
		t.Fatalf("CountTopics(nil): got %d, want 0", got)
	}
}

func TestGuardTruncationRejectsDroppedTopics(t *testing.T) {
	original := mkModules(5, 10)
	candidate := mkModules(5, 8)

	result, report := GuardTruncation(original, candidate)
	if !report.Rejected {
		t.Fatalf("expected rejection: %+v", report)
	}
	if report.OriginalTopics != 50 || report.CandidateTopics != 40 {
		t.Fatalf("report counts: %+v", report)
	}
	if CountTopics(result) != 50 {
		t.Fatalf("original must be returned unchanged, got %d topics", CountTopics(result))
	}
	if result[0].ID != original[0].ID {
		t.Fatalf("result is not the original structure")
	}
}

func TestGuardTruncationAcceptsEqualOrMore(t *testing.T) {
	original := mkModules(3, 4)

	same := mkModules(4, 3)
	result, report := GuardTruncation(original, same)
	if report.Rejected {
		t.Fatalf("equal counts must pass: %+v", report)
	}
	if result[0].ID != same[0].ID {
		t.Fatalf("candidate should be returned on equal counts")
	}

	grown := mkModules(3, 6)
	result, report = GuardTruncation(original, grown)
	if report.Rejected {
		t.Fatalf("grown candidate must pass: %+v", report)
	}
	if CountTopics(result) < CountTopics(original) {
		t.Fatalf("monotonicity violated: %d < %d", CountTopics(result), CountTopics(original))
	}
}

func TestGuardTruncationEmptyOriginal(t *testing.T) {
	candidate := mkModules(2, 2)
	result, report := GuardTruncation(nil, candidate)
	if report.Rejected {
		t.Fatalf("anything beats an empty original: %+v", report)
	}
	if CountTopics(result) != 4 {
		t.Fatalf("candidate expected, got %d topics", CountTopics(result))
	}
}
