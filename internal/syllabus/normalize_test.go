package syllabus

import (
	"testing"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
)

func TestCleanTopicTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12. Limites e Continuidade", "Limites e Continuidade"},
		{"3) Derivadas", "Derivadas"},
		{"- Integrais definidas", "Integrais definidas"},
		{"• Séries numéricas", "Séries numéricas"},
		{"### Funções compostas", "Funções compostas"},
		{"**Teorema Fundamental**", "Teorema Fundamental"},
		{"Equações diferenciais [3]", "Equações diferenciais"},
		{"  espaçamento    irregular  ", "espaçamento irregular"},
	}
	for _, c := range cases {
		if got := CleanTopicTitle(c.in); got != c.want {
			t.Fatalf("CleanTopicTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeTopicsDropsNoise(t *testing.T) {
	out := NormalizeTopics([]string{"ab", "", "   ", "1.", "Limites"}, types.SourceLLM)
	if len(out) != 1 || out[0].Title != "Limites" {
		t.Fatalf("expected only %q to survive, got %+v", "Limites", out)
	}
	if out[0].Source != types.SourceLLM {
		t.Fatalf("source not propagated: %q", out[0].Source)
	}
}

func TestNormalizeTopicsDefaults(t *testing.T) {
	out := NormalizeTopics([]string{"Derivadas"}, "")
	if len(out) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(out))
	}
	got := out[0]
	if got.Source != types.SourceSearch {
		t.Fatalf("default source: got %q", got.Source)
	}
	if got.Confidence != 0.85 || got.Relevance != 1.0 {
		t.Fatalf("defaults: confidence=%v relevance=%v", got.Confidence, got.Relevance)
	}
}

func TestNormalizeTopicsKeepsLongerVariant(t *testing.T) {
	out := NormalizeTopics([]string{"Limites", "1. Limites"}, "")
	if len(out) != 1 {
		t.Fatalf("expected collapse to 1 topic, got %d", len(out))
	}
	if out[0].Original != "1. Limites" {
		t.Fatalf("longer raw variant should win, got original %q", out[0].Original)
	}
	if len(out[0].MergedFrom) != 1 || out[0].MergedFrom[0] != "Limites" {
		t.Fatalf("merged provenance missing: %+v", out[0].MergedFrom)
	}
}

func TestNormalizeTopicsInsertionOrder(t *testing.T) {
	out := NormalizeTopics([]string{"Derivadas", "Integrais", "2. Derivadas"}, "")
	if len(out) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(out))
	}
	if out[0].Title != "Derivadas" || out[1].Title != "Integrais" {
		t.Fatalf("first-occurrence order not preserved: %q, %q", out[0].Title, out[1].Title)
	}
}

func TestNormalizeTopicsIdempotent(t *testing.T) {
	first := NormalizeTopics([]string{
		"1. Limites", "2. Limites", "Derivadas básicas", "**Derivadas básicas**", "Integrais",
	}, "")

	titles := make([]string, 0, len(first))
	for _, pt := range first {
		titles = append(titles, pt.Title)
	}
	second := NormalizeTopics(titles, "")
	if len(second) != len(first) {
		t.Fatalf("second pass collapsed further: %d -> %d", len(first), len(second))
	}
}

func TestNormalizeTopicsEmptyInput(t *testing.T) {
	if out := NormalizeTopics(nil, ""); len(out) != 0 {
		t.Fatalf("nil input should yield empty slice, got %d", len(out))
	}
	if out := NormalizeTopics([]string{}, ""); len(out) != 0 {
		t.Fatalf("empty input should yield empty slice, got %d", len(out))
	}
}
