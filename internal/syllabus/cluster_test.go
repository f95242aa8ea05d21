package syllabus

import (
	"fmt"
	"strings"
	"testing"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
)

func mkTopics(titles ...string) []types.ProcessedTopic {
	out := make([]types.ProcessedTopic, 0, len(titles))
	for _, title := range titles {
		out = append(out, types.ProcessedTopic{
			Title:      title,
			Original:   title,
			Source:     types.SourceSearch,
			Relevance:  1.0,
			Confidence: 0.85,
		})
	}
	return out
}

func countClusterTopics(clusters []types.TopicCluster) int {
	n := 0
	for _, c := range clusters {
		n += len(c.Topics)
	}
	return n
}

func TestClusterTopicsEmpty(t *testing.T) {
	if got := ClusterTopics(nil, 4, nil); len(got) != 0 {
		t.Fatalf("empty input: got %d clusters", len(got))
	}
}

func TestClusterTopicsConservation(t *testing.T) {
	sizes := []int{1, 2, 5, 10, 23, 57}
	targets := []int{-1, 0, 1, 2, 4, 8}
	for _, size := range sizes {
		for _, target := range targets {
			titles := make([]string, 0, size)
			for i := 0; i < size; i++ {
				titles = append(titles, fmt.Sprintf("Tópico número %d", i))
			}
			topics := mkTopics(titles...)
			clusters := ClusterTopics(topics, target, nil)
			if got := countClusterTopics(clusters); got != size {
				t.Fatalf("size=%d target=%d: %d topics out, want %d", size, target, got, size)
			}
		}
	}
}

func TestClusterTopicsFirstMatchWins(t *testing.T) {
	// "introdução" (theme 1) and "cálculo" (theme 3) both match; table order
	// must break the tie toward the earlier theme.
	themes := DefaultThemes()
	topics := mkTopics("Introdução ao cálculo")
	clusters := ClusterTopics(topics, 1, themes)
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if clusters[0].Title != "Fundamentos" {
		t.Fatalf("tie should go to first theme in table order, got %q", clusters[0].Title)
	}
}

func TestClusterTopicsComplementaryCluster(t *testing.T) {
	topics := mkTopics("Xadrez posicional", "Aberturas clássicas")
	clusters := ClusterTopics(topics, 3, nil)
	if len(clusters) != 1 {
		t.Fatalf("expected single complementary cluster, got %d", len(clusters))
	}
	if clusters[0].Title != "Tópicos Complementares" {
		t.Fatalf("unexpected cluster title %q", clusters[0].Title)
	}
	if len(clusters[0].Topics) != 2 {
		t.Fatalf("unassigned topics lost: %d", len(clusters[0].Topics))
	}
}

func TestClusterTopicsRoundRobinDistribution(t *testing.T) {
	topics := mkTopics(
		"Introdução geral",      // Fundamentos
		"Teoria dos conjuntos",  // Teoria e Conceitos
		"Sem correspondência A", // unassigned
		"Sem correspondência B", // unassigned
	)
	clusters := ClusterTopics(topics, 2, nil)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if got := countClusterTopics(clusters); got != 4 {
		t.Fatalf("round-robin dropped topics: %d", got)
	}
	for _, c := range clusters {
		if len(c.Topics) != 2 {
			t.Fatalf("round-robin should balance 2+2, got cluster %q with %d", c.Title, len(c.Topics))
		}
	}
}

func TestClusterTopicsSplitsOversized(t *testing.T) {
	titles := make([]string, 0, 9)
	for i := 0; i < 9; i++ {
		titles = append(titles, fmt.Sprintf("Cálculo de área %d", i))
	}
	clusters := ClusterTopics(mkTopics(titles...), 3, nil)

	// All 9 match the same theme; maxSize = ceil(9/3) = 3 → three "Parte N"
	// sub-clusters of 3 topics each.
	if len(clusters) != 3 {
		t.Fatalf("expected 3 split parts, got %d", len(clusters))
	}
	for i, c := range clusters {
		if len(c.Topics) != 3 {
			t.Fatalf("part %d has %d topics, want 3", i, len(c.Topics))
		}
		wantSuffix := fmt.Sprintf("Parte %d", i+1)
		if !strings.HasSuffix(c.Title, wantSuffix) {
			t.Fatalf("part %d title %q, want suffix %q", i, c.Title, wantSuffix)
		}
	}

	// Topic order within the original cluster must survive the split.
	idx := 0
	for _, c := range clusters {
		for _, topic := range c.Topics {
			want := fmt.Sprintf("Cálculo de área %d", idx)
			if topic.Title != want {
				t.Fatalf("split reordered topics: got %q, want %q", topic.Title, want)
			}
			idx++
		}
	}
}

func TestClusterTopicsSplitPartsStayAdjacent(t *testing.T) {
	titles := []string{
		"Introdução geral",
		"Cálculo 1", "Cálculo 2", "Cálculo 3", "Cálculo 4", "Cálculo 5", "Cálculo 6",
		"Aplicação prática final",
	}
	clusters := ClusterTopics(mkTopics(titles...), 4, nil)
	if got := countClusterTopics(clusters); got != len(titles) {
		t.Fatalf("conservation: %d vs %d", got, len(titles))
	}

	// Split parts of the oversized calculus cluster must be contiguous in the
	// output ordering.
	partPositions := make([]int, 0, 4)
	for i, c := range clusters {
		if strings.Contains(c.Title, "Parte") {
			partPositions = append(partPositions, i)
		}
	}
	if len(partPositions) < 2 {
		t.Fatalf("expected calculus cluster to split, clusters: %+v", clusterTitles(clusters))
	}
	for i := 1; i < len(partPositions); i++ {
		if partPositions[i] != partPositions[i-1]+1 {
			t.Fatalf("split parts not adjacent: %v (%v)", partPositions, clusterTitles(clusters))
		}
	}
}

func clusterTitles(clusters []types.TopicCluster) []string {
	out := make([]string, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, fmt.Sprintf("%s(%d)", c.Title, len(c.Topics)))
	}
	return out
}

func TestClusterTopicsEndToEndCalculo(t *testing.T) {
	raw := []string{"1. Limites", "2. Limites", "Derivadas básicas", "Integrais definidas"}
	topics := NormalizeTopics(raw, "")
	if len(topics) != 3 {
		t.Fatalf("dedup should collapse to 3 topics, got %d", len(topics))
	}

	clusters := ClusterTopics(topics, 2, nil)
	if got := countClusterTopics(clusters); got != 3 {
		t.Fatalf("clustering lost topics: %d, want 3", got)
	}

	modules := ClustersToModules(clusters)
	total := 0
	for _, m := range modules {
		total += len(m.Topics)
	}
	if total != 3 {
		t.Fatalf("materialized structure has %d topics, want 3", total)
	}
}
