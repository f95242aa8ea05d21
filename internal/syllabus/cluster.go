package syllabus

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
)

// ClusterTopics assigns topics to thematic clusters and balances cluster
// sizes against targetModules.
//
// Assignment scans themes in table order and takes the first theme with a
// keyword substring match against the lowercased title; table order is the
// tie-break and must be stable for reproducible output. Topics matching no
// theme are either gathered into one "Tópicos Complementares" cluster (when
// fewer clusters than targetModules exist) or round-robin distributed across
// the existing clusters. Clusters larger than ceil(total/targetModules) are
// split into contiguous "Parte N" sub-clusters whose Order is offset by
// +0.1 per part so split parts stay adjacent after sorting.
//
// Every input topic lands in exactly one output cluster; none are dropped or
// duplicated.
func ClusterTopics(topics []types.ProcessedTopic, targetModules int, themes []Theme) []types.TopicCluster {
	if len(topics) == 0 {
		return []types.TopicCluster{}
	}
	if targetModules <= 0 {
		targetModules = 1
	}
	if len(themes) == 0 {
		themes = DefaultThemes()
	}

	assigned := make(map[int][]types.ProcessedTopic, len(themes))
	var unassigned []types.ProcessedTopic

	for _, t := range topics {
		idx, ok := matchTheme(t.Title, themes)
		if !ok {
			unassigned = append(unassigned, t)
			continue
		}
		themeIdx := idx
		t.Cluster = &themeIdx
		assigned[idx] = append(assigned[idx], t)
	}

	clusters := make([]types.TopicCluster, 0, len(assigned)+1)
	for i, th := range themes {
		members := assigned[i]
		if len(members) == 0 {
			continue
		}
		clusters = append(clusters, types.TopicCluster{
			ID:     uuid.NewString(),
			Title:  th.Name,
			Topics: members,
			Order:  th.Order,
		})
	}

	if len(unassigned) > 0 {
		if len(clusters) < targetModules {
			maxOrder := 0.0
			for _, c := range clusters {
				if c.Order > maxOrder {
					maxOrder = c.Order
				}
			}
			clusters = append(clusters, types.TopicCluster{
				ID:     uuid.NewString(),
				Title:  "Tópicos Complementares",
				Topics: unassigned,
				Order:  maxOrder + 1,
			})
		} else {
			for i, t := range unassigned {
				target := &clusters[i%len(clusters)]
				target.Topics = append(target.Topics, t)
			}
		}
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Order < clusters[j].Order
	})

	return balanceClusters(clusters, len(topics), targetModules)
}

func matchTheme(title string, themes []Theme) (int, bool) {
	lower := strings.ToLower(title)
	for i, th := range themes {
		for _, kw := range th.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				return i, true
			}
		}
	}
	return 0, false
}

// balanceClusters splits any cluster exceeding ceil(total/target) topics into
// contiguous parts of at most that size, preserving intra-cluster topic order.
func balanceClusters(clusters []types.TopicCluster, totalTopics, targetModules int) []types.TopicCluster {
	maxSize := int(math.Ceil(float64(totalTopics) / float64(targetModules)))
	if maxSize < 1 {
		maxSize = 1
	}

	out := make([]types.TopicCluster, 0, len(clusters))
	for _, c := range clusters {
		if len(c.Topics) <= maxSize {
			out = append(out, c)
			continue
		}

		parts := int(math.Ceil(float64(len(c.Topics)) / float64(maxSize)))
		for p := 0; p < parts; p++ {
			start := p * maxSize
			end := start + maxSize
			if end > len(c.Topics) {
				end = len(c.Topics)
			}
			out = append(out, types.TopicCluster{
				ID:     uuid.NewString(),
				Title:  fmt.Sprintf("%s - Parte %d", c.Title, p+1),
				Topics: c.Topics[start:end],
				Order:  c.Order + 0.1*float64(p),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}
