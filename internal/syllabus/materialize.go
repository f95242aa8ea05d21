package syllabus

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
)

// MaterializeOptions tunes the derived module metadata. Zero values fall back
// to the package defaults.
type MaterializeOptions struct {
	// HoursPerTopic scales the estimated module duration. Default 1.5.
	HoursPerTopic float64
	// MaxKeyTerms caps key terms extracted per topic. Default 5.
	MaxKeyTerms int
}

const (
	defaultHoursPerTopic = 1.5
	defaultMaxKeyTerms   = 5
)

// stopWords are removed from topic titles before key-term extraction.
var stopWords = map[string]bool{
	"a": true, "o": true, "e": true, "de": true, "da": true, "do": true,
	"das": true, "dos": true, "em": true, "um": true, "uma": true, "para": true,
	"com": true, "na": true, "no": true, "que": true, "por": true, "ao": true,
	"à": true, "as": true, "os": true, "sobre": true, "entre": true,
	"the": true, "of": true, "and": true, "in": true, "to": true, "an": true,
	"on": true, "for": true, "with": true, "is": true,
}

// ClustersToModules converts clusters into the final module hierarchy,
// preserving cluster order and intra-cluster topic order. Duration is a
// fixed heuristic (ceil(topics * 1.5) hours by default); difficulty is
// positional within the cluster: first third easy, middle third medium,
// last third hard.
func ClustersToModules(clusters []types.TopicCluster) []types.Module {
	return ClustersToModulesWith(clusters, MaterializeOptions{})
}

func ClustersToModulesWith(clusters []types.TopicCluster, opts MaterializeOptions) []types.Module {
	hoursPerTopic := opts.HoursPerTopic
	if hoursPerTopic <= 0 {
		hoursPerTopic = defaultHoursPerTopic
	}
	maxKeyTerms := opts.MaxKeyTerms
	if maxKeyTerms <= 0 {
		maxKeyTerms = defaultMaxKeyTerms
	}

	modules := make([]types.Module, 0, len(clusters))
	for i, c := range clusters {
		mod := types.Module{
			ID:                uuid.NewString(),
			Title:             c.Title,
			Description:       fmt.Sprintf("Módulo sobre %s com %d tópicos.", c.Title, len(c.Topics)),
			Order:             i + 1,
			EstimatedDuration: int(math.Ceil(float64(len(c.Topics)) * hoursPerTopic)),
			Topics:            make([]types.Topic, 0, len(c.Topics)),
		}

		for j, pt := range c.Topics {
			terms := extractKeyTerms(pt.Title, maxKeyTerms)
			mod.Topics = append(mod.Topics, types.Topic{
				ID:             uuid.NewString(),
				Title:          pt.Title,
				Description:    fmt.Sprintf("Estudo de %s.", pt.Title),
				Order:          j + 1,
				Difficulty:     positionalDifficulty(j, len(c.Topics)),
				KeyTerms:       terms,
				SearchKeywords: terms,
			})
		}
		modules = append(modules, mod)
	}
	return modules
}

// positionalDifficulty maps a topic's position within its cluster to a tier:
// first third easy, middle third medium, last third hard. This is a simple
// ordering heuristic, not content-based classification.
func positionalDifficulty(index, total int) string {
	if total <= 0 {
		return types.DifficultyEasy
	}
	switch {
	case index < total/3 || total < 3 && index == 0:
		return types.DifficultyEasy
	case index < (2*total)/3 || total < 3:
		return types.DifficultyMedium
	default:
		return types.DifficultyHard
	}
}

func extractKeyTerms(title string, limit int) []string {
	fields := strings.Fields(strings.ToLower(title))
	terms := make([]string, 0, limit)
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]\"'")
		if f == "" || stopWords[f] {
			continue
		}
		terms = append(terms, f)
		if len(terms) == limit {
			break
		}
	}
	return terms
}
