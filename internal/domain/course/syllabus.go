package course

// Topic sources, in order of trust.
const (
	SourceSearch = "search"
	SourceLLM    = "llm"
	SourceUser   = "user"
)

// Difficulty tiers assigned positionally within a cluster.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ProcessedTopic is a cleaned, deduplicated topic string with provenance.
// Ephemeral: built and discarded within a single generation request.
type ProcessedTopic struct {
	Title           string   `json:"title"`
	Original        string   `json:"original"`
	Source          string   `json:"source"`
	Relevance       float64  `json:"relevance"`
	Confidence      float64  `json:"confidence"`
	Cluster         *int     `json:"cluster,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	MergedFrom      []string `json:"merged_from,omitempty"`
}

// TopicCluster groups topics under a theme prior to materialization.
// Order may carry fractional values when an oversized cluster is split into
// "Parte N" sub-clusters, so split parts sort adjacent to each other.
type TopicCluster struct {
	ID     string           `json:"id"`
	Title  string           `json:"title"`
	Topics []ProcessedTopic `json:"topics"`
	Order  float64          `json:"order"`
}

// Module is one materialized syllabus module.
type Module struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Order             int     `json:"order"`
	EstimatedDuration int     `json:"estimated_duration"`
	Topics            []Topic `json:"topics"`
}

// Topic is one materialized syllabus topic inside a module.
type Topic struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Order          int      `json:"order"`
	Difficulty     string   `json:"difficulty"`
	KeyTerms       []string `json:"key_terms"`
	SearchKeywords []string `json:"search_keywords"`
}
