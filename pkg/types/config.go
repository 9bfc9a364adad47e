package types

// CorpusConfig holds settings for loading papers.
type CorpusConfig struct {
	// PapersDir is the directory of paper metadata files (*.yaml, *.yml, *.json).
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`

	// IndexDir is the directory holding the SQLite paper catalog (catalog.db).
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of catalog search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" validate:"gte=0"`
}

// ExtractionConfig holds settings for concept extraction.
type ExtractionConfig struct {
	// MinPhraseFrequency is the minimum in-paper count for a phrase to become
	// a concept (default 2). Every concept must recur within a paper, so values
	// below 2 are rejected.
	MinPhraseFrequency int `json:"min_phrase_frequency" yaml:"min_phrase_frequency" validate:"gte=2"`

	// MinPhraseLength is the exclusive lower bound on phrase character length
	// (default 5, so phrases must be at least 6 characters).
	MinPhraseLength int `json:"min_phrase_length" yaml:"min_phrase_length" validate:"gt=0"`
}

// GraphConfig holds settings for co-occurrence graph construction.
type GraphConfig struct {
	// EdgeThreshold is the exclusive lower bound on edge weight (default 0.1).
	EdgeThreshold float64 `json:"edge_threshold" yaml:"edge_threshold" validate:"gt=0,lt=1"`
}

// AnalysisConfig holds settings for community detection.
type AnalysisConfig struct {
	// Resolution scales the modularity null model. Higher values produce
	// smaller communities (default 1.0).
	Resolution float64 `json:"resolution" yaml:"resolution" validate:"gt=0"`

	// MaxLevels bounds the number of Louvain aggregation levels (default 10).
	MaxLevels int `json:"max_levels" yaml:"max_levels" validate:"gte=1"`
}

// SamplingConfig holds defaults for path sampling.
type SamplingConfig struct {
	// PathLength is the maximum number of concepts per diverse walk (default 5).
	PathLength int `json:"path_length" yaml:"path_length" validate:"gte=2"`

	// MaxResults is the number of paths returned per request (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" validate:"gte=1"`

	// Seed seeds the random walk source. Equal seeds give equal samples.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// EngineConfig groups all stage configurations.
type EngineConfig struct {
	Corpus     CorpusConfig     `json:"corpus" yaml:"corpus"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Graph      GraphConfig      `json:"graph" yaml:"graph"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis"`
	Sampling   SamplingConfig   `json:"sampling" yaml:"sampling"`
}

// DefaultEngineConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Corpus: CorpusConfig{
			PapersDir:  "papers",
			IndexDir:   "index",
			MaxResults: 20,
		},
		Extraction: ExtractionConfig{
			MinPhraseFrequency: 2,
			MinPhraseLength:    5,
		},
		Graph: GraphConfig{
			EdgeThreshold: 0.1,
		},
		Analysis: AnalysisConfig{
			Resolution: 1.0,
			MaxLevels:  10,
		},
		Sampling: SamplingConfig{
			PathLength: 5,
			MaxResults: 10,
			Seed:       42,
		},
	}
}
