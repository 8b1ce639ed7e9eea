package retrieval

import (
	"github.com/google/uuid"
)

// SearchType selects which retrieval channels a query runs against.
type SearchType string

const (
	SearchTypeSemantic SearchType = "semantic"
	SearchTypeKeyword  SearchType = "keyword"
	SearchTypeHybrid   SearchType = "hybrid"
)

// Chunk is the retrievable unit: one slice of a document's text together
// with the identifiers needed to cite it back to the user.
type Chunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Filename   string
	ChunkIndex int
	Page       *int
	Content    string
}

// StoreHit pairs a chunk with the store's relevance score for one channel.
// Scores are expected to be normalized to [0,1] by the store.
type StoreHit struct {
	Chunk Chunk
	Score float64
}

// FusionConfig encapsulates the parameters of a single fusion call.
// Every invocation is a pure function of its inputs; there is no
// process-wide search state.
type FusionConfig struct {
	SearchType          SearchType
	SemanticWeight      float64
	KeywordWeight       float64
	SimilarityThreshold float64
	MaxResults          int

	// ExpandForRerank widens the cap to 2x MaxResults so a downstream
	// re-ranker has a wider pool to reorder before final truncation.
	ExpandForRerank bool

	// AllowPartial permits degraded single-channel operation when one
	// retrieval channel errors. Off by default: a channel failure fails
	// the whole fusion rather than silently returning partial results.
	AllowPartial bool
}

// DefaultFusionConfig mirrors the API defaults.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		SearchType:          SearchTypeHybrid,
		SemanticWeight:      0.7,
		KeywordWeight:       0.3,
		SimilarityThreshold: 0.6,
		MaxResults:          10,
	}
}

// ScoredCandidate is the fused per-query view of one chunk. A chunk found
// by only one channel carries exactly 0 for the other channel's score.
type ScoredCandidate struct {
	Chunk         Chunk
	SemanticScore float64
	KeywordScore  float64
	CombinedScore float64
}

// RerankFactors holds the four heuristic signals, each in [0,1].
type RerankFactors struct {
	LengthPenalty  float64
	PositionBoost  float64
	KeywordDensity float64
	QueryCoverage  float64
}

// RerankedCandidate extends a fused candidate with its corrected score.
// The fused score is preserved as OriginalCombinedScore so re-ranking can
// be re-applied from the same base.
type RerankedCandidate struct {
	ScoredCandidate
	OriginalCombinedScore float64
	Factors               RerankFactors
	RerankedScore         float64
}

// RerankConfig is supplied per call; the re-ranker keeps no state between
// invocations.
type RerankConfig struct {
	IdealChunkLength int
	LengthWeight     float64
	PositionWeight   float64
	DensityWeight    float64
	CoverageWeight   float64

	// BlendWeight is the overall blend between the fused score and the
	// boosted score. At 0 the re-ranked score equals the fused score.
	BlendWeight float64
}

// DefaultRerankConfig returns the standard heuristic weights.
func DefaultRerankConfig() RerankConfig {
	return RerankConfig{
		IdealChunkLength: 500,
		LengthWeight:     0.2,
		PositionWeight:   0.2,
		DensityWeight:    0.3,
		CoverageWeight:   0.3,
		BlendWeight:      0.3,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
