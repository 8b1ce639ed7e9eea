package dto

import (
	"github.com/google/uuid"
)

// SearchRequest is the retrieval API request body. The owning user comes
// from the JWT, never from the body. Optional fields are pointers so that
// an explicit zero can be told apart from "use the default".
type SearchRequest struct {
	Query               string   `json:"query" validate:"required"`
	SearchType          string   `json:"search_type,omitempty" validate:"omitempty,oneof=semantic keyword hybrid"`
	MaxResults          int      `json:"max_results,omitempty" validate:"omitempty,gt=0,lte=100"`
	SemanticWeight      *float64 `json:"semantic_weight,omitempty" validate:"omitempty,gte=0"`
	KeywordWeight       *float64 `json:"keyword_weight,omitempty" validate:"omitempty,gte=0"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	EnableReranking     *bool    `json:"enable_reranking,omitempty"`
}

type ScoreBreakdownDTO struct {
	Semantic float64 `json:"semantic"`
	Keyword  float64 `json:"keyword"`
	Combined float64 `json:"combined"`
	Final    float64 `json:"final"`
}

type RerankingFactorsDTO struct {
	LengthPenalty  float64 `json:"length_penalty"`
	PositionBoost  float64 `json:"position_boost"`
	KeywordDensity float64 `json:"keyword_density"`
	QueryCoverage  float64 `json:"query_coverage"`
}

type SearchResultDTO struct {
	ChunkId          uuid.UUID            `json:"chunk_id"`
	DocumentId       uuid.UUID            `json:"document_id"`
	Filename         string               `json:"filename"`
	ChunkIndex       int                  `json:"chunk_index"`
	Page             *int                 `json:"page,omitempty"`
	Text             string               `json:"text"`
	Scores           ScoreBreakdownDTO    `json:"scores"`
	RerankingFactors *RerankingFactorsDTO `json:"reranking_factors,omitempty"`
}

type SearchResponse struct {
	Results      []SearchResultDTO `json:"results"`
	ResultsCount int               `json:"results_count"`
	SearchMethod string            `json:"search_method"` // e.g. "hybrid + reranked"
}
