package contract

import (
	"context"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk pairs a chunk with a retrieval score normalized to [0,1] and
// the owning document's filename (joined so result shaping needs no second
// round trip).
type ScoredChunk struct {
	Chunk    *entity.DocumentChunk
	Filename string
	Score    float64
}

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error

	// SemanticSearchWithScore ranks the user's embedded chunks by cosine
	// similarity to the query vector, filtered by the given similarity
	// threshold.
	SemanticSearchWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*ScoredChunk, error)

	// KeywordSearchWithScore ranks the user's chunks by lexical relevance
	// to the query text. Scores are normalized to [0,1).
	KeywordSearchWithScore(ctx context.Context, query string, limit int, userId uuid.UUID) ([]*ScoredChunk, error)
}
