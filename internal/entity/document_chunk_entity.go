package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is one retrievable slice of a document. Embedding is nil
// until the ingestion consumer has processed the chunk.
type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	ChunkIndex int
	Page       *int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
