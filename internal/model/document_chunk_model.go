package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	Id         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID        `gorm:"type:uuid;not null;index"`
	ChunkIndex int              `gorm:"not null;default:0"` // 0-based position within the document
	Page       *int             `gorm:"default:null"`
	Content    string           `gorm:"type:text;not null"`
	Embedding  *pgvector.Vector `gorm:"type:vector(768)"` // null until the embedding consumer processes the chunk
	CreatedAt  time.Time        `gorm:"autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt   `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
