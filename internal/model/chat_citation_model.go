package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatCitation links a model reply to the chunks it was grounded on.
// Rank is the 1-based source number used in the reply text ([1], [2], ...).
type ChatCitation struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatMessageId uuid.UUID `gorm:"type:uuid;not null;index"`
	ChunkId       uuid.UUID `gorm:"type:uuid;not null"`
	DocumentId    uuid.UUID `gorm:"type:uuid;not null"`
	Rank          int       `gorm:"not null;default:1"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`

	Document *Document `gorm:"foreignKey:DocumentId"`
}

func (ChatCitation) TableName() string {
	return "chat_citations"
}
