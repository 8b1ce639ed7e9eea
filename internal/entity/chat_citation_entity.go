package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatCitation struct {
	Id            uuid.UUID
	ChatMessageId uuid.UUID
	ChunkId       uuid.UUID
	DocumentId    uuid.UUID
	Rank          int
	CreatedAt     time.Time

	// Document is populated on reads that join the owning document.
	Document *Document
}
