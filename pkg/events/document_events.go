package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeDocumentUploaded = "DOCUMENT_UPLOADED"
	TypeDocumentIngested = "DOCUMENT_INGESTED"
	TypeDocumentDeleted  = "DOCUMENT_DELETED"
)

// NewDocumentUploaded fires when a document has been stored and chunked,
// before its chunks are embedded.
func NewDocumentUploaded(documentId, userId uuid.UUID, filename string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentUploaded,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"user_id":     userId.String(),
			"filename":    filename,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentIngested fires when every chunk of a document has an embedding
// and the document is searchable.
func NewDocumentIngested(documentId uuid.UUID, embeddedChunks int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id":     documentId.String(),
			"embedded_chunks": embeddedChunks,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentDeleted(documentId, userId uuid.UUID) Event {
	return BaseEvent{
		Type: TypeDocumentDeleted,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"user_id":     userId.String(),
		},
		OccurredAt: time.Now(),
	}
}
