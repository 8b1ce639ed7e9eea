package store

// RetrievedChunk is a lightweight view of a chunk kept in the session cache
// so follow-up questions can reuse the previous retrieval context.
type RetrievedChunk struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// Session represents the active chat session state in memory
type Session struct {
	ID     string `json:"id"` // ChatSessionID
	UserID string `json:"user_id"`

	// Last retrieval context, reused to shortcut repeated queries
	LastQuery  string           `json:"last_query"`
	LastChunks []RetrievedChunk `json:"last_chunks"`
}
