package prompt

import (
	"fmt"
	"strings"

	"ai-docchat-be/pkg/store"
)

// GroundedBuilder builds a prompt that restricts the model to retrieved
// document chunks and asks it to cite sources by number.
type GroundedBuilder struct {
	query  string
	chunks []store.RetrievedChunk
}

// NewGroundedBuilder creates a builder over the retrieved chunks. Chunk
// order is preserved, so source numbers match retrieval rank.
func NewGroundedBuilder(query string, chunks []store.RetrievedChunk) *GroundedBuilder {
	return &GroundedBuilder{
		query:  query,
		chunks: chunks,
	}
}

// Build assembles the full prompt.
func (b *GroundedBuilder) Build() string {
	var prompt strings.Builder

	b.writeSources(&prompt)
	b.writeTask(&prompt)
	b.writeGuidelines(&prompt)
	b.writeUserQuery(&prompt)

	return prompt.String()
}

func (b *GroundedBuilder) writeSources(prompt *strings.Builder) {
	if len(b.chunks) == 0 {
		return
	}

	prompt.WriteString("<sources>\n")
	for i, chunk := range b.chunks {
		prompt.WriteString(fmt.Sprintf("[%d] (from %s)\n", i+1, chunk.Filename))
		prompt.WriteString(chunk.Content)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</sources>\n\n")
}

func (b *GroundedBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a knowledgeable assistant helping the user understand and extract information from their documents.\n")
	prompt.WriteString("Answer the user's question using only the numbered sources above.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *GroundedBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Base your answer strictly on the sources provided\n")
	prompt.WriteString("2. Cite sources inline with their number, e.g. [1] or [2]\n")
	prompt.WriteString("3. If the sources do not contain what's being asked, say so honestly\n")
	prompt.WriteString("4. Be complete but don't pad the answer with unrelated source material\n")
	prompt.WriteString("5. If sources disagree, point out the conflict instead of picking silently\n")
	prompt.WriteString("</guidelines>\n\n")
}

func (b *GroundedBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now provide your complete response based on the sources:")
}
