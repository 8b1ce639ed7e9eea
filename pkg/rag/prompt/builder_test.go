package prompt

import (
	"strings"
	"testing"

	"ai-docchat-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func TestBuildNumbersSourcesInOrder(t *testing.T) {
	chunks := []store.RetrievedChunk{
		{Filename: "a.txt", Content: "first chunk"},
		{Filename: "b.txt", Content: "second chunk"},
	}

	out := NewGroundedBuilder("what is x?", chunks).Build()

	assert.Contains(t, out, "[1] (from a.txt)")
	assert.Contains(t, out, "[2] (from b.txt)")
	assert.Less(t, strings.Index(out, "first chunk"), strings.Index(out, "second chunk"))
	assert.Contains(t, out, "what is x?")
}

func TestBuildWithoutChunksOmitsSources(t *testing.T) {
	out := NewGroundedBuilder("anything", nil).Build()

	assert.NotContains(t, out, "<sources>")
	assert.Contains(t, out, "<user_question>")
}

func TestBuildAsksForCitations(t *testing.T) {
	chunks := []store.RetrievedChunk{{Filename: "a.txt", Content: "c"}}
	out := NewGroundedBuilder("q", chunks).Build()

	assert.Contains(t, out, "Cite sources inline")
}
