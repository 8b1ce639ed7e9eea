package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short text", 100, 10)
	assert.Equal(t, []string{"short text"}, chunks)
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 250)
	chunks := SplitText(text, 100, 20)

	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	// Consecutive chunks share the overlap region
	assert.Equal(t, chunks[0][80:], chunks[1][:20])
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("b", 50)
	chunks := SplitText(text, 10, 15)

	// Falls back to non-overlapping steps instead of looping forever
	assert.Len(t, chunks, 5)
	for _, c := range chunks {
		assert.Len(t, c, 10)
	}
}

func TestSplitTextMultibyte(t *testing.T) {
	text := strings.Repeat("é", 30)
	chunks := SplitText(text, 10, 0)

	assert.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, 10, len([]rune(c)))
	}
}
