package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractQueryTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "stop words and short tokens removed",
			query: "What are the symptoms of diabetes?",
			want:  []string{"symptoms", "diabetes"},
		},
		{
			name:  "lower-cased and deduplicated",
			query: "Diabetes DIABETES diabetes treatment",
			want:  []string{"diabetes", "treatment"},
		},
		{
			name:  "punctuation splits tokens",
			query: "insulin-resistance, blood/sugar",
			want:  []string{"insulin", "resistance", "blood", "sugar"},
		},
		{
			name:  "only stop words",
			query: "what is the",
			want:  nil,
		},
		{
			name:  "empty query",
			query: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractQueryTerms(tt.query))
		})
	}
}

func TestQueryWordsKeepsStopWords(t *testing.T) {
	// Coverage measures the literal question, so stop words longer than
	// two characters stay in.
	got := QueryWords("What are the symptoms of diabetes?")
	assert.Equal(t, []string{"what", "are", "the", "symptoms", "diabetes"}, got)
}

func TestContainedFraction(t *testing.T) {
	text := "Common diabetes symptoms include excessive thirst."

	assert.Equal(t, 1.0, containedFraction([]string{"diabetes", "symptoms"}, text))
	assert.Equal(t, 0.5, containedFraction([]string{"diabetes", "insulin"}, text))
	assert.Equal(t, 0.0, containedFraction([]string{"insulin"}, text))
	assert.Equal(t, 0.0, containedFraction(nil, text))

	// Matching is case-insensitive substring containment.
	assert.Equal(t, 1.0, containedFraction([]string{"common"}, text))
}
