package retrieval

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleScoredCapsAndPreservesOrder(t *testing.T) {
	var candidates []ScoredCandidate
	for i := 0; i < 5; i++ {
		c := scoredCandidate(0.9-float64(i)*0.1, i, "text")
		c.KeywordScore = 0.5
		candidates = append(candidates, c)
	}

	results := AssembleScored(candidates, 3)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, candidates[i].Chunk.Id, r.Chunk.Id, "assembler must not reorder")
		assert.Equal(t, candidates[i].SemanticScore, r.Scores.Semantic)
		assert.Equal(t, candidates[i].KeywordScore, r.Scores.Keyword)
		assert.Equal(t, candidates[i].CombinedScore, r.Scores.Combined)
		assert.Equal(t, candidates[i].CombinedScore, r.Scores.Final, "without re-ranking, final is the combined score")
		assert.Nil(t, r.Factors)
	}
}

func TestAssembleRerankedCarriesFactorsAndFinalScore(t *testing.T) {
	reranked := []RerankedCandidate{
		{
			ScoredCandidate: ScoredCandidate{
				Chunk:         Chunk{Id: uuid.New()},
				SemanticScore: 0.8,
				KeywordScore:  0.4,
				CombinedScore: 0.68,
			},
			OriginalCombinedScore: 0.68,
			Factors: RerankFactors{
				LengthPenalty:  0.9,
				PositionBoost:  1.0,
				KeywordDensity: 0.5,
				QueryCoverage:  0.75,
			},
			RerankedScore: 0.74,
		},
	}

	results := AssembleReranked(reranked, 10)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, 0.8, r.Scores.Semantic)
	assert.Equal(t, 0.4, r.Scores.Keyword)
	assert.Equal(t, 0.68, r.Scores.Combined)
	assert.Equal(t, 0.74, r.Scores.Final, "with re-ranking, final is the re-ranked score")
	require.NotNil(t, r.Factors)
	assert.Equal(t, reranked[0].Factors, *r.Factors)
}

func TestAssembleEmptyInput(t *testing.T) {
	assert.Empty(t, AssembleScored(nil, 10))
	assert.Empty(t, AssembleReranked(nil, 10))
}
