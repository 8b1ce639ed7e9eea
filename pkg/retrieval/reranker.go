package retrieval

import (
	"math"
	"sort"
)

// HeuristicReranker corrects systematic biases of the fused score using
// structural and lexical signals the retrieval channels cannot see: chunk
// length, position within the document, and raw term overlap with the
// query. It is a pure function of its inputs; configuration is passed per
// call and nothing is shared across invocations.
type HeuristicReranker struct{}

func NewHeuristicReranker() *HeuristicReranker {
	return &HeuristicReranker{}
}

// Rerank recomputes a corrected relevance score for each candidate and
// returns the list ordered descending by it. The sort is stable: exact
// ties keep their original candidate order. An empty input yields an empty
// output, never an error.
func (r *HeuristicReranker) Rerank(query string, candidates []ScoredCandidate, cfg RerankConfig) []RerankedCandidate {
	if len(candidates) == 0 {
		return []RerankedCandidate{}
	}

	terms := ExtractQueryTerms(query)
	words := QueryWords(query)

	reranked := make([]RerankedCandidate, len(candidates))
	for i, c := range candidates {
		factors := RerankFactors{
			LengthPenalty:  lengthPenalty(len(c.Chunk.Content), cfg.IdealChunkLength),
			PositionBoost:  positionBoost(c.Chunk.ChunkIndex),
			KeywordDensity: containedFraction(terms, c.Chunk.Content),
			QueryCoverage:  containedFraction(words, c.Chunk.Content),
		}

		boost := factors.LengthPenalty*cfg.LengthWeight +
			factors.PositionBoost*cfg.PositionWeight +
			factors.KeywordDensity*cfg.DensityWeight +
			factors.QueryCoverage*cfg.CoverageWeight

		// Blend toward the original fused score as BlendWeight -> 0.
		score := c.CombinedScore*(1-cfg.BlendWeight) + (c.CombinedScore+boost)*cfg.BlendWeight

		reranked[i] = RerankedCandidate{
			ScoredCandidate:       c,
			OriginalCombinedScore: c.CombinedScore,
			Factors:               factors,
			RerankedScore:         clamp01(score),
		}
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].RerankedScore > reranked[j].RerankedScore
	})

	return reranked
}

// lengthPenalty scores 1 for chunks exactly at the ideal length, falling
// linearly to 0 at twice the ideal length away.
func lengthPenalty(length, ideal int) float64 {
	if ideal <= 0 {
		ideal = DefaultRerankConfig().IdealChunkLength
	}
	deviation := math.Abs(float64(length-ideal)) / float64(ideal)
	return 1 - math.Min(deviation, 1)
}

// positionBoost favors chunks early in their document; position 0 scores 1
// and positions 10 and beyond score 0. Earlier chunks tend to carry
// definitional or summary content.
func positionBoost(position int) float64 {
	return math.Max(0, 1-0.1*float64(position))
}
