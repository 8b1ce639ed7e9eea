package retrieval

// ScoreBreakdown carries full score provenance for one result.
type ScoreBreakdown struct {
	Semantic float64
	Keyword  float64
	Combined float64

	// Final is the re-ranked score when re-ranking ran, otherwise the
	// combined score.
	Final float64
}

// SearchResult is the externally visible result record, ready for citation
// generation by a downstream prompting step.
type SearchResult struct {
	Chunk  Chunk
	Scores ScoreBreakdown

	// Factors is set only when re-ranking produced the final score.
	Factors *RerankFactors
}

// AssembleScored shapes fused candidates into result records, capped to
// maxResults. Input order is output order; no re-ordering happens here.
func AssembleScored(candidates []ScoredCandidate, maxResults int) []SearchResult {
	results := make([]SearchResult, 0, min(len(candidates), capOf(maxResults)))
	for _, c := range candidates {
		if len(results) == capOf(maxResults) {
			break
		}
		results = append(results, SearchResult{
			Chunk: c.Chunk,
			Scores: ScoreBreakdown{
				Semantic: c.SemanticScore,
				Keyword:  c.KeywordScore,
				Combined: c.CombinedScore,
				Final:    c.CombinedScore,
			},
		})
	}
	return results
}

// AssembleReranked shapes re-ranked candidates into result records with
// the factor breakdown attached, capped to maxResults. Input order is
// output order.
func AssembleReranked(candidates []RerankedCandidate, maxResults int) []SearchResult {
	results := make([]SearchResult, 0, min(len(candidates), capOf(maxResults)))
	for _, c := range candidates {
		if len(results) == capOf(maxResults) {
			break
		}
		factors := c.Factors
		results = append(results, SearchResult{
			Chunk: c.Chunk,
			Scores: ScoreBreakdown{
				Semantic: c.SemanticScore,
				Keyword:  c.KeywordScore,
				Combined: c.OriginalCombinedScore,
				Final:    c.RerankedScore,
			},
			Factors: &factors,
		})
	}
	return results
}

func capOf(maxResults int) int {
	if maxResults <= 0 {
		return DefaultFusionConfig().MaxResults
	}
	return maxResults
}
