package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher implements ChunkSearcher with canned results and records
// which channels were queried.
type fakeSearcher struct {
	semanticHits []StoreHit
	keywordHits  []StoreHit
	semanticErr  error
	keywordErr   error

	semanticCalls int
	keywordCalls  int
}

func (f *fakeSearcher) SemanticSearch(_ context.Context, _ []float32, _ uuid.UUID, _ float64, _ int) ([]StoreHit, error) {
	f.semanticCalls++
	return f.semanticHits, f.semanticErr
}

func (f *fakeSearcher) KeywordSearch(_ context.Context, _ string, _ uuid.UUID, _ int) ([]StoreHit, error) {
	f.keywordCalls++
	return f.keywordHits, f.keywordErr
}

const testDims = 4

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3, 0.4}
}

func chunkWithId(id string) Chunk {
	return Chunk{Id: uuid.MustParse(id), Content: "content"}
}

func TestFuseWeightedSum(t *testing.T) {
	// semantic 0.9, keyword absent, weights (0.7, 0.3) -> combined 0.63
	searcher := &fakeSearcher{
		semanticHits: []StoreHit{{Chunk: chunkWithId("11111111-1111-1111-1111-111111111111"), Score: 0.9}},
	}
	engine := NewFusionEngine(searcher, testDims)

	cfg := DefaultFusionConfig()
	cfg.SimilarityThreshold = 0.5

	candidates, err := engine.Fuse(context.Background(), uuid.New(), "query", testVector(), cfg)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.InDelta(t, 0.63, candidates[0].CombinedScore, 1e-9)
	assert.InDelta(t, 0.9, candidates[0].SemanticScore, 1e-9)
	assert.Equal(t, 0.0, candidates[0].KeywordScore)
}

func TestFuseFullOuterUnion(t *testing.T) {
	both := chunkWithId("11111111-1111-1111-1111-111111111111")
	semOnly := chunkWithId("22222222-2222-2222-2222-222222222222")
	kwOnly := chunkWithId("33333333-3333-3333-3333-333333333333")

	searcher := &fakeSearcher{
		semanticHits: []StoreHit{{Chunk: both, Score: 0.8}, {Chunk: semOnly, Score: 0.9}},
		keywordHits:  []StoreHit{{Chunk: both, Score: 0.7}, {Chunk: kwOnly, Score: 0.95}},
	}
	engine := NewFusionEngine(searcher, testDims)

	cfg := DefaultFusionConfig()
	cfg.SimilarityThreshold = 0 // keep everything

	candidates, err := engine.Fuse(context.Background(), uuid.New(), "query", testVector(), cfg)
	require.NoError(t, err)
	require.Len(t, candidates, 3, "a chunk found by only one channel must not be dropped")

	byId := make(map[uuid.UUID]ScoredCandidate)
	for _, c := range candidates {
		byId[c.Chunk.Id] = c
	}

	assert.InDelta(t, 0.8*0.7+0.7*0.3, byId[both.Id].CombinedScore, 1e-9)

	// Missing channel scores are exactly 0, never omitted.
	assert.Equal(t, 0.0, byId[semOnly.Id].KeywordScore)
	assert.InDelta(t, 0.9*0.7, byId[semOnly.Id].CombinedScore, 1e-9)
	assert.Equal(t, 0.0, byId[kwOnly.Id].SemanticScore)
	assert.InDelta(t, 0.95*0.3, byId[kwOnly.Id].CombinedScore, 1e-9)
}

func TestFuseThresholdFiltering(t *testing.T) {
	searcher := &fakeSearcher{
		semanticHits: []StoreHit{
			{Chunk: chunkWithId("11111111-1111-1111-1111-111111111111"), Score: 0.9},
			{Chunk: chunkWithId("22222222-2222-2222-2222-222222222222"), Score: 0.5},
		},
	}
	engine := NewFusionEngine(searcher, testDims)

	cfg := DefaultFusionConfig()
	cfg.SimilarityThreshold = 0.6

	candidates, err := engine.Fuse(context.Background(), uuid.New(), "query", testVector(), cfg)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.GreaterOrEqual(t, candidates[0].CombinedScore, cfg.SimilarityThreshold)
}

func TestFuseNoCandidatesAboveThresholdIsEmptyNotError(t *testing.T) {
	searcher := &fakeSearcher{
		semanticHits: []StoreHit{{Chunk: chunkWithId("11111111-1111-1111-1111-111111111111"), Score: 0.9}},
		keywordHits:  []StoreHit{{Chunk: chunkWithId("22222222-2222-2222-2222-222222222222"), Score: 0.9}},
	}
	engine := NewFusionEngine(searcher, testDims)

	cfg := DefaultFusionConfig()
	cfg.SimilarityThreshold = 0.99

	candidates, err := engine.Fuse(context.Background(), uuid.New(), "query", testVector(), cfg)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFuseOrderingAndTieBreak(t *testing.T) {
	// Two chunks with identical scores: ties break ascending by chunk id.
	low := chunkWithId("0aaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	high := chunkWithId("fbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	top := chunkWithId("99999999-9999-9999-9999-999999999999")

	searcher := &fakeSearcher{
		semanticHits: []StoreHit{
			{Chunk: high, Score: 0.8},
			{Chunk: top, Score: 0.9},
			{Chunk: low, Score: 0.8},
		},
	}
	engine := NewFusionEngine(searcher, testDims)

	cfg := DefaultFusionConfig()
	cfg.SimilarityThreshold = 0

	candidates, err := engine.Fuse(context.Background(), uuid.New(), "query", testVector(), cfg)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, top.Id, candidates[0].Chunk.Id)
	assert.Equal(t, low.Id, candidates[1].Chunk.Id)
	assert.Equal(t, high.Id, candidates[2].Chunk.Id)

	// Descending by combined score throughout.
	for i := 1; i < len(candidates); i++ {
		assert.LessOrEqual(t, candidates[i].CombinedScore, candidates[i-1].CombinedScore)
	}
}

func TestFuseDimensionMismatchRejectedBeforeQuerying(t *testing.T) {
	searcher := &fakeSearcher{}
	engine := NewFusionEngine(searcher, testDims)

	_, err := engine.Fuse(context.Background(), uuid.New(), "query", []float32{0.1, 0.2}, DefaultFusionConfig())
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Zero(t, searcher.semanticCalls)
	assert.Zero(t, searcher.keywordCalls)
}

func TestFusePureModesSkipUnusedChannel(t *testing.T) {
	tests := []struct {
		name              string
		searchType        SearchType
		vector            []float32
		wantSemanticCalls int
		wantKeywordCalls  int
	}{
		{"semantic only", SearchTypeSemantic, testVector(), 1, 0},
		{"keyword only", SearchTypeKeyword, nil, 0, 1},
		{"hybrid", SearchTypeHybrid, testVector(), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			engine := NewFusionEngine(searcher, testDims)

			cfg := DefaultFusionConfig()
			cfg.SearchType = tt.searchType

			_, err := engine.Fuse(context.Background(), uuid.New(), "query", tt.vector, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSemanticCalls, searcher.semanticCalls)
			assert.Equal(t, tt.wantKeywordCalls, searcher.keywordCalls)
		})
	}
}

func TestFuseChannelErrorFailsWholeFusion(t *testing.T) {
	searcher := &fakeSearcher{
		semanticHits: []StoreHit{{Chunk: chunkWithId("11111111-1111-1111-1111-111111111111"), Score: 0.9}},
		keywordErr:   errors.New("tsquery syntax error"),
	}
	engine := NewFusionEngine(searcher, testDims)

	_, err := engine.Fuse(context.Background(), uuid.New(), "query", testVector(), DefaultFusionConfig())
	require.Error(t, err, "no silent partial results when a channel errors")
}

func TestFuseAllowPartialDegradesToSurvivingChannel(t *testing.T) {
	searcher := &fakeSearcher{
		semanticHits: []StoreHit{{Chunk: chunkWithId("11111111-1111-1111-1111-111111111111"), Score: 0.95}},
		keywordErr:   errors.New("store unavailable"),
	}
	engine := NewFusionEngine(searcher, testDims)

	cfg := DefaultFusionConfig()
	cfg.AllowPartial = true
	cfg.SimilarityThreshold = 0.5

	candidates, err := engine.Fuse(context.Background(), uuid.New(), "query", testVector(), cfg)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	// Both channels failing is still an error even in degraded mode.
	searcher.semanticErr = errors.New("store unavailable")
	_, err = engine.Fuse(context.Background(), uuid.New(), "query", testVector(), cfg)
	require.Error(t, err)
}

func TestFusePoolCap(t *testing.T) {
	var hits []StoreHit
	for i := 0; i < 30; i++ {
		hits = append(hits, StoreHit{
			Chunk: chunkWithId(fmt.Sprintf("%08d-0000-0000-0000-000000000000", i)),
			Score: 0.9,
		})
	}
	searcher := &fakeSearcher{semanticHits: hits}
	engine := NewFusionEngine(searcher, testDims)

	cfg := DefaultFusionConfig()
	cfg.SimilarityThreshold = 0
	cfg.MaxResults = 10

	candidates, err := engine.Fuse(context.Background(), uuid.New(), "query", testVector(), cfg)
	require.NoError(t, err)
	assert.Len(t, candidates, 10)

	// With a re-ranker downstream the pool doubles so re-ranking can pull
	// results up from below the final cut.
	cfg.ExpandForRerank = true
	candidates, err = engine.Fuse(context.Background(), uuid.New(), "query", testVector(), cfg)
	require.NoError(t, err)
	assert.Len(t, candidates, 20)
}
