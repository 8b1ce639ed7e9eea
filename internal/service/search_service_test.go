package service

import (
	"context"
	"testing"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChunkRepo struct {
	contract.DocumentChunkRepository

	semanticHits  []*contract.ScoredChunk
	keywordHits   []*contract.ScoredChunk
	semanticCalls int
	keywordCalls  int
}

func (f *fakeChunkRepo) SemanticSearchWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredChunk, error) {
	f.semanticCalls++
	return f.semanticHits, nil
}

func (f *fakeChunkRepo) KeywordSearchWithScore(ctx context.Context, query string, limit int, userId uuid.UUID) ([]*contract.ScoredChunk, error) {
	f.keywordCalls++
	return f.keywordHits, nil
}

type fakeUow struct {
	unitofwork.UnitOfWork

	chunkRepo *fakeChunkRepo
}

func (f *fakeUow) DocumentChunkRepository() contract.DocumentChunkRepository {
	return f.chunkRepo
}

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeEmbedder struct {
	vector []float32
	calls  int
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vector},
	}, nil
}

func scoredChunk(score float64, content string) *contract.ScoredChunk {
	return &contract.ScoredChunk{
		Chunk: &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: uuid.New(),
			Content:    content,
		},
		Filename: "notes.txt",
		Score:    score,
	}
}

func newTestSearchService(repo *fakeChunkRepo, embedder *fakeEmbedder, dims int) ISearchService {
	return NewSearchService(
		&fakeUowFactory{uow: &fakeUow{chunkRepo: repo}},
		embedder,
		nil,
		dims,
		retrieval.DefaultFusionConfig(),
		retrieval.DefaultRerankConfig(),
		nil,
	)
}

func TestSearchHybridReranked(t *testing.T) {
	repo := &fakeChunkRepo{
		semanticHits: []*contract.ScoredChunk{scoredChunk(0.9, "the quick brown fox")},
	}
	embedder := &fakeEmbedder{vector: make([]float32, 4)}
	svc := newTestSearchService(repo, embedder, 4)

	res, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "quick fox"})
	require.NoError(t, err)

	assert.Equal(t, "hybrid + reranked", res.SearchMethod)
	assert.Equal(t, 1, res.ResultsCount)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "notes.txt", res.Results[0].Filename)
	assert.NotNil(t, res.Results[0].RerankingFactors)
	assert.Equal(t, 1, repo.semanticCalls)
	assert.Equal(t, 1, repo.keywordCalls)
}

func TestSearchKeywordModeSkipsEmbedding(t *testing.T) {
	repo := &fakeChunkRepo{
		keywordHits: []*contract.ScoredChunk{scoredChunk(0.8, "gorm migration guide")},
	}
	embedder := &fakeEmbedder{vector: make([]float32, 4)}
	svc := newTestSearchService(repo, embedder, 4)

	threshold := 0.5
	keywordWeight := 1.0
	res, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{
		Query:               "migration",
		SearchType:          "keyword",
		KeywordWeight:       &keywordWeight,
		SimilarityThreshold: &threshold,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, embedder.calls)
	assert.Equal(t, 0, repo.semanticCalls)
	assert.Equal(t, 1, repo.keywordCalls)
	require.Len(t, res.Results, 1)
	assert.Zero(t, res.Results[0].Scores.Semantic)
}

func TestSearchRerankingDisabled(t *testing.T) {
	repo := &fakeChunkRepo{
		semanticHits: []*contract.ScoredChunk{scoredChunk(0.95, "alpha")},
	}
	embedder := &fakeEmbedder{vector: make([]float32, 4)}
	svc := newTestSearchService(repo, embedder, 4)

	disabled := false
	res, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{
		Query:           "alpha",
		EnableReranking: &disabled,
	})
	require.NoError(t, err)

	assert.Equal(t, "hybrid", res.SearchMethod)
	require.Len(t, res.Results, 1)
	assert.Nil(t, res.Results[0].RerankingFactors)
	assert.Equal(t, res.Results[0].Scores.Combined, res.Results[0].Scores.Final)
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	repo := &fakeChunkRepo{}
	embedder := &fakeEmbedder{vector: make([]float32, 4)}
	svc := newTestSearchService(repo, embedder, 4)

	_, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "   "})
	assert.Error(t, err)
	assert.Equal(t, 0, embedder.calls)
}

func TestSearchDimensionMismatchSurfaces(t *testing.T) {
	repo := &fakeChunkRepo{}
	embedder := &fakeEmbedder{vector: make([]float32, 3)}
	svc := newTestSearchService(repo, embedder, 4)

	_, err := svc.Search(context.Background(), uuid.New(), &dto.SearchRequest{Query: "anything"})
	require.Error(t, err)
	assert.ErrorIs(t, err, retrieval.ErrDimensionMismatch)
	assert.Equal(t, 0, repo.semanticCalls)
}

func TestRetrieveUsesDefaults(t *testing.T) {
	repo := &fakeChunkRepo{
		semanticHits: []*contract.ScoredChunk{scoredChunk(0.9, "grounding chunk")},
	}
	embedder := &fakeEmbedder{vector: make([]float32, 4)}
	svc := newTestSearchService(repo, embedder, 4)

	results, err := svc.Retrieve(context.Background(), uuid.New(), "grounding", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotNil(t, results[0].Factors)
}
