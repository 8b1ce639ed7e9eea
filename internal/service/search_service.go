package service

import (
	"context"
	"fmt"
	"strings"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/rag/access"
	"ai-docchat-be/pkg/retrieval"

	"github.com/google/uuid"
)

type ISearchService interface {
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)

	// Retrieve runs the default hybrid pipeline without usage accounting.
	// It backs internal callers such as the chat flow, which meter usage
	// on their own terms.
	Retrieve(ctx context.Context, userId uuid.UUID, query string, maxResults int) ([]retrieval.SearchResult, error)
}

type searchService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	accessVerifier    *access.Verifier
	reranker          *retrieval.HeuristicReranker
	dimensions        int
	fusionDefaults    retrieval.FusionConfig
	rerankConfig      retrieval.RerankConfig
	logger            logger.ILogger
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	accessVerifier *access.Verifier,
	dimensions int,
	fusionDefaults retrieval.FusionConfig,
	rerankConfig retrieval.RerankConfig,
	sysLogger logger.ILogger,
) ISearchService {
	return &searchService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		accessVerifier:    accessVerifier,
		reranker:          retrieval.NewHeuristicReranker(),
		dimensions:        dimensions,
		fusionDefaults:    fusionDefaults,
		rerankConfig:      rerankConfig,
		logger:            sysLogger,
	}
}

// chunkSearcher adapts the chunk repository to the fusion engine's contract.
type chunkSearcher struct {
	repo contract.DocumentChunkRepository
}

func (s *chunkSearcher) SemanticSearch(ctx context.Context, vector []float32, userId uuid.UUID, threshold float64, limit int) ([]retrieval.StoreHit, error) {
	scored, err := s.repo.SemanticSearchWithScore(ctx, vector, limit, userId, threshold)
	if err != nil {
		return nil, err
	}
	return toStoreHits(scored), nil
}

func (s *chunkSearcher) KeywordSearch(ctx context.Context, query string, userId uuid.UUID, limit int) ([]retrieval.StoreHit, error) {
	scored, err := s.repo.KeywordSearchWithScore(ctx, query, limit, userId)
	if err != nil {
		return nil, err
	}
	return toStoreHits(scored), nil
}

func toStoreHits(scored []*contract.ScoredChunk) []retrieval.StoreHit {
	hits := make([]retrieval.StoreHit, len(scored))
	for i, sc := range scored {
		hits[i] = retrieval.StoreHit{
			Chunk: retrieval.Chunk{
				Id:         sc.Chunk.Id,
				DocumentId: sc.Chunk.DocumentId,
				Filename:   sc.Filename,
				ChunkIndex: sc.Chunk.ChunkIndex,
				Page:       sc.Chunk.Page,
				Content:    sc.Chunk.Content,
			},
			Score: sc.Score,
		}
	}
	return hits
}

func (s *searchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	if s.accessVerifier != nil {
		if err := s.accessVerifier.VerifySearchLimit(ctx, userId); err != nil {
			return nil, err
		}
	}

	cfg := s.fusionConfig(req)
	enableReranking := req.EnableReranking == nil || *req.EnableReranking

	results, err := s.run(ctx, userId, query, cfg, enableReranking)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("search", "search executed", map[string]interface{}{
			"user_id":       userId.String(),
			"search_type":   string(cfg.SearchType),
			"reranked":      enableReranking,
			"results_count": len(results),
		})
	}

	if s.accessVerifier != nil {
		// Usage accounting is best effort, a failed increment never fails
		// the search itself.
		_ = s.accessVerifier.IncrementSearchUsage(ctx, userId)
	}

	return &dto.SearchResponse{
		Results:      toSearchResultDTOs(results),
		ResultsCount: len(results),
		SearchMethod: searchMethod(cfg.SearchType, enableReranking),
	}, nil
}

func (s *searchService) Retrieve(ctx context.Context, userId uuid.UUID, query string, maxResults int) ([]retrieval.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	cfg := s.fusionDefaults
	if maxResults > 0 {
		cfg.MaxResults = maxResults
	}

	return s.run(ctx, userId, query, cfg, true)
}

// run is the shared pipeline: embed, fuse, optionally rerank, assemble.
func (s *searchService) run(
	ctx context.Context,
	userId uuid.UUID,
	query string,
	cfg retrieval.FusionConfig,
	enableReranking bool,
) ([]retrieval.SearchResult, error) {
	cfg.ExpandForRerank = enableReranking

	// Keyword-only searches never touch the embedding provider.
	var queryVector []float32
	if cfg.SearchType != retrieval.SearchTypeKeyword {
		res, err := s.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		queryVector = res.Embedding.Values
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	engine := retrieval.NewFusionEngine(&chunkSearcher{repo: uow.DocumentChunkRepository()}, s.dimensions)

	candidates, err := engine.Fuse(ctx, userId, query, queryVector, cfg)
	if err != nil {
		return nil, err
	}

	if enableReranking {
		reranked := s.reranker.Rerank(query, candidates, s.rerankConfig)
		return retrieval.AssembleReranked(reranked, cfg.MaxResults), nil
	}
	return retrieval.AssembleScored(candidates, cfg.MaxResults), nil
}

func (s *searchService) fusionConfig(req *dto.SearchRequest) retrieval.FusionConfig {
	cfg := s.fusionDefaults

	if req.SearchType != "" {
		cfg.SearchType = retrieval.SearchType(req.SearchType)
	}
	if req.MaxResults > 0 {
		cfg.MaxResults = req.MaxResults
	}
	if req.SemanticWeight != nil {
		cfg.SemanticWeight = *req.SemanticWeight
	}
	if req.KeywordWeight != nil {
		cfg.KeywordWeight = *req.KeywordWeight
	}
	if req.SimilarityThreshold != nil {
		cfg.SimilarityThreshold = *req.SimilarityThreshold
	}

	return cfg
}

func searchMethod(searchType retrieval.SearchType, reranked bool) string {
	method := string(searchType)
	if reranked {
		method += " + reranked"
	}
	return method
}

func toSearchResultDTOs(results []retrieval.SearchResult) []dto.SearchResultDTO {
	out := make([]dto.SearchResultDTO, len(results))
	for i, r := range results {
		item := dto.SearchResultDTO{
			ChunkId:    r.Chunk.Id,
			DocumentId: r.Chunk.DocumentId,
			Filename:   r.Chunk.Filename,
			ChunkIndex: r.Chunk.ChunkIndex,
			Page:       r.Chunk.Page,
			Text:       r.Chunk.Content,
			Scores: dto.ScoreBreakdownDTO{
				Semantic: r.Scores.Semantic,
				Keyword:  r.Scores.Keyword,
				Combined: r.Scores.Combined,
				Final:    r.Scores.Final,
			},
		}
		if r.Factors != nil {
			item.RerankingFactors = &dto.RerankingFactorsDTO{
				LengthPenalty:  r.Factors.LengthPenalty,
				PositionBoost:  r.Factors.PositionBoost,
				KeywordDensity: r.Factors.KeywordDensity,
				QueryCoverage:  r.Factors.QueryCoverage,
			}
		}
		out[i] = item
	}
	return out
}
