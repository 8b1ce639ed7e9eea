package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrDimensionMismatch is returned when the query vector's dimensionality
// does not match the store's embeddings. This is a caller contract
// violation and is rejected before any store query is issued.
var ErrDimensionMismatch = errors.New("query vector dimensionality does not match stored embeddings")

// ChunkSearcher is the narrow contract the fusion engine consumes from the
// chunk store. Both searches are scoped to a single user and return scores
// already normalized to [0,1].
type ChunkSearcher interface {
	SemanticSearch(ctx context.Context, vector []float32, userId uuid.UUID, threshold float64, limit int) ([]StoreHit, error)
	KeywordSearch(ctx context.Context, query string, userId uuid.UUID, limit int) ([]StoreHit, error)
}

// FusionEngine merges semantic and keyword retrieval into one ranked,
// deduplicated candidate list per query.
type FusionEngine struct {
	searcher   ChunkSearcher
	dimensions int
}

// NewFusionEngine creates a fusion engine bound to a chunk searcher.
// dimensions is the fixed embedding dimensionality of the store.
func NewFusionEngine(searcher ChunkSearcher, dimensions int) *FusionEngine {
	return &FusionEngine{
		searcher:   searcher,
		dimensions: dimensions,
	}
}

// Fuse runs the configured retrieval channels, merges their hits by chunk
// identity (full outer union, missing scores filled with 0), computes the
// weighted combined score, filters by the similarity threshold and returns
// candidates ordered descending by combined score. Exact ties are broken by
// chunk id so the ordering is reproducible.
//
// For pure semantic or keyword modes the unused channel is skipped
// entirely, not merely zero-weighted. queryVector may be nil in keyword
// mode.
func (e *FusionEngine) Fuse(
	ctx context.Context,
	userId uuid.UUID,
	query string,
	queryVector []float32,
	cfg FusionConfig,
) ([]ScoredCandidate, error) {

	wantSemantic := cfg.SearchType != SearchTypeKeyword
	wantKeyword := cfg.SearchType != SearchTypeSemantic

	if wantSemantic && len(queryVector) != e.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(queryVector), e.dimensions)
	}

	semanticWeight := cfg.SemanticWeight
	keywordWeight := cfg.KeywordWeight
	if !wantSemantic {
		semanticWeight = 0
	}
	if !wantKeyword {
		keywordWeight = 0
	}

	limit := e.poolSize(cfg)

	// The two retrievals are data-independent; issue them concurrently and
	// wait for both before merging. There is no streaming partial fusion.
	var semHits, kwHits []StoreHit
	var semErr, kwErr error

	g, gctx := errgroup.WithContext(ctx)
	if wantSemantic {
		g.Go(func() error {
			hits, err := e.searcher.SemanticSearch(gctx, queryVector, userId, 0, limit)
			if err != nil {
				if cfg.AllowPartial {
					semErr = err
					return nil
				}
				return fmt.Errorf("semantic retrieval: %w", err)
			}
			semHits = hits
			return nil
		})
	}
	if wantKeyword {
		g.Go(func() error {
			hits, err := e.searcher.KeywordSearch(gctx, query, userId, limit)
			if err != nil {
				if cfg.AllowPartial {
					kwErr = err
					return nil
				}
				return fmt.Errorf("keyword retrieval: %w", err)
			}
			kwHits = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if semErr != nil && kwErr != nil {
		return nil, fmt.Errorf("both retrieval channels failed: semantic: %v; keyword: %w", semErr, kwErr)
	}
	if wantSemantic && !wantKeyword && semErr != nil {
		return nil, fmt.Errorf("semantic retrieval: %w", semErr)
	}
	if wantKeyword && !wantSemantic && kwErr != nil {
		return nil, fmt.Errorf("keyword retrieval: %w", kwErr)
	}

	// Full outer union keyed by chunk identity. A chunk seen by only one
	// channel keeps 0 for the other channel's score; nothing is dropped.
	merged := make(map[uuid.UUID]*ScoredCandidate, len(semHits)+len(kwHits))
	for _, h := range semHits {
		merged[h.Chunk.Id] = &ScoredCandidate{
			Chunk:         h.Chunk,
			SemanticScore: clamp01(h.Score),
		}
	}
	for _, h := range kwHits {
		c, ok := merged[h.Chunk.Id]
		if !ok {
			c = &ScoredCandidate{Chunk: h.Chunk}
			merged[h.Chunk.Id] = c
		}
		c.KeywordScore = clamp01(h.Score)
	}

	candidates := make([]ScoredCandidate, 0, len(merged))
	for _, c := range merged {
		c.CombinedScore = c.SemanticScore*semanticWeight + c.KeywordScore*keywordWeight
		if c.CombinedScore >= cfg.SimilarityThreshold {
			candidates = append(candidates, *c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CombinedScore != candidates[j].CombinedScore {
			return candidates[i].CombinedScore > candidates[j].CombinedScore
		}
		return candidates[i].Chunk.Id.String() < candidates[j].Chunk.Id.String()
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

// poolSize is the post-fusion cap: MaxResults, widened to 2x when a
// re-ranker will reorder the pool before final truncation.
func (e *FusionEngine) poolSize(cfg FusionConfig) int {
	max := cfg.MaxResults
	if max <= 0 {
		max = DefaultFusionConfig().MaxResults
	}
	if cfg.ExpandForRerank {
		return max * 2
	}
	return max
}
