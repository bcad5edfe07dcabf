package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
	"github.com/custodia-labs/wikirec/internal/logger"
	"github.com/custodia-labs/wikirec/internal/metrics"
)

// Ensure RecommendationService implements the interface.
var _ driving.RecommendationService = (*RecommendationService)(nil)

// RecommendationService finds catalog articles related to a title.
type RecommendationService struct {
	catalog  *Catalog
	embedder driven.EmbeddingService
}

// NewRecommendationService creates a recommendation service over the
// catalog's current snapshot.
func NewRecommendationService(catalog *Catalog, embedder driven.EmbeddingService) *RecommendationService {
	return &RecommendationService{
		catalog:  catalog,
		embedder: embedder,
	}
}

// Recommend embeds title, fetches its nearest catalog neighbours and drops
// the title itself. The result keeps neighbour order and holds at most
// opts.MaxResults entries.
func (s *RecommendationService) Recommend(
	ctx context.Context,
	title string,
	opts domain.RecommendOptions,
) ([]domain.Recommendation, error) {
	start := time.Now()
	recs, err := s.recommend(ctx, title, opts.WithDefaults())
	metrics.RecordRecommendation(time.Since(start), len(recs), err)
	return recs, err
}

func (s *RecommendationService) recommend(
	ctx context.Context,
	title string,
	opts domain.RecommendOptions,
) ([]domain.Recommendation, error) {
	logger.Section("Recommend")
	logger.Debug("title=%q k=%d max=%d", title, opts.K, opts.MaxResults)

	snap, err := s.catalog.snapshot()
	if err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable)
	}

	vec, err := s.embedder.Embed(ctx, title)
	if err != nil {
		metrics.RecordEmbeddingFailure(s.embedder.ModelName())
		if !errors.Is(err, domain.ErrEmbedding) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		return nil, err
	}

	ids, err := snap.session.FindNearest(ctx, vec, opts.K)
	if err != nil {
		return nil, fmt.Errorf("find neighbours: %w", err)
	}

	metas, err := snap.store.MetadataAtMany(ids)
	if err != nil {
		return nil, fmt.Errorf("resolve neighbours: %w", err)
	}

	recs := make([]domain.Recommendation, 0, opts.MaxResults)
	for _, m := range metas {
		if strings.EqualFold(m.Title, title) {
			continue
		}
		recs = append(recs, domain.Recommendation{Title: m.Title, ID: m.ID})
		if len(recs) == opts.MaxResults {
			break
		}
	}

	logger.Debug("%d neighbours, %d recommendations", len(ids), len(recs))
	return recs, nil
}
