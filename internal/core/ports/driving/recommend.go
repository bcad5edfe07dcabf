package driving

import (
	"context"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// RecommendationService turns an article title into related articles.
type RecommendationService interface {
	// Recommend returns at most opts.MaxResults articles similar to title,
	// in similarity order, never including title itself.
	Recommend(ctx context.Context, title string, opts domain.RecommendOptions) ([]domain.Recommendation, error)
}
