package driving

import (
	"context"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// ExplorerService is the reading flow: find an article, show its summary
// and related articles, and remember the visit.
type ExplorerService interface {
	// Lookup resolves a free-text query to an article.
	// Returns domain.ErrNotFound when nothing matches and domain.ErrAmbiguous
	// for disambiguation pages.
	Lookup(ctx context.Context, sessionID, query string) (*domain.ArticleView, error)

	// Open shows an article by page id, as when a recommendation is chosen.
	Open(ctx context.Context, sessionID, pageID string) (*domain.ArticleView, error)
}
