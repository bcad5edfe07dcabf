package driven

import (
	"context"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// Encyclopedia is the remote article source.
// A false boolean means "no such article" and is not an error.
type Encyclopedia interface {
	// SearchTitle returns the best match for a free-text query.
	SearchTitle(ctx context.Context, query string) (domain.ArticleRef, bool, error)

	// FetchSummary returns the lead paragraph of an article.
	// Disambiguation pages and articles without an intro report false.
	FetchSummary(ctx context.Context, pageID string) (string, bool, error)

	// TitleByPageID resolves the canonical title of an article.
	TitleByPageID(ctx context.Context, pageID string) (string, bool, error)

	// ArticleURL returns the reader-facing URL of an article.
	ArticleURL(pageID string) string
}
