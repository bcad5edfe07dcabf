package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
	"github.com/custodia-labs/wikirec/internal/logger"
)

// Ensure ExplorerService implements the interface.
var _ driving.ExplorerService = (*ExplorerService)(nil)

// unknownTitle stands in for an article whose title could not be resolved.
const unknownTitle = "?"

// ExplorerService drives the reading flow: resolve an article, show its
// lead paragraph with related articles, and record the visit.
type ExplorerService struct {
	wiki        driven.Encyclopedia
	recommender driving.RecommendationService
	history     driving.HistoryService
	opts        domain.RecommendOptions
}

// NewExplorerService creates an explorer. history may be nil, in which
// case visits are not recorded.
func NewExplorerService(
	wiki driven.Encyclopedia,
	recommender driving.RecommendationService,
	history driving.HistoryService,
	opts domain.RecommendOptions,
) *ExplorerService {
	return &ExplorerService{
		wiki:        wiki,
		recommender: recommender,
		history:     history,
		opts:        opts.WithDefaults(),
	}
}

// Lookup searches the encyclopedia for query.
func (s *ExplorerService) Lookup(ctx context.Context, sessionID, query string) (*domain.ArticleView, error) {
	if s.wiki == nil {
		return nil, fmt.Errorf("%w: encyclopedia not configured", domain.ErrNotImplemented)
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	logger.Section("Lookup")
	logger.Debug("session=%s query=%q", sessionID, q)

	ref, found, err := s.wiki.SearchTitle(ctx, q)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: no article matches %q", domain.ErrNotFound, q)
	}

	summary, ok, err := s.wiki.FetchSummary(ctx, ref.PageID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q has many meanings", domain.ErrAmbiguous, ref.Title)
	}

	return s.view(ctx, sessionID, ref.Title, ref.PageID, summary)
}

// Open shows the article with the given page id. Title and summary lookups
// that fail degrade to placeholders rather than failing the request.
func (s *ExplorerService) Open(ctx context.Context, sessionID, pageID string) (*domain.ArticleView, error) {
	if s.wiki == nil {
		return nil, fmt.Errorf("%w: encyclopedia not configured", domain.ErrNotImplemented)
	}
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return nil, fmt.Errorf("%w: empty page id", domain.ErrInvalidInput)
	}

	logger.Section("Open")
	logger.Debug("session=%s page=%s", sessionID, pageID)

	title, ok, err := s.wiki.TitleByPageID(ctx, pageID)
	if err != nil {
		logger.Warn("title for page %s: %v", pageID, err)
	}
	if err != nil || !ok || title == "" {
		title = unknownTitle
	}

	summary, ok, err := s.wiki.FetchSummary(ctx, pageID)
	if err != nil {
		logger.Warn("summary for page %s: %v", pageID, err)
	}
	if err != nil || !ok {
		summary = ""
	}

	return s.view(ctx, sessionID, title, pageID, summary)
}

func (s *ExplorerService) view(
	ctx context.Context,
	sessionID, title, pageID, summary string,
) (*domain.ArticleView, error) {
	recs, err := s.recommender.Recommend(ctx, title, s.opts)
	if err != nil {
		logger.L().Error().
			Err(err).
			Str("session", sessionID).
			Str("title", title).
			Msg("recommend failed")
		return nil, err
	}

	v := &domain.ArticleView{
		Title:           title,
		PageID:          pageID,
		URL:             s.wiki.ArticleURL(pageID),
		Summary:         summary,
		Recommendations: recs,
	}

	if s.history != nil {
		if err := s.history.Append(ctx, sessionID, v.Title, v.URL); err != nil {
			// The reader still gets the article.
			logger.Warn("history append for session %s: %v", sessionID, err)
		}
	}
	return v, nil
}
