package mcp

import (
	"context"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
)

// mockRecommendationService is a mock implementation of driving.RecommendationService.
type mockRecommendationService struct {
	recs     []domain.Recommendation
	err      error
	lastOpts domain.RecommendOptions
}

func (m *mockRecommendationService) Recommend(
	_ context.Context,
	_ string,
	opts domain.RecommendOptions,
) ([]domain.Recommendation, error) {
	m.lastOpts = opts
	return m.recs, m.err
}

// mockExplorerService is a mock implementation of driving.ExplorerService.
type mockExplorerService struct {
	view        *domain.ArticleView
	err         error
	lastSession string
}

func (m *mockExplorerService) Lookup(_ context.Context, sessionID, _ string) (*domain.ArticleView, error) {
	m.lastSession = sessionID
	return m.view, m.err
}

func (m *mockExplorerService) Open(_ context.Context, sessionID, _ string) (*domain.ArticleView, error) {
	m.lastSession = sessionID
	return m.view, m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	entries map[string][]domain.HistoryEntry
	err     error
}

func (m *mockHistoryService) Append(_ context.Context, sessionID, title, url string) error {
	if m.err != nil {
		return m.err
	}
	m.entries[sessionID] = append(m.entries[sessionID], domain.HistoryEntry{Title: title, URL: url})
	return nil
}

func (m *mockHistoryService) Get(_ context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.HistoryEntry{}, m.entries[sessionID]...), nil
}

func (m *mockHistoryService) Clear(_ context.Context, sessionID string) error {
	if m.err != nil {
		return m.err
	}
	m.entries[sessionID] = []domain.HistoryEntry{}
	return nil
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	info driving.CatalogInfo
	err  error
}

func (m *mockCatalogService) Info() (driving.CatalogInfo, error) {
	return m.info, m.err
}

func (m *mockCatalogService) Reload(_ context.Context) error {
	return m.err
}
