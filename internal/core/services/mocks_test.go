package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/dataset"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/index/flat"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
)

// --- Fixtures ---

// cityCatalog is ordered by inner product with [1, 0].
var cityCatalog = []struct {
	id, title string
	vec       []float32
}{
	{"1", "Moscow", []float32{1, 0}},
	{"2", "Saint Petersburg", []float32{0.9, 0.1}},
	{"3", "Kazan", []float32{0.8, 0.2}},
	{"4", "Novosibirsk", []float32{0.7, 0.3}},
	{"5", "Omsk", []float32{0.6, 0.4}},
	{"6", "Banana", []float32{0, 1}},
}

func newCityStore(t *testing.T) *dataset.Store {
	t.Helper()
	meta := make([]domain.ArticleMeta, len(cityCatalog))
	vecs := make([][]float32, len(cityCatalog))
	for i, c := range cityCatalog {
		meta[i] = domain.ArticleMeta{ID: c.id, Title: c.title}
		vecs[i] = c.vec
	}
	store, err := dataset.New(meta, vecs)
	require.NoError(t, err)
	return store
}

func staticLoader(store driven.VectorStore) CatalogLoader {
	return func(context.Context) (driven.VectorStore, error) {
		return store, nil
	}
}

func newLoadedCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog(CatalogOptions{
		Load:    staticLoader(newCityStore(t)),
		Build:   flat.BuildIndex,
		Backend: domain.IndexBackendFlat,
	})
	require.NoError(t, c.Reload(context.Background()))
	return c
}

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Unknown texts embed to [1, 0].
type mockEmbeddingService struct {
	vectors  map[string][]float32
	embedErr error
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 2
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// failingKVStore implements driven.KeyValueStore and fails every call
// while fail is set.
type failingKVStore struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

var errDiskFull = errors.New("disk full")

func newFailingKVStore() *failingKVStore {
	return &failingKVStore{data: make(map[string][]byte)}
}

func (s *failingKVStore) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *failingKVStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, false, errDiskFull
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *failingKVStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errDiskFull
	}
	s.data[key] = value
	return nil
}

func (s *failingKVStore) Update(_ context.Context, key string, fn driven.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errDiskFull
	}
	old, ok := s.data[key]
	value, err := fn(old, ok)
	if err != nil {
		return err
	}
	s.data[key] = value
	return nil
}

func (s *failingKVStore) Close() error {
	return nil
}

// slowKVStore wraps a store and stalls every read so that unsynchronised
// read-modify-write callers would interleave.
type slowKVStore struct {
	driven.KeyValueStore
	delay time.Duration
}

func (s *slowKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	time.Sleep(s.delay)
	return s.KeyValueStore.Get(ctx, key)
}

func (s *slowKVStore) Update(ctx context.Context, key string, fn driven.UpdateFunc) error {
	return s.KeyValueStore.Update(ctx, key, func(old []byte, ok bool) ([]byte, error) {
		time.Sleep(s.delay)
		return fn(old, ok)
	})
}

// mockEncyclopedia implements driven.Encyclopedia for testing.
type mockEncyclopedia struct {
	articles   map[string]domain.ArticleRef // query -> article
	summaries  map[string]string            // page id -> summary; missing means not ok
	titles     map[string]string            // page id -> title
	err        error
	titleErr   error
	lastQuery  string
	searchHits int
}

func (m *mockEncyclopedia) SearchTitle(_ context.Context, query string) (domain.ArticleRef, bool, error) {
	m.lastQuery = query
	m.searchHits++
	if m.err != nil {
		return domain.ArticleRef{}, false, m.err
	}
	ref, ok := m.articles[query]
	return ref, ok, nil
}

func (m *mockEncyclopedia) FetchSummary(_ context.Context, pageID string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	s, ok := m.summaries[pageID]
	return s, ok, nil
}

func (m *mockEncyclopedia) TitleByPageID(_ context.Context, pageID string) (string, bool, error) {
	if m.titleErr != nil {
		return "", false, m.titleErr
	}
	t, ok := m.titles[pageID]
	return t, ok, nil
}

func (m *mockEncyclopedia) ArticleURL(pageID string) string {
	return "https://ru.wikipedia.org/wiki?curid=" + pageID
}

// mockRecommender implements driving.RecommendationService for testing.
type mockRecommender struct {
	recs   []domain.Recommendation
	err    error
	titles []string
}

func (m *mockRecommender) Recommend(_ context.Context, title string, _ domain.RecommendOptions) ([]domain.Recommendation, error) {
	m.titles = append(m.titles, title)
	if m.err != nil {
		return nil, m.err
	}
	return m.recs, nil
}

// mockHistory implements driving.HistoryService for testing.
type mockHistory struct {
	entries   map[string][]domain.HistoryEntry
	appendErr error
}

func newMockHistory() *mockHistory {
	return &mockHistory{entries: make(map[string][]domain.HistoryEntry)}
}

func (m *mockHistory) Append(_ context.Context, sessionID, title, url string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries[sessionID] = append(m.entries[sessionID], domain.HistoryEntry{Title: title, URL: url})
	return nil
}

func (m *mockHistory) Get(_ context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	return append([]domain.HistoryEntry{}, m.entries[sessionID]...), nil
}

func (m *mockHistory) Clear(_ context.Context, sessionID string) error {
	m.entries[sessionID] = []domain.HistoryEntry{}
	return nil
}
