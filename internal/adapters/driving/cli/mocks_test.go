package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
	"github.com/custodia-labs/wikirec/internal/core/services"
)

type mockRecommender struct {
	recs     []domain.Recommendation
	err      error
	gotTitle string
	gotOpts  domain.RecommendOptions
}

func (m *mockRecommender) Recommend(_ context.Context, title string, opts domain.RecommendOptions) ([]domain.Recommendation, error) {
	m.gotTitle, m.gotOpts = title, opts
	if m.err != nil {
		return nil, m.err
	}
	return m.recs, nil
}

type mockExplorer struct {
	view       *domain.ArticleView
	err        error
	gotSession string
	gotQuery   string
	gotPageID  string
}

func (m *mockExplorer) Lookup(_ context.Context, sessionID, query string) (*domain.ArticleView, error) {
	m.gotSession, m.gotQuery = sessionID, query
	return m.view, m.err
}

func (m *mockExplorer) Open(_ context.Context, sessionID, pageID string) (*domain.ArticleView, error) {
	m.gotSession, m.gotPageID = sessionID, pageID
	return m.view, m.err
}

type mockHistory struct {
	mu      sync.Mutex
	entries map[string][]domain.HistoryEntry
	err     error
}

func (m *mockHistory) Append(_ context.Context, sessionID, title, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = append(m.entries[sessionID], domain.HistoryEntry{Title: title, URL: url})
	return m.err
}

func (m *mockHistory) Get(_ context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := m.entries[sessionID]
	if out == nil {
		out = []domain.HistoryEntry{}
	}
	return out, nil
}

func (m *mockHistory) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries[sessionID] = []domain.HistoryEntry{}
	return nil
}

type mockCatalog struct {
	info    driving.CatalogInfo
	err     error
	reloads int
}

func (m *mockCatalog) Info() (driving.CatalogInfo, error) {
	return m.info, m.err
}

func (m *mockCatalog) Reload(_ context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.reloads++
	m.info.Version++
	return nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	recommender *mockRecommender
	explorer    *mockExplorer
	history     *mockHistory
	catalog     *mockCatalog
	settings    *services.SettingsService
	config      *memory.ConfigStore
	out         *bytes.Buffer
}

func moscowView() *domain.ArticleView {
	return &domain.ArticleView{
		Title:   "Moscow",
		PageID:  "1",
		URL:     "https://ru.wikipedia.org/wiki?curid=1",
		Summary: "Capital of Russia.",
		Recommendations: []domain.Recommendation{
			{Title: "Saint Petersburg", ID: "2"},
			{Title: "Kazan", ID: "3"},
		},
	}
}

// setupTestServices installs mock services, resets flag variables and
// captures command output. The returned func restores a clean state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		recommender: &mockRecommender{recs: []domain.Recommendation{
			{Title: "Saint Petersburg", ID: "2"},
			{Title: "Kazan", ID: "3"},
			{Title: "Novosibirsk", ID: "4"},
		}},
		explorer: &mockExplorer{view: moscowView()},
		history:  &mockHistory{entries: map[string][]domain.HistoryEntry{}},
		catalog: &mockCatalog{info: driving.CatalogInfo{
			Records:   6,
			Dimension: 2,
			Backend:   domain.IndexBackendLSH,
			Config:    domain.DefaultIndexConfig(2),
			Version:   1,
		}},
		config: memory.NewConfigStore(),
		out:    new(bytes.Buffer),
	}
	ts.settings = services.NewSettingsService(ts.config)

	SetServices(&Services{
		Recommend: ts.recommender,
		Explorer:  ts.explorer,
		History:   ts.history,
		Catalog:   ts.catalog,
	})
	SetSettingsService(ts.settings)
	resetFlags()

	rootCmd.SetOut(ts.out)
	rootCmd.SetErr(ts.out)
	rootCmd.SetIn(strings.NewReader(""))

	return ts, func() {
		SetServices(nil)
		SetSettingsService(nil)
		SetBootstrap(nil)
		SetHistoryBootstrap(nil)
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	}
}

func resetFlags() {
	sessionID = DefaultSessionID
	verbose = false
	recommendK = domain.DefaultNeighbours
	recommendMax = domain.DefaultMaxRecommendations
	recommendJSON = false
	exploreJSON = false
	historyJSON = false
}

// execute runs the root command with args and returns its output.
func execute(ts *testServices, args ...string) (string, error) {
	ts.out.Reset()
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return ts.out.String(), err
}
