package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/dataset"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/index/flat"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/index/lsh"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
)

func TestCatalog_InfoBeforeReload(t *testing.T) {
	c := NewCatalog(CatalogOptions{})

	_, err := c.Info()

	assert.ErrorIs(t, err, domain.ErrNotBuilt)
}

func TestCatalog_Reload(t *testing.T) {
	c := newLoadedCatalog(t)

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, len(cityCatalog), info.Records)
	assert.Equal(t, 2, info.Dimension)
	assert.Equal(t, domain.IndexBackendFlat, info.Backend)
	assert.Equal(t, uint64(1), info.Version)
	assert.Equal(t, 2, info.Config.Dimension)

	require.NoError(t, c.Reload(context.Background()))
	info, err = c.Info()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.Version)
}

func TestCatalog_FailedReloadKeepsSnapshot(t *testing.T) {
	store := newCityStore(t)
	fail := false
	c := NewCatalog(CatalogOptions{
		Load: func(context.Context) (driven.VectorStore, error) {
			if fail {
				return nil, domain.ErrDataset
			}
			return store, nil
		},
		Build:   flat.BuildIndex,
		Backend: domain.IndexBackendFlat,
	})
	require.NoError(t, c.Reload(context.Background()))

	fail = true
	err := c.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataset)

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.Version)
	assert.Equal(t, len(cityCatalog), info.Records)
}

func TestCatalog_ReloadSwapsData(t *testing.T) {
	first := newCityStore(t)
	second, err := dataset.New(
		[]domain.ArticleMeta{{ID: "9", Title: "Vladivostok"}},
		[][]float32{{1, 0}},
	)
	require.NoError(t, err)

	current := driven.VectorStore(first)
	c := NewCatalog(CatalogOptions{
		Load: func(context.Context) (driven.VectorStore, error) {
			return current, nil
		},
		Build:   flat.BuildIndex,
		Backend: domain.IndexBackendFlat,
	})
	require.NoError(t, c.Reload(context.Background()))

	svc := NewRecommendationService(c, &mockEmbeddingService{})
	recs, err := svc.Recommend(context.Background(), "Anything", domain.DefaultRecommendOptions())
	require.NoError(t, err)
	assert.Equal(t, "Moscow", recs[0].Title)

	current = second
	require.NoError(t, c.Reload(context.Background()))

	recs, err = svc.Recommend(context.Background(), "Anything", domain.DefaultRecommendOptions())
	require.NoError(t, err)
	assert.Equal(t, []domain.Recommendation{{Title: "Vladivostok", ID: "9"}}, recs)
}

func TestCatalog_EmbedderDimensionMismatch(t *testing.T) {
	c := NewCatalog(CatalogOptions{
		Load:      staticLoader(newCityStore(t)),
		Build:     flat.BuildIndex,
		Backend:   domain.IndexBackendFlat,
		Dimension: 300,
	})

	err := c.Reload(context.Background())

	assert.ErrorIs(t, err, domain.ErrConfigDimension)
	_, err = c.Info()
	assert.ErrorIs(t, err, domain.ErrNotBuilt)
}

func TestCatalog_ConfigDimensionMismatch(t *testing.T) {
	c := NewCatalog(CatalogOptions{
		Load:    staticLoader(newCityStore(t)),
		Build:   lsh.BuildIndex,
		Backend: domain.IndexBackendLSH,
		Config:  domain.IndexConfig{Dimension: 3},
	})

	err := c.Reload(context.Background())

	assert.ErrorIs(t, err, domain.ErrConfigDimension)
}

func TestCatalog_LSHBackend(t *testing.T) {
	c := NewCatalog(CatalogOptions{
		Load:    staticLoader(newCityStore(t)),
		Build:   lsh.BuildIndex,
		Backend: domain.IndexBackendLSH,
		Config:  domain.IndexConfig{NumTables: 8, HashBits: 1, NumProbes: 16},
	})
	require.NoError(t, c.Reload(context.Background()))

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, domain.IndexBackendLSH, info.Backend)
	assert.Equal(t, 8, info.Config.NumTables)
	assert.Equal(t, 1, info.Config.NumHashFunctions)

	// One hash bit allows at most two buckets per table.
	require.Len(t, info.Buckets, 8)
	for _, n := range info.Buckets {
		assert.True(t, n >= 1 && n <= 2, "buckets %v", info.Buckets)
	}
}

func TestCatalog_FlatBackendHasNoBuckets(t *testing.T) {
	info, err := newLoadedCatalog(t).Info()
	require.NoError(t, err)
	assert.Nil(t, info.Buckets)
}

func TestCatalog_MissingParts(t *testing.T) {
	c := NewCatalog(CatalogOptions{Load: staticLoader(newCityStore(t))})

	err := c.Reload(context.Background())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalog_LoaderErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	c := NewCatalog(CatalogOptions{
		Load: func(context.Context) (driven.VectorStore, error) {
			return nil, boom
		},
		Build: flat.BuildIndex,
	})

	err := c.Reload(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load catalog")
}
