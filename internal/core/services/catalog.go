package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
	"github.com/custodia-labs/wikirec/internal/logger"
	"github.com/custodia-labs/wikirec/internal/metrics"
)

// Ensure Catalog implements the interface.
var _ driving.CatalogService = (*Catalog)(nil)

// CatalogLoader reads the vector store from its sources.
type CatalogLoader func(ctx context.Context) (driven.VectorStore, error)

// CatalogOptions configures a Catalog.
type CatalogOptions struct {
	// Load produces a fresh vector store on every reload.
	Load CatalogLoader

	// Build constructs the index over a loaded store.
	Build driven.IndexBuilder

	// Backend names the index implementation, for reporting.
	Backend domain.IndexBackend

	// Config holds index parameters. A zero Dimension takes the
	// dimension of the loaded store.
	Config domain.IndexConfig

	// Dimension, when positive, is the vector size the embedder produces.
	// Catalogs of any other dimension are rejected.
	Dimension int
}

// catalogSnapshot is one immutable generation of the catalog.
type catalogSnapshot struct {
	store   driven.VectorStore
	index   driven.ApproximateIndex
	session driven.QuerySession
	info    driving.CatalogInfo
}

// Catalog owns the current vector store and query session.
// Readers load the snapshot through an atomic pointer; Reload builds a new
// generation off to the side and swaps it in only when it is complete.
type Catalog struct {
	opts     CatalogOptions
	current  atomic.Pointer[catalogSnapshot]
	reloadMu sync.Mutex
	version  uint64
}

// NewCatalog creates a catalog. Nothing is loaded until Reload is called.
func NewCatalog(opts CatalogOptions) *Catalog {
	return &Catalog{opts: opts}
}

// Info describes the current snapshot.
func (c *Catalog) Info() (driving.CatalogInfo, error) {
	snap, err := c.snapshot()
	if err != nil {
		return driving.CatalogInfo{}, err
	}
	return snap.info, nil
}

// Reload loads the catalog, builds its index and swaps it in.
// A failed reload keeps the previous snapshot.
func (c *Catalog) Reload(ctx context.Context) error {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	reqID := uuid.NewString()
	logger.Section("Catalog Reload")
	logger.Debug("reload %s: loading dataset", reqID)

	snap, err := c.build(ctx)
	metrics.RecordCatalogReload(err)
	if err != nil {
		logger.Error(err, "reload %s failed, keeping previous catalog", reqID)
		return err
	}

	c.version++
	snap.info.Version = c.version
	c.current.Store(snap)

	logger.Info("reload %s: catalog v%d ready (%d records, dimension %d, backend %s)",
		reqID, snap.info.Version, snap.info.Records, snap.info.Dimension, snap.info.Backend)
	return nil
}

func (c *Catalog) build(ctx context.Context) (*catalogSnapshot, error) {
	if c.opts.Load == nil || c.opts.Build == nil {
		return nil, fmt.Errorf("%w: catalog has no loader or index builder", domain.ErrInvalidInput)
	}

	store, err := c.opts.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if c.opts.Dimension > 0 && store.Dimension() != c.opts.Dimension {
		return nil, fmt.Errorf("%w: dataset has dimension %d, embedder produces %d",
			domain.ErrConfigDimension, store.Dimension(), c.opts.Dimension)
	}

	cfg := c.opts.Config
	if cfg.Dimension == 0 {
		cfg.Dimension = store.Dimension()
	}

	start := time.Now()
	idx, err := c.opts.Build(ctx, store, cfg)
	if err != nil {
		return nil, err
	}
	metrics.RecordIndexBuild(string(c.opts.Backend), time.Since(start), idx.Len())

	session, err := idx.NewQuerySession(0)
	if err != nil {
		return nil, fmt.Errorf("open query session: %w", err)
	}

	info := driving.CatalogInfo{
		Records:   store.Len(),
		Dimension: store.Dimension(),
		Backend:   c.opts.Backend,
		Config:    idx.Config(),
	}
	if bc, ok := idx.(driven.BucketCounter); ok {
		info.Buckets = bc.NumBuckets()
		if sparse, bits := domain.SparseBuckets(info.Records, info.Buckets); sparse {
			logger.Warn("index.hash_bits=%d leaves most of %d records alone in their bucket; try %d",
				info.Config.HashBits, info.Records, bits)
		}
	}

	return &catalogSnapshot{
		store:   store,
		index:   idx,
		session: session,
		info:    info,
	}, nil
}

func (c *Catalog) snapshot() (*catalogSnapshot, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: catalog not loaded", domain.ErrNotBuilt)
	}
	return snap, nil
}
