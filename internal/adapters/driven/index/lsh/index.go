// Package lsh implements an approximate nearest-neighbour index based on
// cross-polytope locality-sensitive hashing.
//
// Construction and querying are separate phases: Build hashes every
// catalog row into NumTables independent tables, and NewQuerySession
// derives a read-only handle that probes those tables and re-ranks the
// candidates exactly. A built index never changes.
package lsh

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.ApproximateIndex = (*Index)(nil)
	_ driven.IndexBuilder     = BuildIndex
)

// ctxCheckEvery is how many rows are hashed between cancellation checks.
const ctxCheckEvery = 4096

// Index is a built cross-polytope LSH index.
// The zero value is unbuilt and refuses queries.
type Index struct {
	cfg    domain.IndexConfig
	store  driven.VectorStore
	hasher *hasher
	tables []table
	pool   sync.Pool
}

// Build constructs the index over every row of store.
// cfg.Dimension must equal store.Dimension(). Unset fields take defaults and
// the hash layout is derived from HashBits when not already computed.
func Build(ctx context.Context, store driven.VectorStore, cfg domain.IndexConfig) (*Index, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil vector store", domain.ErrInvalidInput)
	}

	cfg = cfg.WithDefaults()
	if cfg.Dimension != store.Dimension() {
		return nil, fmt.Errorf("%w: config has %d, dataset has %d",
			domain.ErrConfigDimension, cfg.Dimension, store.Dimension())
	}
	if cfg.NumHashFunctions == 0 || cfg.LastCPDimension == 0 {
		if err := domain.ComputeNumberOfHashFunctions(cfg.HashBits, &cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Section("Build LSH Index")
	logger.Debug("Rows: %d, dimension: %d (padded %d)", store.Len(), cfg.Dimension, domain.PaddedDimension(cfg.Dimension))
	logger.Debug("Tables: %d, hash functions: %d, last cp dimension: %d, rotations: %d",
		cfg.NumTables, cfg.NumHashFunctions, cfg.LastCPDimension, cfg.NumRotations)

	start := time.Now()
	h := newHasher(cfg)
	tables := make([]table, cfg.NumTables)
	n := store.Len()

	threads := cfg.NumSetupThreads
	if threads == 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for t := range tables {
		g.Go(func() error {
			buf := make([]float32, h.padded)
			entries := make([]entry, n)
			for i := 0; i < n; i++ {
				if i%ctxCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				entries[i] = entry{key: h.key(t, store.VectorAt(i), buf), id: int32(i)}
			}
			tables[t] = newTable(entries)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build lsh index: %w", err)
	}

	idx := &Index{
		cfg:    cfg,
		store:  store,
		hasher: h,
		tables: tables,
	}
	idx.pool.New = func() any {
		return newScratch(n, h.padded, cfg.NumTables*cfg.NumHashFunctions)
	}

	logger.Debug("Built %d tables in %s", len(tables), time.Since(start))
	return idx, nil
}

// BuildIndex adapts Build to driven.IndexBuilder.
func BuildIndex(ctx context.Context, store driven.VectorStore, cfg domain.IndexConfig) (driven.ApproximateIndex, error) {
	idx, err := Build(ctx, store, cfg)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// NewQuerySession returns a handle scanning numProbes buckets per query.
// Non-positive numProbes uses the configured default.
func (x *Index) NewQuerySession(numProbes int) (driven.QuerySession, error) {
	if x == nil || x.tables == nil {
		return nil, domain.ErrNotBuilt
	}
	if numProbes <= 0 {
		numProbes = x.cfg.NumProbes
	}
	return &QuerySession{idx: x, numProbes: numProbes}, nil
}

// Len returns the number of indexed rows.
func (x *Index) Len() int {
	if x == nil || x.store == nil {
		return 0
	}
	return x.store.Len()
}

// Config returns the construction parameters with derived fields filled in.
func (x *Index) Config() domain.IndexConfig {
	if x == nil {
		return domain.IndexConfig{}
	}
	return x.cfg
}

// NumBuckets returns the number of non-empty buckets in each table.
func (x *Index) NumBuckets() []int {
	if x == nil {
		return nil
	}
	out := make([]int, len(x.tables))
	for i := range x.tables {
		out[i] = x.tables[i].numBuckets()
	}
	return out
}
