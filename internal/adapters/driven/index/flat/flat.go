// Package flat implements exact brute-force nearest-neighbour search
// behind the same ports as the approximate index.
package flat

import (
	"context"
	"fmt"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/index/rank"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.ApproximateIndex = (*Index)(nil)
	_ driven.QuerySession     = (*QuerySession)(nil)
	_ driven.IndexBuilder     = BuildIndex
)

// Index scans every row on each query.
type Index struct {
	cfg   domain.IndexConfig
	store driven.VectorStore
}

// Build checks the configuration against the store. Hash parameters in
// cfg are kept for reporting but unused.
func Build(ctx context.Context, store driven.VectorStore, cfg domain.IndexConfig) (*Index, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil vector store", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg = cfg.WithDefaults()
	if cfg.Dimension != store.Dimension() {
		return nil, fmt.Errorf("%w: config has %d, dataset has %d",
			domain.ErrConfigDimension, cfg.Dimension, store.Dimension())
	}
	if !cfg.Distance.IsValid() {
		return nil, fmt.Errorf("%w: unknown distance %q", domain.ErrInvalidInput, cfg.Distance)
	}
	return &Index{cfg: cfg, store: store}, nil
}

// BuildIndex adapts Build to driven.IndexBuilder.
func BuildIndex(ctx context.Context, store driven.VectorStore, cfg domain.IndexConfig) (driven.ApproximateIndex, error) {
	idx, err := Build(ctx, store, cfg)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// NewQuerySession returns an exact search handle. numProbes is recorded
// but every row is always scanned.
func (x *Index) NewQuerySession(numProbes int) (driven.QuerySession, error) {
	if x == nil || x.store == nil {
		return nil, domain.ErrNotBuilt
	}
	if numProbes <= 0 {
		numProbes = x.cfg.NumProbes
	}
	return &QuerySession{idx: x, numProbes: numProbes}, nil
}

// Len returns the number of rows.
func (x *Index) Len() int {
	if x == nil || x.store == nil {
		return 0
	}
	return x.store.Len()
}

// Config returns the construction parameters.
func (x *Index) Config() domain.IndexConfig {
	if x == nil {
		return domain.IndexConfig{}
	}
	return x.cfg
}

// QuerySession answers exact queries.
type QuerySession struct {
	idx       *Index
	numProbes int
}

// NumProbes returns the configured probe count.
func (q *QuerySession) NumProbes() int {
	return q.numProbes
}

// FindNearest returns the k closest rows, ties to the lower row.
func (q *QuerySession) FindNearest(ctx context.Context, query []float32, k int) ([]int, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != q.idx.cfg.Dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrInvalidInput, len(query), q.idx.cfg.Dimension)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store := q.idx.store
	cands := make([]rank.Candidate, store.Len())
	for i := range cands {
		cands[i] = rank.Candidate{
			ID:    i,
			Score: rank.Similarity(q.idx.cfg.Distance, query, store.VectorAt(i)),
		}
	}
	return rank.TopK(cands, k), nil
}
