package driven

import (
	"context"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// VectorStore is the immutable catalog: one embedding vector and one
// metadata record per row, loaded once and shared read-only.
type VectorStore interface {
	// Len returns the number of rows.
	Len() int

	// Dimension returns the common vector length.
	Dimension() int

	// VectorAt returns the vector of row i. Callers must not modify it.
	VectorAt(i int) []float32

	// MetadataAt returns the metadata of row i.
	MetadataAt(i int) (domain.ArticleMeta, error)

	// MetadataAtMany resolves rows in the given order.
	MetadataAtMany(indices []int) ([]domain.ArticleMeta, error)
}

// ApproximateIndex is a built, immutable nearest-neighbour structure over a
// VectorStore. Queries go through a QuerySession derived from it.
type ApproximateIndex interface {
	// NewQuerySession derives a query handle scanning numProbes buckets.
	// Non-positive numProbes uses the index default.
	// Returns domain.ErrNotBuilt if the index was never constructed.
	NewQuerySession(numProbes int) (QuerySession, error)

	// Len returns the number of indexed rows.
	Len() int

	// Config returns the construction parameters.
	Config() domain.IndexConfig
}

// BucketCounter is implemented by hashing indexes that can report how
// their tables filled up.
type BucketCounter interface {
	// NumBuckets returns the number of non-empty buckets in each table.
	NumBuckets() []int
}

// QuerySession answers nearest-neighbour queries.
// Sessions hold no mutable state and are safe for concurrent use.
type QuerySession interface {
	// FindNearest returns up to k row indices ordered by decreasing
	// similarity under the index distance.
	FindNearest(ctx context.Context, query []float32, k int) ([]int, error)

	// NumProbes returns the number of buckets scanned per query.
	NumProbes() int
}

// IndexBuilder constructs an index from a catalog snapshot.
// Construction is a blocking, all-or-nothing step.
type IndexBuilder func(ctx context.Context, store VectorStore, cfg domain.IndexConfig) (ApproximateIndex, error)
