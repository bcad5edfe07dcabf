package driving

import (
	"context"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// CatalogInfo describes the loaded catalog snapshot.
type CatalogInfo struct {
	Records   int
	Dimension int
	Backend   domain.IndexBackend
	Config    domain.IndexConfig
	Version   uint64

	// Buckets holds the non-empty bucket count per table for hashing
	// backends; nil otherwise.
	Buckets []int
}

// CatalogService exposes the loaded catalog and its rebuild.
type CatalogService interface {
	// Info describes the current snapshot.
	Info() (CatalogInfo, error)

	// Reload rebuilds the catalog from its sources and swaps it in.
	// On failure the previous snapshot stays active.
	Reload(ctx context.Context) error
}
