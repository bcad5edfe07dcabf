package domain

import (
	"fmt"
	"math/bits"
)

// DistanceFunction is the metric the catalog vectors were produced under.
type DistanceFunction string

// Supported distance functions.
const (
	// DistanceNegativeInnerProduct prefers the largest inner product.
	DistanceNegativeInnerProduct DistanceFunction = "negative_inner_product"

	// DistanceEuclideanSquared prefers the smallest squared L2 distance.
	DistanceEuclideanSquared DistanceFunction = "euclidean_squared"
)

// IsValid returns true if the distance function is recognised.
func (d DistanceFunction) IsValid() bool {
	switch d {
	case DistanceNegativeInnerProduct, DistanceEuclideanSquared:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d DistanceFunction) String() string {
	return string(d)
}

// IndexBackend selects the approximate index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendLSH is the cross-polytope locality-sensitive hash index.
	IndexBackendLSH IndexBackend = "lsh"

	// IndexBackendFlat is exact brute-force search.
	IndexBackendFlat IndexBackend = "flat"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	return b == IndexBackendLSH || b == IndexBackendFlat
}

// Index construction defaults.
const (
	DefaultNumTables    = 200
	DefaultNumRotations = 1
	DefaultHashBits     = 21

	// DefaultIndexSeed fixes the random rotations so rebuilds of the same
	// dataset answer identically.
	DefaultIndexSeed uint64 = 0x9e3779b97f4a7c15

	// MaxHashBits is the widest bucket key a table can hold.
	MaxHashBits = 64
)

// IndexConfig describes approximate index construction.
type IndexConfig struct {
	// Dimension must equal the length of every catalog vector.
	Dimension int

	// Distance is the metric used for bucketing and re-ranking.
	Distance DistanceFunction

	// NumTables is the number of independent hash tables (L).
	NumTables int

	// NumProbes is the number of buckets scanned per query.
	// Zero means NumTables.
	NumProbes int

	// NumRotations is the number of pseudo-random rotations per hash function.
	NumRotations int

	// HashBits is the target number of key bits per table. More bits give
	// smaller buckets: faster queries, lower recall. A table has up to
	// 2^HashBits buckets, so the default 21 suits catalogs of about a
	// million records. Small catalogs and small dimensions need far fewer
	// bits (about log2(records)-1), or nearly every record sits alone in its
	// bucket and probing rarely finds a neighbour. SparseBuckets detects this
	// after a build.
	HashBits int

	// NumHashFunctions (K) and LastCPDimension are derived from HashBits by
	// ComputeNumberOfHashFunctions.
	NumHashFunctions int
	LastCPDimension  int

	// NumSetupThreads bounds build parallelism. Zero uses all CPUs.
	NumSetupThreads int

	// Seed drives the random rotations.
	Seed uint64
}

// DefaultIndexConfig returns the default configuration for a dimension,
// with hash functions already derived.
func DefaultIndexConfig(dimension int) IndexConfig {
	cfg := IndexConfig{Dimension: dimension}.WithDefaults()
	_ = ComputeNumberOfHashFunctions(cfg.HashBits, &cfg)
	return cfg
}

// WithDefaults fills unset fields. Derived fields are left alone.
func (c IndexConfig) WithDefaults() IndexConfig {
	if c.Distance == "" {
		c.Distance = DistanceNegativeInnerProduct
	}
	if c.NumTables <= 0 {
		c.NumTables = DefaultNumTables
	}
	if c.NumRotations <= 0 {
		c.NumRotations = DefaultNumRotations
	}
	if c.HashBits <= 0 {
		c.HashBits = DefaultHashBits
	}
	if c.NumProbes <= 0 {
		c.NumProbes = c.NumTables
	}
	if c.Seed == 0 {
		c.Seed = DefaultIndexSeed
	}
	return c
}

// Validate checks the configuration is usable for construction.
func (c IndexConfig) Validate() error {
	switch {
	case c.Dimension <= 0:
		return fmt.Errorf("%w: dimension must be positive", ErrInvalidInput)
	case !c.Distance.IsValid():
		return fmt.Errorf("%w: unknown distance %q", ErrInvalidInput, c.Distance)
	case c.NumTables <= 0:
		return fmt.Errorf("%w: number of tables must be positive", ErrInvalidInput)
	case c.NumRotations <= 0:
		return fmt.Errorf("%w: number of rotations must be positive", ErrInvalidInput)
	case c.HashBits <= 0 || c.HashBits > MaxHashBits:
		return fmt.Errorf("%w: hash bits must be in [1, %d]", ErrInvalidInput, MaxHashBits)
	case c.NumProbes < 0:
		return fmt.Errorf("%w: number of probes must not be negative", ErrInvalidInput)
	case c.NumSetupThreads < 0:
		return fmt.Errorf("%w: number of setup threads must not be negative", ErrInvalidInput)
	case c.NumHashFunctions <= 0 || c.LastCPDimension <= 0:
		return fmt.Errorf("%w: hash functions not computed", ErrInvalidInput)
	case c.LastCPDimension > PaddedDimension(c.Dimension):
		return fmt.Errorf("%w: last cross-polytope dimension exceeds padded dimension", ErrInvalidInput)
	}
	return nil
}

// PaddedDimension returns the smallest power of two >= d.
func PaddedDimension(d int) int {
	if d <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(d-1))
}

// ComputeNumberOfHashFunctions derives K and the last cross-polytope
// dimension so that each table key carries exactly hashBits bits.
//
// A cross-polytope hash in padded dimension P has 2P outcomes, i.e.
// log2(2P) bits. K-1 full hashes are used, and the last one is restricted
// to 2^(r-1) coordinates so it contributes the remaining r bits.
func ComputeNumberOfHashFunctions(hashBits int, cfg *IndexConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidInput)
	}
	if cfg.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", ErrInvalidInput)
	}
	if hashBits <= 0 || hashBits > MaxHashBits {
		return fmt.Errorf("%w: hash bits must be in [1, %d]", ErrInvalidInput, MaxHashBits)
	}

	padded := PaddedDimension(cfg.Dimension)
	bitsPerHash := bits.Len(uint(2*padded)) - 1

	k := (hashBits + bitsPerHash - 1) / bitsPerHash
	remaining := hashBits - (k-1)*bitsPerHash

	cfg.HashBits = hashBits
	cfg.NumHashFunctions = k
	cfg.LastCPDimension = 1 << (remaining - 1)
	return nil
}

// minSparseCheckRecords skips the bucket check for catalogs too small to
// judge.
const minSparseCheckRecords = 4

// SparseBuckets reports whether an index over records rows left most rows
// alone in their bucket, given the non-empty bucket count of each table.
// suggested is a HashBits value giving about two records per bucket.
func SparseBuckets(records int, buckets []int) (sparse bool, suggested int) {
	suggested = max(1, bits.Len(uint(records))-2)
	if records < minSparseCheckRecords || len(buckets) == 0 {
		return false, suggested
	}
	total := 0
	for _, n := range buckets {
		total += n
	}
	// Mean occupancy below two records per bucket.
	return 2*total > records*len(buckets), suggested
}
