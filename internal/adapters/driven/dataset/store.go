// Package dataset loads the article catalog: a metadata table and an
// embedding matrix whose rows line up one to one.
package dataset

import (
	"fmt"
	"os"

	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/logger"
)

// Verify interface compliance.
var _ driven.VectorStore = (*Store)(nil)

// Store is an immutable in-memory catalog.
// All vectors share one contiguous backing slab.
type Store struct {
	meta []domain.ArticleMeta
	slab []float32
	dim  int
}

// Load reads the metadata CSV and the .npy vector matrix from disk.
func Load(metadataPath, vectorsPath string) (*Store, error) {
	logger.Section("Load Dataset")
	logger.Debug("Metadata: %s", metadataPath)
	logger.Debug("Vectors: %s", vectorsPath)

	mf, err := os.Open(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open metadata: %v", domain.ErrDataset, err)
	}
	defer mf.Close()

	meta, err := ReadMetadata(mf)
	if err != nil {
		return nil, err
	}

	vf, err := os.Open(vectorsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open vectors: %v", domain.ErrDataset, err)
	}
	defer vf.Close()

	m, err := ReadMatrix(vf)
	if err != nil {
		return nil, err
	}

	s, err := fromMatrix(meta, m)
	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded %d records of dimension %d", s.Len(), s.Dimension())
	return s, nil
}

// New builds a store from in-memory rows with the same checks as Load.
// The vectors are copied.
func New(meta []domain.ArticleMeta, vectors [][]float32) (*Store, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no vectors", domain.ErrDataset)
	}

	dim := len(vectors[0])
	slab := make([]float32, 0, len(vectors)*dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has length %d, expected %d",
				domain.ErrDataset, i, len(v), dim)
		}
		slab = append(slab, v...)
	}

	return fromMatrix(meta, Matrix{Rows: len(vectors), Cols: dim, Data: slab})
}

func fromMatrix(meta []domain.ArticleMeta, m Matrix) (*Store, error) {
	if m.Cols <= 0 {
		return nil, fmt.Errorf("%w: vector dimension must be positive", domain.ErrDataset)
	}
	if m.Rows == 0 {
		return nil, fmt.Errorf("%w: no records", domain.ErrDataset)
	}
	if len(meta) != m.Rows {
		return nil, fmt.Errorf("%w: %d metadata rows but %d vectors",
			domain.ErrDataset, len(meta), m.Rows)
	}
	if len(m.Data) != m.Rows*m.Cols {
		return nil, fmt.Errorf("%w: matrix holds %d values, expected %d",
			domain.ErrDataset, len(m.Data), m.Rows*m.Cols)
	}

	return &Store{
		meta: meta,
		slab: m.Data,
		dim:  m.Cols,
	}, nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.meta)
}

// Dimension returns the vector length.
func (s *Store) Dimension() int {
	return s.dim
}

// VectorAt returns a read-only view of row i.
// It panics if i is out of range, like a slice index.
func (s *Store) VectorAt(i int) []float32 {
	off := i * s.dim
	return s.slab[off : off+s.dim : off+s.dim]
}

// MetadataAt returns the metadata of row i.
func (s *Store) MetadataAt(i int) (domain.ArticleMeta, error) {
	if i < 0 || i >= len(s.meta) {
		return domain.ArticleMeta{}, fmt.Errorf("%w: row %d out of range [0, %d)",
			domain.ErrInvalidInput, i, len(s.meta))
	}
	return s.meta[i], nil
}

// MetadataAtMany resolves rows preserving the input order.
func (s *Store) MetadataAtMany(indices []int) ([]domain.ArticleMeta, error) {
	out := make([]domain.ArticleMeta, 0, len(indices))
	for _, i := range indices {
		m, err := s.MetadataAt(i)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
