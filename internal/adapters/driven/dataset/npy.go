package dataset

import (
	"fmt"
	"io"

	"github.com/sbinet/npyio"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// Matrix is a dense row-major float32 matrix.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// ReadMatrix decodes a 2-D little-endian float32 or float64 .npy array.
// float64 data is narrowed to float32.
func ReadMatrix(r io.Reader) (Matrix, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return Matrix{}, fmt.Errorf("%w: read npy header: %v", domain.ErrDataset, err)
	}

	descr := nr.Header.Descr
	if len(descr.Shape) != 2 {
		return Matrix{}, fmt.Errorf("%w: vector matrix must be 2-D, got shape %v",
			domain.ErrDataset, descr.Shape)
	}
	if descr.Fortran {
		return Matrix{}, fmt.Errorf("%w: fortran-ordered matrices are not supported", domain.ErrDataset)
	}

	m := Matrix{Rows: descr.Shape[0], Cols: descr.Shape[1]}
	if m.Cols <= 0 {
		return Matrix{}, fmt.Errorf("%w: vector dimension must be positive", domain.ErrDataset)
	}

	switch descr.Type {
	case "<f4", "f4":
		if err := nr.Read(&m.Data); err != nil {
			return Matrix{}, fmt.Errorf("%w: read npy data: %v", domain.ErrDataset, err)
		}
	case "<f8", "f8":
		var wide []float64
		if err := nr.Read(&wide); err != nil {
			return Matrix{}, fmt.Errorf("%w: read npy data: %v", domain.ErrDataset, err)
		}
		m.Data = make([]float32, len(wide))
		for i, v := range wide {
			m.Data[i] = float32(v)
		}
	default:
		return Matrix{}, fmt.Errorf("%w: unsupported npy dtype %q", domain.ErrDataset, descr.Type)
	}

	if len(m.Data) != m.Rows*m.Cols {
		return Matrix{}, fmt.Errorf("%w: npy holds %d values, expected %d",
			domain.ErrDataset, len(m.Data), m.Rows*m.Cols)
	}
	return m, nil
}
