package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// Required metadata columns.
const (
	columnID    = "id"
	columnTitle = "title"
)

// ReadMetadata parses a CSV table with a header row. Only the id and title
// columns are used; other columns and their order do not matter.
func ReadMetadata(r io.Reader) ([]domain.ArticleMeta, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: metadata has no header", domain.ErrDataset)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read metadata header: %v", domain.ErrDataset, err)
	}

	idCol, titleCol := -1, -1
	for i, name := range header {
		// Leading byte order marks are common in exported tables.
		name = strings.TrimPrefix(name, "\ufeff")
		switch strings.ToLower(strings.TrimSpace(name)) {
		case columnID:
			idCol = i
		case columnTitle:
			titleCol = i
		}
	}
	if idCol < 0 || titleCol < 0 {
		return nil, fmt.Errorf("%w: metadata must have %q and %q columns",
			domain.ErrDataset, columnID, columnTitle)
	}
	need := max(idCol, titleCol)

	var meta []domain.ArticleMeta
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read metadata: %v", domain.ErrDataset, err)
		}
		if len(rec) <= need {
			return nil, fmt.Errorf("%w: metadata line %d has %d fields",
				domain.ErrDataset, line, len(rec))
		}
		meta = append(meta, domain.ArticleMeta{
			ID:    strings.TrimSpace(rec[idCol]),
			Title: rec[titleCol],
		})
	}

	return meta, nil
}
