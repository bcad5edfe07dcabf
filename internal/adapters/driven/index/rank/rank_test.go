package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

func TestSimilarity(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{3, -1}

	assert.Equal(t, float32(1), Similarity(domain.DistanceNegativeInnerProduct, a, b))
	assert.Equal(t, float32(-13), Similarity(domain.DistanceEuclideanSquared, a, b))
}

func TestTopK(t *testing.T) {
	c := []Candidate{
		{ID: 4, Score: 0.5},
		{ID: 1, Score: 0.9},
		{ID: 3, Score: 0.5},
		{ID: 2, Score: -1},
	}

	assert.Equal(t, []int{1, 3}, TopK(c, 2))
	assert.Equal(t, []int{1, 3, 4, 2}, TopK(c, 10))
	assert.Empty(t, TopK(nil, 3))
}
