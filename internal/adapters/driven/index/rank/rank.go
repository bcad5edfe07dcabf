// Package rank scores and orders nearest-neighbour candidates.
// It is shared by every index backend so they agree on tie-breaking.
package rank

import (
	"cmp"
	"slices"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// Candidate is a row with its similarity to the query. Higher is closer.
type Candidate struct {
	ID    int
	Score float32
}

// Similarity returns a score where larger means closer under d:
// the inner product, or the negated squared euclidean distance.
func Similarity(d domain.DistanceFunction, a, b []float32) float32 {
	if d == domain.DistanceEuclideanSquared {
		var sum float32
		for i := range a {
			diff := a[i] - b[i]
			sum += diff * diff
		}
		return -sum
	}

	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// compare orders by decreasing score, then increasing row.
func compare(x, y Candidate) int {
	if c := cmp.Compare(y.Score, x.Score); c != 0 {
		return c
	}
	return cmp.Compare(x.ID, y.ID)
}

// Sort orders candidates best first.
func Sort(c []Candidate) {
	slices.SortFunc(c, compare)
}

// TopK sorts c in place and returns the ids of the first k.
func TopK(c []Candidate, k int) []int {
	Sort(c)
	if k > len(c) {
		k = len(c)
	}
	ids := make([]int, k)
	for i := range ids {
		ids[i] = c[i].ID
	}
	return ids
}
