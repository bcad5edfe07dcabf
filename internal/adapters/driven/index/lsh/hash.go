package lsh

import (
	"math/bits"
	"math/rand/v2"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// hasher evaluates the cross-polytope hash functions of every table.
//
// Function j of table t rotates the zero-padded input NumRotations times
// (random sign flip, then a fast Hadamard transform) and returns the
// signed arg-max coordinate: i for a positive maximum, i+d for a negative
// one, where d is the number of coordinates the function looks at.
type hasher struct {
	dim       int
	padded    int
	k         int
	rotations int
	lastDim   int

	// signs[(t*k+j)*rotations+r] is a ±1 diagonal of length padded.
	signs [][]float32

	// shifts[j] is the bit width of function j; offsets[j] its position
	// in the table key, counted from the least significant bit.
	shifts  []int
	offsets []int
}

func newHasher(cfg domain.IndexConfig) *hasher {
	h := &hasher{
		dim:       cfg.Dimension,
		padded:    domain.PaddedDimension(cfg.Dimension),
		k:         cfg.NumHashFunctions,
		rotations: cfg.NumRotations,
		lastDim:   cfg.LastCPDimension,
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5851f42d4c957f2d))
	n := cfg.NumTables * h.k * h.rotations
	h.signs = make([][]float32, n)
	for i := range h.signs {
		d := make([]float32, h.padded)
		for c := range d {
			if rng.Uint64()&1 == 0 {
				d[c] = 1
			} else {
				d[c] = -1
			}
		}
		h.signs[i] = d
	}

	h.shifts = make([]int, h.k)
	h.offsets = make([]int, h.k)
	for j := range h.shifts {
		h.shifts[j] = bits.Len(uint(h.fnDim(j)))
	}
	for j := h.k - 2; j >= 0; j-- {
		h.offsets[j] = h.offsets[j+1] + h.shifts[j+1]
	}
	return h
}

// fnDim returns the number of coordinates function j takes its arg-max over.
func (h *hasher) fnDim(j int) int {
	if j == h.k-1 {
		return h.lastDim
	}
	return h.padded
}

// rotate writes the rotated image of v for function j of table t into buf.
func (h *hasher) rotate(t, j int, v, buf []float32) {
	copy(buf, v)
	clear(buf[len(v):])

	base := (t*h.k + j) * h.rotations
	for r := 0; r < h.rotations; r++ {
		for c, s := range h.signs[base+r] {
			buf[c] *= s
		}
		fht(buf)
	}
}

// key returns the bucket key of v in table t.
func (h *hasher) key(t int, v, buf []float32) uint64 {
	var key uint64
	for j := 0; j < h.k; j++ {
		h.rotate(t, j, v, buf)
		hv, _ := signedArgmax(buf[:h.fnDim(j)])
		key = key<<h.shifts[j] | hv
	}
	return key
}

// signedArgmax returns the hash of the largest-magnitude coordinate and
// that magnitude. The lowest index wins ties.
func signedArgmax(x []float32) (uint64, float32) {
	best := 0
	bestAbs := abs(x[0])
	for i := 1; i < len(x); i++ {
		if a := abs(x[i]); a > bestAbs {
			best, bestAbs = i, a
		}
	}
	if x[best] < 0 {
		return uint64(best + len(x)), bestAbs
	}
	return uint64(best), bestAbs
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// fht is an unnormalised in-place fast Hadamard transform.
// len(x) must be a power of two.
func fht(x []float32) {
	n := len(x)
	for h := 1; h < n; h <<= 1 {
		for i := 0; i < n; i += h << 1 {
			for j := i; j < i+h; j++ {
				a, b := x[j], x[j+h]
				x[j], x[j+h] = a+b, a-b
			}
		}
	}
}
