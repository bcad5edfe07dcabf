package lsh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

func TestFHT(t *testing.T) {
	x := []float32{1, 0, 0, 0}
	fht(x)
	assert.Equal(t, []float32{1, 1, 1, 1}, x)

	y := []float32{1, 1, 1, 1}
	fht(y)
	assert.Equal(t, []float32{4, 0, 0, 0}, y)

	z := []float32{1, 2}
	fht(z)
	assert.Equal(t, []float32{3, -1}, z)
}

func TestSignedArgmax(t *testing.T) {
	tests := []struct {
		name     string
		x        []float32
		wantHash uint64
		wantAbs  float32
	}{
		{name: "positive", x: []float32{0.1, 0.7, -0.3}, wantHash: 1, wantAbs: 0.7},
		{name: "negative", x: []float32{0.1, -0.5, 0.3}, wantHash: 4, wantAbs: 0.5},
		{name: "tie prefers lower index", x: []float32{0.5, -0.5}, wantHash: 0, wantAbs: 0.5},
		{name: "zero vector", x: []float32{0, 0}, wantHash: 0, wantAbs: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, a := signedArgmax(tt.x)
			assert.Equal(t, tt.wantHash, h)
			assert.Equal(t, tt.wantAbs, a)
		})
	}
}

func TestHasher_KeyWidth(t *testing.T) {
	cfg := domain.IndexConfig{Dimension: 100, NumTables: 2, HashBits: 20}.WithDefaults()
	assert.NoError(t, domain.ComputeNumberOfHashFunctions(cfg.HashBits, &cfg))

	h := newHasher(cfg)
	assert.Equal(t, 128, h.padded)
	assert.Equal(t, []int{8, 8, 4}, h.shifts)
	assert.Equal(t, []int{12, 4, 0}, h.offsets)

	buf := make([]float32, h.padded)
	v := make([]float32, 100)
	for i := range v {
		v[i] = float32(i%7) - 3
	}
	for table := 0; table < cfg.NumTables; table++ {
		assert.Less(t, h.key(table, v, buf), uint64(1)<<20)
	}
}

func TestHasher_SameSeedSameSigns(t *testing.T) {
	cfg := domain.DefaultIndexConfig(10)
	cfg.NumTables = 3

	a := newHasher(cfg)
	b := newHasher(cfg)
	assert.Equal(t, a.signs, b.signs)

	cfg.Seed++
	c := newHasher(cfg)
	assert.NotEqual(t, a.signs, c.signs)
}

func TestTable(t *testing.T) {
	tbl := newTable([]entry{
		{key: 5, id: 3},
		{key: 1, id: 2},
		{key: 5, id: 0},
		{key: 9, id: 1},
	})

	assert.Equal(t, 3, tbl.numBuckets())
	assert.Equal(t, []int32{0, 3}, tbl.bucket(5))
	assert.Equal(t, []int32{2}, tbl.bucket(1))
	assert.Nil(t, tbl.bucket(7))
}

func TestProbeHeap_KeepsCheapest(t *testing.T) {
	var h probeHeap
	h.reset(2)

	h.offerAlternatives(0, 0, []float32{0.9, -0.2}, 0, 0.9)

	got := h.sorted()
	assert.Len(t, got, 2)
	// Alternatives of (+0): -0 costs 1.8, +1 costs 1.1, -1 costs 0.7.
	assert.Equal(t, uint64(3), got[0].hash)
	assert.InDelta(t, 0.7, got[0].cost, 1e-6)
	assert.Equal(t, uint64(1), got[1].hash)
	assert.InDelta(t, 1.1, got[1].cost, 1e-6)
}

func TestProbeHeap_ZeroLimit(t *testing.T) {
	var h probeHeap
	h.reset(0)
	h.offerAlternatives(0, 0, []float32{1, 2}, 1, 2)
	assert.Empty(t, h.sorted())
}
