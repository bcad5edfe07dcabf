package lsh

import (
	"context"
	"fmt"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/index/rank"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.QuerySession = (*QuerySession)(nil)

// QuerySession probes a built index. It holds no mutable state.
type QuerySession struct {
	idx       *Index
	numProbes int
}

// scratch is per-call working memory, recycled through the index pool.
type scratch struct {
	buf   []float32
	homes []uint64
	// home hash of function j in table t at t*k+j
	homeHashes []uint64
	seen       []uint32
	epoch      uint32
	cands      []rank.Candidate
	probes     probeHeap
}

func newScratch(rows, padded, hashes int) *scratch {
	return &scratch{
		buf:        make([]float32, padded),
		homeHashes: make([]uint64, hashes),
		seen:       make([]uint32, rows),
	}
}

// nextEpoch invalidates every seen mark in O(1).
func (s *scratch) nextEpoch() {
	s.epoch++
	if s.epoch == 0 {
		clear(s.seen)
		s.epoch = 1
	}
}

// NumProbes returns the number of buckets scanned per query.
func (q *QuerySession) NumProbes() int {
	return q.numProbes
}

// FindNearest returns up to k row indices ordered by decreasing similarity.
//
// The first probe of every table is its home bucket. Probes beyond the
// table count are single-coordinate perturbations of the home buckets,
// cheapest score gap first. Candidates are deduplicated and re-ranked by
// the exact distance; equal scores go to the lower row.
func (q *QuerySession) FindNearest(ctx context.Context, query []float32, k int) ([]int, error) {
	x := q.idx
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != x.cfg.Dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrInvalidInput, len(query), x.cfg.Dimension)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := x.pool.Get().(*scratch)
	defer x.pool.Put(s)
	s.nextEpoch()

	h := x.hasher
	numTables := len(x.tables)
	homeTables := min(q.numProbes, numTables)
	extra := q.numProbes - homeTables
	s.probes.reset(extra)

	s.homes = s.homes[:0]
	for t := 0; t < homeTables; t++ {
		var key uint64
		for j := 0; j < h.k; j++ {
			h.rotate(t, j, query, s.buf)
			xs := s.buf[:h.fnDim(j)]
			hv, best := signedArgmax(xs)
			s.homeHashes[t*h.k+j] = hv
			key = key<<h.shifts[j] | hv
			if extra > 0 {
				s.probes.offerAlternatives(t, j, xs, hv, best)
			}
		}
		s.homes = append(s.homes, key)
	}

	s.cands = s.cands[:0]
	for t, key := range s.homes {
		s.collect(x.tables[t].bucket(key))
	}
	for _, p := range s.probes.sorted() {
		t, j := int(p.table), int(p.fn)
		home := s.homeHashes[t*h.k+j]
		key := s.homes[t] ^ (home^p.hash)<<h.offsets[j]
		s.collect(x.tables[t].bucket(key))
	}

	for i := range s.cands {
		s.cands[i].Score = rank.Similarity(x.cfg.Distance, query, x.store.VectorAt(s.cands[i].ID))
	}
	return rank.TopK(s.cands, k), nil
}

// collect adds unseen rows of a bucket to the candidate list.
func (s *scratch) collect(bucket []int32) {
	for _, id := range bucket {
		if s.seen[id] != s.epoch {
			s.seen[id] = s.epoch
			s.cands = append(s.cands, rank.Candidate{ID: int(id)})
		}
	}
}
