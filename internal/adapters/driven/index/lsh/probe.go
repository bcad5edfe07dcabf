package lsh

import (
	"cmp"
	"container/heap"
	"slices"
)

// probe is a single-coordinate perturbation of a home bucket: function fn
// of table takes hash instead of its home value.
type probe struct {
	cost  float32
	table int32
	fn    int32
	hash  uint64
}

func compareProbes(a, b probe) int {
	if c := cmp.Compare(a.cost, b.cost); c != 0 {
		return c
	}
	if c := cmp.Compare(a.table, b.table); c != 0 {
		return c
	}
	if c := cmp.Compare(a.fn, b.fn); c != 0 {
		return c
	}
	return cmp.Compare(a.hash, b.hash)
}

// probeHeap keeps the best probes seen so far, worst on top.
type probeHeap struct {
	items []probe
	limit int
}

func (h *probeHeap) Len() int           { return len(h.items) }
func (h *probeHeap) Less(i, j int) bool { return compareProbes(h.items[i], h.items[j]) > 0 }
func (h *probeHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *probeHeap) Push(x any)         { h.items = append(h.items, x.(probe)) }
func (h *probeHeap) Pop() any {
	n := len(h.items) - 1
	p := h.items[n]
	h.items = h.items[:n]
	return p
}

func (h *probeHeap) reset(limit int) {
	h.items = h.items[:0]
	h.limit = limit
}

// offer keeps p if it is among the limit best.
func (h *probeHeap) offer(p probe) {
	if h.limit <= 0 {
		return
	}
	if len(h.items) < h.limit {
		heap.Push(h, p)
		return
	}
	if compareProbes(p, h.items[0]) < 0 {
		h.items[0] = p
		heap.Fix(h, 0)
	}
}

// sorted returns the kept probes best first.
func (h *probeHeap) sorted() []probe {
	slices.SortFunc(h.items, compareProbes)
	return h.items
}

// offerAlternatives adds every non-home signed coordinate of x as a probe.
// The cost is the score gap to the home coordinate.
func (h *probeHeap) offerAlternatives(t, fn int, x []float32, home uint64, best float32) {
	d := len(x)
	for i, v := range x {
		pos, neg := uint64(i), uint64(i+d)
		if pos != home {
			h.offer(probe{cost: best - v, table: int32(t), fn: int32(fn), hash: pos})
		}
		if neg != home {
			h.offer(probe{cost: best + v, table: int32(t), fn: int32(fn), hash: neg})
		}
	}
}
