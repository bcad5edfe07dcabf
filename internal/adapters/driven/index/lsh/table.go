package lsh

import (
	"cmp"
	"slices"
)

type entry struct {
	key uint64
	id  int32
}

// table is a flat sorted bucket array: keys[i] owns ids[starts[i]:starts[i+1]].
type table struct {
	keys   []uint64
	starts []int32
	ids    []int32
}

// newTable sorts entries by key then row and packs them.
func newTable(entries []entry) table {
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	t := table{ids: make([]int32, len(entries))}
	for i, e := range entries {
		if i == 0 || e.key != entries[i-1].key {
			t.keys = append(t.keys, e.key)
			t.starts = append(t.starts, int32(i))
		}
		t.ids[i] = e.id
	}
	t.starts = append(t.starts, int32(len(entries)))
	return t
}

// bucket returns the rows stored under key.
func (t *table) bucket(key uint64) []int32 {
	i, ok := slices.BinarySearch(t.keys, key)
	if !ok {
		return nil
	}
	return t.ids[t.starts[i]:t.starts[i+1]]
}

// numBuckets returns the number of non-empty buckets.
func (t *table) numBuckets() int {
	return len(t.keys)
}
