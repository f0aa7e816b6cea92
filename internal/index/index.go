// Package index provides the sorted key index behind ordered dictionaries.
package index

import (
	"iter"

	"github.com/google/btree"
)

const degree = 16

// Pair is a key and the value stored under it.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// Tree keeps pairs ordered by key. Keys are unique.
type Tree[K, V any] struct {
	tree    *btree.BTreeG[Pair[K, V]]
	compare func(a, b K) int
}

func New[K, V any](compare func(a, b K) int) *Tree[K, V] {
	return &Tree[K, V]{
		tree: btree.NewG(degree, func(a, b Pair[K, V]) bool {
			return compare(a.Key, b.Key) < 0
		}),
		compare: compare,
	}
}

func (t *Tree[K, V]) Len() int { return t.tree.Len() }

func (t *Tree[K, V]) Get(key K) (Pair[K, V], bool) {
	return t.tree.Get(Pair[K, V]{Key: key})
}

func (t *Tree[K, V]) Has(key K) bool {
	return t.tree.Has(Pair[K, V]{Key: key})
}

// Insert adds p unless its key is already present.
func (t *Tree[K, V]) Insert(p Pair[K, V]) bool {
	if t.tree.Has(p) {
		return false
	}

	t.tree.ReplaceOrInsert(p)
	return true
}

func (t *Tree[K, V]) Delete(key K) (Pair[K, V], bool) {
	return t.tree.Delete(Pair[K, V]{Key: key})
}

// Prev returns the pair with the greatest key strictly less than key.
func (t *Tree[K, V]) Prev(key K) (prev Pair[K, V], ok bool) {
	t.tree.DescendLessOrEqual(Pair[K, V]{Key: key}, func(p Pair[K, V]) bool {
		if t.compare(p.Key, key) == 0 {
			return true
		}

		prev, ok = p, true
		return false
	})

	return prev, ok
}

// Next returns the pair with the smallest key strictly greater than key.
func (t *Tree[K, V]) Next(key K) (next Pair[K, V], ok bool) {
	t.tree.AscendGreaterOrEqual(Pair[K, V]{Key: key}, func(p Pair[K, V]) bool {
		if t.compare(p.Key, key) == 0 {
			return true
		}

		next, ok = p, true
		return false
	})

	return next, ok
}

func (t *Tree[K, V]) Min() (Pair[K, V], bool) { return t.tree.Min() }

func (t *Tree[K, V]) Max() (Pair[K, V], bool) { return t.tree.Max() }

// All iterates over a snapshot of the pairs in ascending key order, so the
// tree may be modified while iterating.
func (t *Tree[K, V]) All() iter.Seq[Pair[K, V]] {
	return func(yield func(Pair[K, V]) bool) {
		pairs := make([]Pair[K, V], 0, t.tree.Len())
		t.tree.Ascend(func(p Pair[K, V]) bool {
			pairs = append(pairs, p)
			return true
		})

		for _, p := range pairs {
			if !yield(p) {
				return
			}
		}
	}
}

// Clear removes every pair.
func (t *Tree[K, V]) Clear() {
	t.tree.Clear(false)
}
