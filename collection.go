package reactive

import (
	"iter"
	"slices"
	"sort"

	"github.com/xariahdailstone/xarchat-reactive/internal"
)

// Collection is a reactive ordered list.
//
// Every mutation is reported twice: as a raw Mutation to the mutation
// listeners, and as a normalized diff to the collection observers. The
// normalized diff is only computed when there is an observer.
//
// Reads publish the "length" or "version" properties, so expressions over a
// collection re-run on every mutation.
type Collection[T any] struct {
	Base

	items   []T
	version uint64

	mutations internal.Listeners[func(Mutation[T])]
	observers internal.Listeners[func([]Change[T])]

	pushSort func(a, b T) int
	// sorted is true while items are known to be ordered by pushSort
	sorted bool
}

// NewCollection creates a collection holding a copy of items.
func NewCollection[T any](rc *Context, items ...T) *Collection[T] {
	c := &Collection[T]{items: slices.Clone(items)}
	c.Init(rc, c)
	c.DefineProperty("length", func() any { return len(c.items) })
	c.DefineProperty("version", func() any { return c.version })

	return c
}

// AddMutationListener registers fn for the raw mutation log.
func (c *Collection[T]) AddMutationListener(fn func(Mutation[T])) Disposable {
	return disposer(c.mutations.Add(fn))
}

// AddCollectionObserver registers fn for normalized diffs, one batch per
// mutation.
func (c *Collection[T]) AddCollectionObserver(fn func([]Change[T])) Disposable {
	return disposer(c.observers.Add(fn))
}

// SetPushSort turns Push into an ordered insertion: each pushed item goes to
// the first position whose item it sorts before, so equal items keep their
// push order. A nil cmp restores plain appends. Existing items are not
// reordered.
func (c *Collection[T]) SetPushSort(cmp func(a, b T) int) {
	c.pushSort = cmp
	c.sorted = cmp != nil && slices.IsSortedFunc(c.items, cmp)
}

// Len returns the number of items, publishing a read of "length".
func (c *Collection[T]) Len() int {
	n := len(c.items)
	c.PublishRead("length", n)
	return n
}

// Get returns the item at i.
func (c *Collection[T]) Get(i int) (T, bool) {
	c.PublishRead("version", c.version)

	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Items returns a copy of the items.
func (c *Collection[T]) Items() []T {
	c.PublishRead("version", c.version)
	return slices.Clone(c.items)
}

// All iterates over a snapshot of the items.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	items := c.Items()
	return slices.All(items)
}

// IndexFunc returns the index of the first item satisfying f, or -1.
func (c *Collection[T]) IndexFunc(f func(T) bool) int {
	c.PublishRead("version", c.version)
	return slices.IndexFunc(c.items, f)
}

// Push appends items, or inserts each of them in order when a push sort is
// set.
func (c *Collection[T]) Push(items ...T) {
	if len(items) == 0 {
		return
	}

	if c.pushSort != nil {
		for _, item := range items {
			c.insertSorted(item)
		}
		return
	}

	c.insert(ItemsPushed, len(c.items), items)
}

// Unshift prepends items, keeping their order.
func (c *Collection[T]) Unshift(items ...T) {
	if len(items) == 0 {
		return
	}

	c.sorted = false
	c.insert(ItemsUnshifted, 0, items)
}

// AddAt inserts items before position i. i may equal Len.
func (c *Collection[T]) AddAt(i int, items ...T) error {
	if i < 0 || i > len(c.items) {
		return indexError(i, len(c.items))
	}
	if len(items) == 0 {
		return nil
	}

	c.sorted = false
	c.insert(ItemInserted, i, items)
	return nil
}

// Pop removes and returns the last item.
func (c *Collection[T]) Pop() (T, bool) {
	if len(c.items) == 0 {
		var zero T
		return zero, false
	}

	i := len(c.items) - 1
	return c.remove(ItemsPopped, i), true
}

// Shift removes and returns the first item.
func (c *Collection[T]) Shift() (T, bool) {
	if len(c.items) == 0 {
		var zero T
		return zero, false
	}

	return c.remove(ItemsShifted, 0), true
}

// RemoveAt removes and returns the item at i.
func (c *Collection[T]) RemoveAt(i int) (T, error) {
	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, indexError(i, len(c.items))
	}

	return c.remove(ItemsRemoved, i), nil
}

// Set replaces the item at i. Setting index Len appends. Storing the item
// already in place is a no-op.
func (c *Collection[T]) Set(i int, v T) error {
	n := len(c.items)
	if i == n {
		c.sorted = false
		c.insert(ItemsPushed, n, []T{v})
		return nil
	}
	if i < 0 || i > n {
		return indexError(i, n)
	}

	old := c.items[i]
	if internal.Same(old, v) {
		return nil
	}

	c.items[i] = v
	c.sorted = false

	var changes []Change[T]
	if c.observers.Len() > 0 {
		after, before := c.at(i-1), c.at(i+1)
		changes = []Change[T]{
			{Kind: ItemRemoved, Item: old, After: after, Before: before},
			{Kind: ItemAdded, Item: v, After: after, Before: before},
		}
	}

	c.emit(n, []Mutation[T]{{Kind: ItemReplaced, Index: i, Count: 1, Items: []T{v}, Removed: []T{old}}}, changes)
	return nil
}

// RemoveWhere removes every item satisfying pred and returns how many were
// removed. Each contiguous run of removed items is one raw mutation, indexed
// in the list as left by the previous runs.
func (c *Collection[T]) RemoveWhere(pred func(T) bool) int {
	n := len(c.items)
	kept := make([]T, 0, n)

	type removal struct {
		item T
		// number of surviving items left of the removed one
		keptBefore int
	}

	var (
		removed   []removal
		mutations []Mutation[T]
	)
	for _, item := range c.items {
		if !pred(item) {
			kept = append(kept, item)
			continue
		}

		removed = append(removed, removal{item: item, keptBefore: len(kept)})

		// a run continues when nothing survived since the previous removal
		if last := len(mutations) - 1; last >= 0 && mutations[last].Index == len(kept) {
			mutations[last].Count++
			mutations[last].Removed = append(mutations[last].Removed, item)
			continue
		}
		mutations = append(mutations, Mutation[T]{Kind: ItemsRemoved, Index: len(kept), Count: 1, Removed: []T{item}})
	}

	if len(removed) == 0 {
		return 0
	}

	c.items = kept

	var changes []Change[T]
	if c.observers.Len() > 0 {
		changes = make([]Change[T], len(removed))
		for j, r := range removed {
			changes[j] = Change[T]{Kind: ItemRemoved, Item: r.item, After: c.at(r.keptBefore - 1), Before: c.at(r.keptBefore)}
		}
	}

	c.emit(n, mutations, changes)
	return len(removed)
}

// Clear removes every item.
func (c *Collection[T]) Clear() {
	n := len(c.items)
	if n == 0 {
		return
	}

	removed := c.items
	c.items = nil

	var changes []Change[T]
	if c.observers.Len() > 0 {
		changes = make([]Change[T], n)
		for j, item := range removed {
			changes[j] = Change[T]{Kind: ItemRemoved, Item: item}
		}
	}

	c.emit(n, []Mutation[T]{{Kind: ItemsCleared, Index: 0, Count: n, Removed: removed}}, changes)
}

func (c *Collection[T]) insertSorted(item T) {
	i := c.sortPosition(item)

	kind := ItemInserted
	switch {
	case i == len(c.items):
		kind = ItemsPushed
	case i == 0:
		kind = ItemsUnshifted
	}

	c.insert(kind, i, []T{item})
}

// sortPosition returns the first index whose item sorts after item.
func (c *Collection[T]) sortPosition(item T) int {
	if c.sorted {
		return sort.Search(len(c.items), func(i int) bool {
			return c.pushSort(item, c.items[i]) < 0
		})
	}

	for i, existing := range c.items {
		if c.pushSort(item, existing) < 0 {
			return i
		}
	}
	return len(c.items)
}

func (c *Collection[T]) insert(kind MutationKind, i int, items []T) {
	n := len(c.items)
	items = slices.Clone(items)
	c.items = slices.Insert(c.items, i, items...)

	var changes []Change[T]
	if c.observers.Len() > 0 {
		changes = make([]Change[T], len(items))
		for j, item := range items {
			at := i + j
			changes[j] = Change[T]{Kind: ItemAdded, Item: item, After: c.at(at - 1), Before: c.at(at + 1)}
		}
	}

	c.emit(n, []Mutation[T]{{Kind: kind, Index: i, Count: len(items), Items: items}}, changes)
}

func (c *Collection[T]) remove(kind MutationKind, i int) T {
	n := len(c.items)
	item := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)

	var changes []Change[T]
	if c.observers.Len() > 0 {
		changes = []Change[T]{{Kind: ItemRemoved, Item: item, After: c.at(i - 1), Before: c.at(i)}}
	}

	c.emit(n, []Mutation[T]{{Kind: kind, Index: i, Count: 1, Removed: []T{item}}}, changes)
	return item
}

// at returns a copy of the item at i, nil when i is out of range.
func (c *Collection[T]) at(i int) *T {
	if i < 0 || i >= len(c.items) {
		return nil
	}

	item := c.items[i]
	return &item
}

func (c *Collection[T]) emit(prevLen int, mutations []Mutation[T], changes []Change[T]) {
	c.version++
	rc := c.Context()

	rc.Fire(func() {
		for _, m := range mutations {
			for fn := range c.mutations.All() {
				rc.call("mutation", func() { fn(m) })
			}
		}

		if len(changes) > 0 {
			for fn := range c.observers.All() {
				rc.call("change", func() { fn(changes) })
			}
		}

		events := make([]pendingEvent, 0, 2)
		if n := len(c.items); n != prevLen {
			events = append(events, c.event("length", n))
		}
		raiseAll(rc, append(events, c.event("version", c.version))...)
	})
}
