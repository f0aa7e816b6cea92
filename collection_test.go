package reactive

import (
	"cmp"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formatChange[T any](c Change[T]) string {
	side := func(p *T) string {
		if p == nil {
			return "_"
		}
		return fmt.Sprint(*p)
	}

	sign := "+"
	if c.Kind == ItemRemoved {
		sign = "-"
	}
	return fmt.Sprintf("%s%v(%s,%s)", sign, c.Item, side(c.After), side(c.Before))
}

// observe records every normalized change of c, and every raw mutation.
func observe[T any](c *Collection[T]) (*[]string, *[]Mutation[T]) {
	changes := []string{}
	mutations := []Mutation[T]{}

	c.AddCollectionObserver(func(batch []Change[T]) {
		for _, ch := range batch {
			changes = append(changes, formatChange(ch))
		}
	})
	c.AddMutationListener(func(m Mutation[T]) {
		mutations = append(mutations, m)
	})

	return &changes, &mutations
}

func TestCollection(t *testing.T) {
	t.Run("reports neighbors after push and remove", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection[string](rc)
		changes, mutations := observe(c)

		c.Push("a", "b", "c")
		_, err := c.RemoveAt(1)
		require.NoError(t, err)

		assert.Equal(t, []string{"+a(_,b)", "+b(a,c)", "+c(b,_)", "-b(a,c)"}, *changes)
		assert.Equal(t, []Mutation[string]{
			{Kind: ItemsPushed, Index: 0, Count: 3, Items: []string{"a", "b", "c"}},
			{Kind: ItemsRemoved, Index: 1, Count: 1, Removed: []string{"b"}},
		}, *mutations)
		assert.Equal(t, []string{"a", "c"}, c.Items())
	})

	t.Run("pop, shift, unshift and insert", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, "a", "b", "c")
		changes, mutations := observe(c)

		last, ok := c.Pop()
		require.True(t, ok)
		assert.Equal(t, "c", last)

		first, ok := c.Shift()
		require.True(t, ok)
		assert.Equal(t, "a", first)

		c.Unshift("x", "y")
		require.NoError(t, c.AddAt(2, "z"))

		assert.Equal(t, []string{"x", "y", "z", "b"}, c.Items())
		assert.Equal(t, []string{"-c(b,_)", "-a(_,b)", "+x(_,y)", "+y(x,b)", "+z(y,b)"}, *changes)

		kinds := []MutationKind{}
		for _, m := range *mutations {
			kinds = append(kinds, m.Kind)
		}
		assert.Equal(t, []MutationKind{ItemsPopped, ItemsShifted, ItemsUnshifted, ItemInserted}, kinds)
	})

	t.Run("refuses out of range positions", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, 1)

		_, err := c.RemoveAt(1)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.ErrorIs(t, c.AddAt(-1, 2), ErrIndexOutOfRange)
		assert.ErrorIs(t, c.Set(3, 2), ErrIndexOutOfRange)

		_, ok := c.Get(5)
		assert.False(t, ok)

		empty := NewCollection[int](rc)
		_, ok = empty.Pop()
		assert.False(t, ok)
		_, ok = empty.Shift()
		assert.False(t, ok)
	})

	t.Run("replaces through Set", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, "a", "b", "c")
		changes, mutations := observe(c)

		require.NoError(t, c.Set(1, "B"))
		require.NoError(t, c.Set(1, "B"))
		require.NoError(t, c.Set(3, "d"))

		v, ok := c.Get(1)
		require.True(t, ok)
		assert.Equal(t, "B", v)
		assert.Equal(t, []string{"-b(a,c)", "+B(a,c)", "+d(c,_)"}, *changes)
		assert.Equal(t, []Mutation[string]{
			{Kind: ItemReplaced, Index: 1, Count: 1, Items: []string{"B"}, Removed: []string{"b"}},
			{Kind: ItemsPushed, Index: 3, Count: 1, Items: []string{"d"}},
		}, *mutations)
	})

	t.Run("removes matching items run by run", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, "a", "b", "c", "d", "e")
		changes, mutations := observe(c)

		removed := c.RemoveWhere(func(s string) bool { return s == "b" || s == "c" || s == "e" })

		assert.Equal(t, 3, removed)
		assert.Equal(t, []string{"a", "d"}, c.Items())
		assert.Equal(t, []string{"-b(a,d)", "-c(a,d)", "-e(d,_)"}, *changes)
		assert.Equal(t, []Mutation[string]{
			{Kind: ItemsRemoved, Index: 1, Count: 2, Removed: []string{"b", "c"}},
			{Kind: ItemsRemoved, Index: 2, Count: 1, Removed: []string{"e"}},
		}, *mutations)

		assert.Equal(t, 0, c.RemoveWhere(func(string) bool { return false }))
		assert.Len(t, *mutations, 2)
	})

	t.Run("clears every item", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, 1, 2)
		changes, mutations := observe(c)

		c.Clear()
		c.Clear()

		assert.Equal(t, 0, c.Len())
		assert.Equal(t, []string{"-1(_,_)", "-2(_,_)"}, *changes)
		assert.Equal(t, []Mutation[int]{
			{Kind: ItemsCleared, Index: 0, Count: 2, Removed: []int{1, 2}},
		}, *mutations)
	})

	t.Run("replays raw mutations into the same list", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, "a", "b", "c", "d")

		replica := c.Items()
		c.AddMutationListener(func(m Mutation[string]) {
			switch m.Kind {
			case ItemsCleared:
				replica = nil
			case ItemReplaced:
				replica[m.Index] = m.Items[0]
			case ItemsPushed, ItemsUnshifted, ItemInserted:
				replica = append(replica[:m.Index], append(append([]string{}, m.Items...), replica[m.Index:]...)...)
			default:
				replica = append(replica[:m.Index], replica[m.Index+m.Count:]...)
			}
		})

		c.Push("e")
		c.RemoveWhere(func(s string) bool { return s == "a" || s == "c" || s == "d" })
		c.Unshift("z")
		require.NoError(t, c.Set(1, "B"))
		require.NoError(t, c.AddAt(1, "y"))
		c.Pop()

		assert.Equal(t, c.Items(), replica)
	})
}

type entry struct {
	key  int
	name string
}

func byKey(a, b entry) int { return cmp.Compare(a.key, b.key) }

func TestCollectionPushSort(t *testing.T) {
	t.Run("inserts in order after equal items", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection[entry](rc)
		c.SetPushSort(byKey)
		_, mutations := observe(c)

		c.Push(entry{2, "a"}, entry{1, "b"}, entry{3, "c"}, entry{2, "d"})

		names := []string{}
		for _, e := range c.All() {
			names = append(names, e.name)
		}
		assert.Equal(t, []string{"b", "a", "d", "c"}, names)

		kinds := []string{}
		for _, m := range *mutations {
			kinds = append(kinds, fmt.Sprintf("%s@%d", m.Kind, m.Index))
		}
		assert.Equal(t, []string{"items_pushed@0", "items_unshifted@0", "items_pushed@2", "item_inserted@2"}, kinds)
	})

	t.Run("scans an unsorted list linearly", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, 5, 1, 9)
		c.SetPushSort(cmp.Compare[int])

		c.Push(3)

		assert.Equal(t, []int{3, 5, 1, 9}, c.Items())
	})

	t.Run("appends again once the sort is removed", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, "b")
		c.SetPushSort(strings.Compare)
		c.Push("a")

		c.SetPushSort(nil)
		c.Push("a")

		assert.Equal(t, []string{"a", "b", "a"}, c.Items())
	})
}

func TestCollectionReactivity(t *testing.T) {
	t.Run("re-runs expressions on mutation", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, 1, 2)

		length := NewComputed(rc, func() int { return c.Len() }, nil)
		defer length.Dispose()

		sum := NewComputed(rc, func() int {
			total := 0
			for _, n := range c.All() {
				total += n
			}
			return total
		}, nil)
		defer sum.Dispose()

		c.Push(3)
		assert.Equal(t, 3, length.Value())
		assert.Equal(t, 6, sum.Value())

		require.NoError(t, c.Set(0, 10))
		assert.Equal(t, 3, length.Value())
		assert.Equal(t, 15, sum.Value())
	})

	t.Run("raises length only when it changes", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, "a")

		log := []string{}
		c.AddEventListener(func(ev PropertyChangeEvent) {
			log = append(log, fmt.Sprintf("%s=%v", ev.PropertyName, ev.PropertyValue))
		})

		require.NoError(t, c.Set(0, "b"))
		c.Push("c")

		assert.Equal(t, []string{"version=1", "length=2", "version=2"}, log)
		assert.Equal(t, 2, c.GetProperty("length"))
	})

	t.Run("re-runs an expression once per mutation", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection(rc, "a")

		runs := 0
		summary := NewComputed(rc, func() string {
			runs++
			return fmt.Sprint(c.Len(), c.Items())
		}, nil)
		defer summary.Dispose()

		c.Push("b")
		assert.Equal(t, 2, runs)

		c.Pop()
		assert.Equal(t, 3, runs)
		assert.Equal(t, "1 [a]", summary.Value())
	})

	t.Run("survives a panicking observer", func(t *testing.T) {
		rc := NewContext()
		c := NewCollection[int](rc)

		c.AddCollectionObserver(func([]Change[int]) { panic("observer") })
		got := 0
		c.AddMutationListener(func(m Mutation[int]) { got += m.Count })

		assert.NotPanics(t, func() { c.Push(1, 2) })
		assert.Equal(t, 2, got)
		assert.Equal(t, 1, c.IndexFunc(func(n int) bool { return n == 2 }))
	})
}
