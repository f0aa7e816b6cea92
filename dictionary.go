package reactive

import (
	"cmp"
	"iter"
	"slices"

	"github.com/xariahdailstone/xarchat-reactive/internal"
	"github.com/xariahdailstone/xarchat-reactive/internal/index"
)

// Pair is a key and the item stored under it.
type Pair[K, V any] = index.Pair[K, V]

// DictionaryChange is the raw event of a dictionary mutation. Previous and
// Next are the neighbors of the key in key order: after the insertion for
// ItemAdded, before the removal for ItemRemoved.
type DictionaryChange[K, V any] struct {
	Kind     ChangeKind
	Key      K
	Item     V
	Previous *Pair[K, V]
	Next     *Pair[K, V]
}

// Dictionary is a reactive map ordered by key. Items carry their own key,
// derived by the key extractor given at construction.
//
// Besides the aggregate events, every key has a point channel with the
// properties "has" and "value": Get publishes reads on it, so an expression
// that looks up one key only re-runs when that key is added or removed.
// A point channel is kept only while it has listeners or was pinned by
// Channel.
type Dictionary[K comparable, V any] struct {
	Base

	index   *index.Tree[K, V]
	keyOf   func(V) K
	version uint64

	changes   internal.Listeners[func(DictionaryChange[K, V])]
	observers internal.Listeners[func([]Change[V])]

	points map[K]*keyChannel[K, V]
}

// keyChannel is the point observable of one key. has and value hold what was
// last announced on it.
type keyChannel[K comparable, V any] struct {
	Base
	d   *Dictionary[K, V]
	key K

	has    bool
	value  V
	pinned bool
}

// NewDictionary creates a dictionary ordered by compare.
func NewDictionary[K comparable, V any](rc *Context, keyOf func(V) K, compare func(a, b K) int) *Dictionary[K, V] {
	d := &Dictionary[K, V]{
		index: index.New[K, V](compare),
		keyOf: keyOf,
	}
	d.Init(rc, d)
	d.DefineProperty("size", func() any { return d.index.Len() })
	d.DefineProperty("length", func() any { return d.index.Len() })
	d.DefineProperty("version", func() any { return d.version })

	return d
}

// NewOrderedDictionary creates a dictionary ordered by the natural order of
// its keys.
func NewOrderedDictionary[K cmp.Ordered, V any](rc *Context, keyOf func(V) K) *Dictionary[K, V] {
	return NewDictionary(rc, keyOf, cmp.Compare[K])
}

// AddChangeListener registers fn for the raw add and remove events.
func (d *Dictionary[K, V]) AddChangeListener(fn func(DictionaryChange[K, V])) Disposable {
	return disposer(d.changes.Add(fn))
}

// AddCollectionObserver registers fn for normalized diffs.
func (d *Dictionary[K, V]) AddCollectionObserver(fn func([]Change[V])) Disposable {
	return disposer(d.observers.Add(fn))
}

// Size returns the number of items, publishing a read of "size".
func (d *Dictionary[K, V]) Size() int {
	n := d.index.Len()
	d.PublishRead("size", n)
	return n
}

// Len returns the number of items, publishing a read of "length".
func (d *Dictionary[K, V]) Len() int {
	n := d.index.Len()
	d.PublishRead("length", n)
	return n
}

// Get returns the item stored under key. The read is published on the key's
// point channel only.
func (d *Dictionary[K, V]) Get(key K) (V, bool) {
	p, ok := d.index.Get(key)

	if d.Context().Tracking() {
		ch := d.channel(key)
		ch.PublishRead("has", ok)
		ch.PublishRead("value", p.Value)
	}

	return p.Value, ok
}

// Has reports whether key is present, publishing a read of the key's "has"
// property.
func (d *Dictionary[K, V]) Has(key K) bool {
	ok := d.index.Has(key)

	if d.Context().Tracking() {
		d.channel(key).PublishRead("has", ok)
	}

	return ok
}

// Channel returns the point observable of key, with the properties "has" and
// "value".
func (d *Dictionary[K, V]) Channel(key K) Observable {
	ch := d.channel(key).attach()
	ch.pinned = true
	return ch
}

// Add stores v under its key. It is a no-op returning false when the key is
// already present.
func (d *Dictionary[K, V]) Add(v V) bool {
	key := d.keyOf(v)
	if !d.index.Insert(Pair[K, V]{Key: key, Value: v}) {
		return false
	}

	prev, hasPrev := d.index.Prev(key)
	next, hasNext := d.index.Next(key)
	d.emit([]DictionaryChange[K, V]{{
		Kind:     ItemAdded,
		Key:      key,
		Item:     v,
		Previous: pairPtr(prev, hasPrev),
		Next:     pairPtr(next, hasNext),
	}})

	return true
}

// Delete removes key. It is a no-op returning false when the key is absent.
func (d *Dictionary[K, V]) Delete(key K) bool {
	p, ok := d.index.Get(key)
	if !ok {
		return false
	}

	prev, hasPrev := d.index.Prev(key)
	next, hasNext := d.index.Next(key)
	d.index.Delete(key)

	d.emit([]DictionaryChange[K, V]{{
		Kind:     ItemRemoved,
		Key:      key,
		Item:     p.Value,
		Previous: pairPtr(prev, hasPrev),
		Next:     pairPtr(next, hasNext),
	}})

	return true
}

// Clear removes every item as one mutation. The raw events report the
// removals in ascending key order, each with the neighbors left at that
// point: no previous item, and the next key still to be removed.
func (d *Dictionary[K, V]) Clear() {
	if d.index.Len() == 0 {
		return
	}

	pairs := slices.Collect(d.index.All())
	d.index.Clear()

	changes := make([]DictionaryChange[K, V], len(pairs))
	for i, p := range pairs {
		var next *Pair[K, V]
		if i+1 < len(pairs) {
			next = &pairs[i+1]
		}
		changes[i] = DictionaryChange[K, V]{Kind: ItemRemoved, Key: p.Key, Item: p.Value, Next: next}
	}

	d.emit(changes)
}

// Min returns the pair with the smallest key.
func (d *Dictionary[K, V]) Min() (Pair[K, V], bool) {
	d.PublishRead("version", d.version)
	return d.index.Min()
}

// Max returns the pair with the greatest key.
func (d *Dictionary[K, V]) Max() (Pair[K, V], bool) {
	d.PublishRead("version", d.version)
	return d.index.Max()
}

// All iterates over a snapshot of the pairs in key order.
func (d *Dictionary[K, V]) All() iter.Seq2[K, V] {
	d.PublishRead("version", d.version)
	pairs := d.index.All()

	return func(yield func(K, V) bool) {
		for p := range pairs {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Keys returns the keys in order.
func (d *Dictionary[K, V]) Keys() []K {
	keys := make([]K, 0, d.index.Len())
	for k := range d.All() {
		keys = append(keys, k)
	}
	return keys
}

// Values returns the items in key order.
func (d *Dictionary[K, V]) Values() []V {
	values := make([]V, 0, d.index.Len())
	for _, v := range d.All() {
		values = append(values, v)
	}
	return values
}

// channel returns the point channel of key. Without one in use, it is a
// fresh channel that only joins the dictionary once something listens to it,
// so reads nobody ends up observing leave nothing behind.
func (d *Dictionary[K, V]) channel(key K) *keyChannel[K, V] {
	if ch, ok := d.points[key]; ok {
		return ch
	}

	ch := &keyChannel[K, V]{d: d, key: key}
	ch.Init(d.Context(), ch)
	ch.DefineProperty("has", func() any { return d.index.Has(key) })
	ch.DefineProperty("value", func() any {
		p, _ := d.index.Get(key)
		return p.Value
	})

	return ch
}

// attach makes ch the point channel of its key, unless another channel of
// the key is in use, and returns the channel in use.
func (ch *keyChannel[K, V]) attach() *keyChannel[K, V] {
	d := ch.d
	if cur, ok := d.points[ch.key]; ok {
		return cur
	}

	p, has := d.index.Get(ch.key)
	ch.has, ch.value = has, p.Value

	if d.points == nil {
		d.points = make(map[K]*keyChannel[K, V])
	}
	d.points[ch.key] = ch

	return ch
}

// release drops ch from the dictionary once nothing observes it.
func (ch *keyChannel[K, V]) release() {
	if ch.pinned || ch.HasListeners() {
		return
	}
	if cur, ok := ch.d.points[ch.key]; ok && cur == ch {
		delete(ch.d.points, ch.key)
	}
}

func (ch *keyChannel[K, V]) AddPropertyListener(name string, h Handler) Disposable {
	cur := ch.attach()
	if cur != ch {
		return cur.AddPropertyListener(name, h)
	}

	sub := ch.Base.AddPropertyListener(name, h)
	return disposer(func() {
		sub.Dispose()
		ch.release()
	})
}

func (ch *keyChannel[K, V]) AddEventListener(h Handler) Disposable {
	return ch.AddPropertyListener(wildcard, h)
}

// publishNamedUpdate refreshes the point channel of key, if one is in use,
// and returns the changes to announce on it.
func (d *Dictionary[K, V]) publishNamedUpdate(events []pendingEvent, key K) []pendingEvent {
	ch, ok := d.points[key]
	if !ok {
		return events
	}

	p, has := d.index.Get(key)
	hasChanged := ch.has != has
	valueChanged := !internal.Same(ch.value, p.Value)
	ch.has, ch.value = has, p.Value

	if hasChanged {
		events = append(events, ch.event("has", has))
	}
	if valueChanged {
		events = append(events, ch.event("value", p.Value))
	}
	return events
}

func (d *Dictionary[K, V]) emit(changes []DictionaryChange[K, V]) {
	d.version++
	rc := d.Context()

	rc.Fire(func() {
		for _, change := range changes {
			for fn := range d.changes.All() {
				rc.call("change", func() { fn(change) })
			}
		}

		if d.observers.Len() > 0 {
			batch := make([]Change[V], len(changes))
			for i, change := range changes {
				batch[i] = Change[V]{
					Kind:   change.Kind,
					Item:   change.Item,
					After:  pairValue(change.Previous),
					Before: pairValue(change.Next),
				}
			}
			for fn := range d.observers.All() {
				rc.call("change", func() { fn(batch) })
			}
		}

		var events []pendingEvent
		for _, change := range changes {
			events = d.publishNamedUpdate(events, change.Key)
		}

		n := d.index.Len()
		events = append(events, d.event("size", n), d.event("length", n), d.event("version", d.version))
		raiseAll(rc, events...)
	})
}

func pairPtr[K, V any](p Pair[K, V], ok bool) *Pair[K, V] {
	if !ok {
		return nil
	}
	return &p
}

func pairValue[K, V any](p *Pair[K, V]) *V {
	if p == nil {
		return nil
	}
	v := p.Value
	return &v
}
