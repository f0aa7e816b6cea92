package internal

import (
	"iter"
	"slices"
)

// Listeners is an ordered list of callbacks that can be added to and removed
// from while it is being dispatched.
//
// Every dispatch pass walks a snapshot taken when the pass starts: callbacks
// added during the pass run from the next pass on, callbacks removed during
// the pass are skipped.
type Listeners[F any] struct {
	entries []*listener[F]
}

type listener[F any] struct {
	fn      F
	removed bool
}

// Add appends fn and returns the function that removes it again.
// The returned function is idempotent.
func (l *Listeners[F]) Add(fn F) (remove func()) {
	entry := &listener[F]{fn: fn}
	l.entries = append(l.entries, entry)

	return func() { l.remove(entry) }
}

func (l *Listeners[F]) remove(entry *listener[F]) {
	if entry.removed {
		return
	}
	entry.removed = true

	if i := slices.Index(l.entries, entry); i >= 0 {
		l.entries = slices.Delete(l.entries, i, i+1)
	}
}

// Len returns the number of registered callbacks.
func (l *Listeners[F]) Len() int {
	return len(l.entries)
}

// All iterates, in registration order, over the callbacks registered when
// the iteration started.
func (l *Listeners[F]) All() iter.Seq[F] {
	return func(yield func(F) bool) {
		l.Snapshot()(yield)
	}
}

// Snapshot captures the callbacks registered now. Iterating the result later
// still skips the ones removed in the meantime, and never yields callbacks
// added after the capture.
func (l *Listeners[F]) Snapshot() iter.Seq[F] {
	// clonning to avoid mutation during iteration
	snapshot := slices.Clone(l.entries)

	return func(yield func(F) bool) {
		for _, entry := range snapshot {
			if entry.removed {
				continue
			}

			if !yield(entry.fn) {
				return
			}
		}
	}
}
