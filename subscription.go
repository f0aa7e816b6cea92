package reactive

import (
	"strings"

	"github.com/xariahdailstone/xarchat-reactive/internal"
)

// ValueSubscription is a live observation of a dotted property path.
type ValueSubscription struct {
	target  Observable
	head    string
	rest    string
	handler func(any)

	headListener Disposable
	tail         *ValueSubscription

	value    any
	disposed bool
}

// Subscribe observes path on target and calls h with the new value every
// time the resolved value changes.
//
// The path is split on '.': the first segment is read off target and watched,
// the remaining segments are resolved recursively on its value. When an
// intermediate value is not Observable the subscription's value is nil until
// the path becomes resolvable again. A change of any segment tears down and
// rebuilds the rest of the chain.
func Subscribe(target Observable, path string, h func(any)) *ValueSubscription {
	head, rest, _ := strings.Cut(path, ".")

	s := &ValueSubscription{
		target:  target,
		head:    head,
		rest:    rest,
		handler: h,
	}
	s.headListener = listenProperty(target, head, func(ev PropertyChangeEvent) {
		s.refresh(ev.PropertyValue)
	})
	s.resolve(target.GetProperty(head))

	return s
}

// Value returns the current value at the end of the path.
func (s *ValueSubscription) Value() any {
	return s.value
}

// Dispose stops the subscription and every subscription of its chain.
func (s *ValueSubscription) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	s.headListener.Dispose()
	if s.tail != nil {
		s.tail.Dispose()
		s.tail = nil
	}
	s.value = nil
}

func (s *ValueSubscription) resolve(headValue any) {
	if s.tail != nil {
		s.tail.Dispose()
		s.tail = nil
	}

	if s.rest == "" {
		s.value = headValue
		return
	}

	next, ok := headValue.(Observable)
	if !ok || internal.IsNil(next) {
		s.value = nil
		return
	}

	var tail *ValueSubscription
	tail = next.AddValueSubscription(s.rest, func(v any) {
		// a stale tail can still be in the middle of a dispatch pass
		if s.disposed || s.tail != tail {
			return
		}

		s.value = v
		s.notify(v)
	})
	s.tail = tail
	s.value = tail.Value()
}

func (s *ValueSubscription) refresh(headValue any) {
	if s.disposed {
		return
	}

	prev := s.value
	s.resolve(headValue)

	if !internal.Same(prev, s.value) {
		s.notify(s.value)
	}
}

func (s *ValueSubscription) notify(v any) {
	if s.handler != nil {
		s.handler(v)
	}
}
