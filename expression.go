package reactive

import (
	"reflect"

	"github.com/xariahdailstone/xarchat-reactive/internal"
)

// Expression is a derived computation. It runs its function, records every
// reactive property read during the run as a dependency, and runs again
// whenever one of those dependencies changes. Dependencies are rebuilt on
// every run, never accumulated.
//
// The outcome of a run is either a value or an error. Listeners are notified
// only when the outcome is not structurally equal to the previous one.
//
// An Expression must be disposed, or it keeps a listener on everything it
// read during its last run.
type Expression[T any] struct {
	Base

	fn      func() (T, error)
	onValue func(T)
	onError func(error)

	value    T
	hasValue bool
	err      error

	edges []Disposable
	seen  map[edge]struct{}

	// evaluating guards against re-entrant runs, dirty records an
	// invalidation that arrived during the current run
	evaluating bool
	dirty      bool
	disposed   bool
}

type edge struct {
	source   Observable
	property string
}

// NewExpression creates and immediately evaluates an expression. onValue is
// called with every new value, onError with every new error and with nil when
// an error is cleared by a successful run; either may be nil. Panics raised
// by fn are captured as *PanicError. Inside Scope.Run the expression is added
// to the running scope.
func NewExpression[T any](rc *Context, fn func() (T, error), onValue func(T), onError func(error)) *Expression[T] {
	e := &Expression[T]{
		fn:      fn,
		onValue: onValue,
		onError: onError,
	}
	e.Init(rc, e)
	e.DefineProperty("value", func() any { return e.value })
	e.DefineProperty("error", func() any { return e.err })

	e.Context().own(e)
	e.evaluate()

	return e
}

// NewComputed creates an expression over a function that cannot fail.
func NewComputed[T any](rc *Context, fn func() T, onValue func(T)) *Expression[T] {
	return NewExpression(rc, func() (T, error) { return fn(), nil }, onValue, nil)
}

// Value returns the last settled value, publishing the read so expressions
// can depend on each other.
func (e *Expression[T]) Value() T {
	e.PublishRead("value", e.value)
	return e.value
}

// Error returns the last settled error, publishing the read.
func (e *Expression[T]) Error() error {
	e.PublishRead("error", e.err)
	return e.err
}

// HasValue reports whether the last run produced a value.
func (e *Expression[T]) HasValue() bool {
	return e.hasValue
}

// Dependencies returns the number of dependency edges recorded by the last
// run.
func (e *Expression[T]) Dependencies() int {
	return len(e.edges)
}

// Dispose tears down every dependency edge. A final value change to the zero
// value is reported if the expression held a value. A disposed expression
// never runs or notifies again.
func (e *Expression[T]) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.clearEdges()

	e.err = nil
	if !e.hasValue {
		return
	}

	var zero T
	e.value = zero
	e.hasValue = false

	rc := e.Context()
	rc.Fire(func() {
		if e.onValue != nil {
			rc.call("value", func() { e.onValue(zero) })
		}
		e.RaisePropertyChangeEvent("value", zero)
	})
}

func (e *Expression[T]) evaluate() {
	if e.disposed {
		return
	}
	if e.evaluating {
		e.dirty = true
		return
	}

	e.evaluating = true
	defer func() { e.evaluating = false }()

	rc := e.Context()
	for pass := 1; ; pass++ {
		e.dirty = false

		value, err := e.run(rc)
		if e.disposed {
			return
		}
		e.settle(rc, value, err)

		if !e.dirty || e.disposed {
			return
		}

		if pass >= rc.rt.MaxReevaluations() {
			rc.Logger().Error().
				Int("passes", pass).
				Msg("expression keeps invalidating itself, stopped re-evaluating")
			return
		}
	}
}

func (e *Expression[T]) run(rc *Context) (value T, err error) {
	e.clearEdges()

	monitor := rc.AddReadMonitor(e.track)
	defer monitor.Dispose()

	defer func() {
		if p := recover(); p != nil {
			var zero T
			value, err = zero, &PanicError{Value: p}
		}
	}()

	return e.fn()
}

func (e *Expression[T]) track(r Read) {
	if e.disposed || r.Source == Observable(e) {
		return
	}

	key := edge{source: r.Source, property: r.Property}
	if reflect.TypeOf(r.Source).Comparable() {
		if _, ok := e.seen[key]; ok {
			return
		}
		if e.seen == nil {
			e.seen = make(map[edge]struct{})
		}
		e.seen[key] = struct{}{}
	}

	e.edges = append(e.edges, listenProperty(r.Source, r.Property, func(PropertyChangeEvent) {
		e.evaluate()
	}))
}

func (e *Expression[T]) clearEdges() {
	edges := e.edges
	e.edges = nil
	clear(e.seen)

	for _, d := range edges {
		d.Dispose()
	}
}

func (e *Expression[T]) settle(rc *Context, value T, err error) {
	if err != nil {
		if e.err != nil && internal.Equal(e.err, err) {
			return
		}

		clearedValue := e.hasValue
		var zero T
		e.value, e.hasValue, e.err = zero, false, err

		rc.Fire(func() {
			if e.onError != nil {
				rc.call("error", func() { e.onError(err) })
			}

			events := make([]pendingEvent, 0, 2)
			if clearedValue {
				events = append(events, e.event("value", zero))
			}
			raiseAll(rc, append(events, e.event("error", err))...)
		})
		return
	}

	if e.hasValue && internal.Equal(e.value, value) {
		return
	}

	clearedErr := e.err != nil
	e.value, e.hasValue, e.err = value, true, nil

	rc.Fire(func() {
		events := make([]pendingEvent, 0, 2)
		if clearedErr {
			if e.onError != nil {
				rc.call("error", func() { e.onError(nil) })
			}
			events = append(events, e.event("error", nil))
		}
		if e.onValue != nil {
			rc.call("value", func() { e.onValue(value) })
		}
		raiseAll(rc, append(events, e.event("value", value))...)
	})
}
