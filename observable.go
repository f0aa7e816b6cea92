package reactive

import "github.com/xariahdailstone/xarchat-reactive/internal"

// PropertyChangeEvent is delivered to property listeners, one per change.
type PropertyChangeEvent struct {
	PropertyName  string
	PropertyValue any
}

type Handler func(PropertyChangeEvent)

type Disposable interface {
	Dispose()
}

type disposeFunc struct {
	fn func()
}

func (d *disposeFunc) Dispose() {
	if d.fn != nil {
		fn := d.fn
		d.fn = nil
		fn()
	}
}

func disposer(fn func()) Disposable {
	return &disposeFunc{fn: fn}
}

// Observable is the contract every reactive entity satisfies.
type Observable interface {
	// AddEventListener registers h for every property change.
	AddEventListener(h Handler) Disposable

	// RemoveEventListener unregisters a listener returned by AddEventListener.
	RemoveEventListener(d Disposable)

	// RaisePropertyChangeEvent notifies the listeners of name.
	RaisePropertyChangeEvent(name string, value any)

	// AddValueSubscription observes a dotted property path, see Subscribe.
	AddValueSubscription(path string, h func(any)) *ValueSubscription

	// GetProperty reads a property by name, nil when it is not defined.
	GetProperty(name string) any
}

// PropertyObservable is implemented by observables that offer a dedicated
// channel per property name.
type PropertyObservable interface {
	Observable
	AddPropertyListener(name string, h Handler) Disposable
}

// CollectionObservable is implemented by the reactive containers.
type CollectionObservable[T any] interface {
	Observable
	AddCollectionObserver(fn func([]Change[T])) Disposable
}

// Equaler lets a value define the structural equality used by expressions.
type Equaler = internal.Equaler

// listenProperty subscribes h to the changes of one property of source.
func listenProperty(source Observable, name string, h Handler) Disposable {
	if po, ok := source.(PropertyObservable); ok {
		return po.AddPropertyListener(name, h)
	}

	return source.AddEventListener(func(ev PropertyChangeEvent) {
		if ev.PropertyName == name {
			h(ev)
		}
	})
}
