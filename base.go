package reactive

import (
	"iter"

	"github.com/xariahdailstone/xarchat-reactive/internal"
)

const wildcard = "*"

// Base gives a user-defined type per-property change channels, a wildcard
// channel and a property table. Embed it and call Init before use; a zero
// Base falls back to the calling goroutine's default context.
//
//	type Person struct {
//		reactive.Base
//		name *reactive.Property[string]
//	}
//
//	func NewPerson(rc *reactive.Context) *Person {
//		p := &Person{}
//		p.Init(rc, p)
//		p.name = reactive.NewProperty(&p.Base, "name", "")
//		return p
//	}
type Base struct {
	rc   *Context
	self Observable

	channels map[string]*internal.Listeners[Handler]
	props    map[string]func() any
	polled   []*polledProperty
}

type polledProperty struct {
	name string
	read func() any
	last any
}

// Init binds the base to rc and to self, the value embedding it. Reads are
// published with self as their source, so monitors and path subscriptions
// see the embedding type. A nil rc selects Default(), a nil self the base
// itself.
func (b *Base) Init(rc *Context, self Observable) {
	b.rc = resolve(rc)
	b.self = self
}

func (b *Base) observable() Observable {
	if b.self == nil {
		return b
	}
	return b.self
}

// Context returns the context the base belongs to.
func (b *Base) Context() *Context {
	if b.rc == nil {
		b.rc = Default()
	}
	return b.rc
}

// AddPropertyListener registers h for changes of the named property only.
func (b *Base) AddPropertyListener(name string, h Handler) Disposable {
	if b.channels == nil {
		b.channels = make(map[string]*internal.Listeners[Handler])
	}

	ch, ok := b.channels[name]
	if !ok {
		ch = &internal.Listeners[Handler]{}
		b.channels[name] = ch
	}

	return disposer(ch.Add(h))
}

func (b *Base) AddEventListener(h Handler) Disposable {
	return b.AddPropertyListener(wildcard, h)
}

func (b *Base) RemoveEventListener(d Disposable) {
	if d != nil {
		d.Dispose()
	}
}

// HasListeners reports whether any channel of the base has a listener.
func (b *Base) HasListeners() bool {
	for _, ch := range b.channels {
		if ch.Len() > 0 {
			return true
		}
	}
	return false
}

// RaisePropertyChangeEvent notifies the listeners of name, then the wildcard
// listeners, inside the fire stack.
func (b *Base) RaisePropertyChangeEvent(name string, value any) {
	raiseAll(b.Context(), b.event(name, value))
}

// pendingEvent is a property change of source waiting to be raised.
type pendingEvent struct {
	source *Base
	ev     PropertyChangeEvent
}

func (b *Base) event(name string, value any) pendingEvent {
	return pendingEvent{source: b, ev: PropertyChangeEvent{PropertyName: name, PropertyValue: value}}
}

type delivery struct {
	ev       PropertyChangeEvent
	handlers iter.Seq[Handler]
}

// raiseAll raises several changes of one mutation as a single pass. The
// listeners of every event are captured before the first one runs: a
// listener that was removed by an earlier delivery of the pass is skipped,
// so an expression depending on several of the changed properties re-runs
// once.
func raiseAll(rc *Context, events ...pendingEvent) {
	if len(events) == 0 {
		return
	}

	rc.Fire(func() {
		deliveries := make([]delivery, 0, 2*len(events))
		for _, pe := range events {
			deliveries = pe.source.capture(deliveries, pe.ev.PropertyName, pe.ev)
			if pe.ev.PropertyName != wildcard {
				deliveries = pe.source.capture(deliveries, wildcard, pe.ev)
			}
		}

		for _, d := range deliveries {
			for h := range d.handlers {
				rc.call(d.ev.PropertyName, func() { h(d.ev) })
			}
		}
	})
}

func (b *Base) capture(deliveries []delivery, channel string, ev PropertyChangeEvent) []delivery {
	ch, ok := b.channels[channel]
	if !ok || ch.Len() == 0 {
		return deliveries
	}
	return append(deliveries, delivery{ev: ev, handlers: ch.Snapshot()})
}

// PublishRead tells the active read monitors that the named property of
// this base was read.
func (b *Base) PublishRead(name string, value any) {
	b.Context().rt.PublishRead(b.observable(), name, value)
}

// DefineProperty registers the reader GetProperty uses for name.
func (b *Base) DefineProperty(name string, read func() any) {
	if b.props == nil {
		b.props = make(map[string]func() any)
	}
	b.props[name] = read
}

// GetProperty reads a defined property, publishing the read.
// Undefined properties read as nil.
func (b *Base) GetProperty(name string) any {
	read, ok := b.props[name]
	if !ok {
		return nil
	}

	v := read()
	b.PublishRead(name, v)
	return v
}

func (b *Base) AddValueSubscription(path string, h func(any)) *ValueSubscription {
	return Subscribe(b.observable(), path, h)
}

// DefinePolled registers a property whose changes are detected by
// ScanForChanges rather than announced by a setter.
func (b *Base) DefinePolled(name string, read func() any) {
	b.polled = append(b.polled, &polledProperty{name: name, read: read, last: read()})
	b.DefineProperty(name, read)
}

// ScanForChanges re-reads every polled property and raises a change event for
// each one that differs from its last snapshot. It returns how many changed.
func (b *Base) ScanForChanges() int {
	var events []pendingEvent
	for _, p := range b.polled {
		v := p.read()
		if internal.Same(p.last, v) {
			continue
		}

		p.last = v
		events = append(events, b.event(p.name, v))
	}

	raiseAll(b.Context(), events...)
	return len(events)
}

// Mutate runs fn and then scans the polled properties for changes.
func (b *Base) Mutate(fn func()) {
	fn()
	b.ScanForChanges()
}
