package reactive

import "github.com/xariahdailstone/xarchat-reactive/internal"

// Property is a typed property stored on a Base.
type Property[T any] struct {
	owner *Base
	name  string
	value T
}

// NewProperty defines the property name on owner with an initial value.
func NewProperty[T any](owner *Base, name string, initial T) *Property[T] {
	p := &Property[T]{owner: owner, name: name, value: initial}
	owner.DefineProperty(name, func() any { return p.value })

	return p
}

func (p *Property[T]) Name() string { return p.name }

// Get returns the value and publishes the read.
func (p *Property[T]) Get() T {
	p.owner.PublishRead(p.name, p.value)
	return p.value
}

// Peek returns the value without publishing the read.
func (p *Property[T]) Peek() T {
	return p.value
}

// Set stores v and raises a change event, unless v is the current value.
func (p *Property[T]) Set(v T) {
	if internal.Same(p.value, v) {
		return
	}

	p.value = v
	p.owner.RaisePropertyChangeEvent(p.name, v)
}

// PollSchema is the list of polled properties of a plain data type. Build it
// once next to the type and bind it to every instance.
//
//	var userSchema = reactive.NewPollSchema[User]().
//		Field("nick", func(u *User) any { return u.Nick })
type PollSchema[T any] struct {
	fields []pollField[T]
}

type pollField[T any] struct {
	name string
	read func(*T) any
}

func NewPollSchema[T any]() *PollSchema[T] {
	return &PollSchema[T]{}
}

// Field appends a polled property.
func (s *PollSchema[T]) Field(name string, read func(*T) any) *PollSchema[T] {
	s.fields = append(s.fields, pollField[T]{name: name, read: read})
	return s
}

// Bind registers the schema's properties of obj on b.
func (s *PollSchema[T]) Bind(b *Base, obj *T) {
	for _, f := range s.fields {
		read := f.read
		b.DefinePolled(f.name, func() any { return read(obj) })
	}
}

// Polled retrofits change notification onto a plain data value: writes made
// through Update are detected by scanning the schema's properties.
type Polled[T any] struct {
	Base
	data *T
}

func NewPolled[T any](rc *Context, schema *PollSchema[T], data *T) *Polled[T] {
	p := &Polled[T]{data: data}
	p.Init(rc, p)
	schema.Bind(&p.Base, data)

	return p
}

// Data returns the wrapped value. Writes made directly through it are only
// noticed by the next ScanForChanges.
func (p *Polled[T]) Data() *T {
	return p.data
}

// Update applies fn to the wrapped value and raises an event for every
// property it changed.
func (p *Polled[T]) Update(fn func(*T)) {
	p.Mutate(func() { fn(p.data) })
}
