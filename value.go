package reactive

// Value is a reactive cell: a single mutable value with change notification
// on its "value" property.
type Value[T any] struct {
	Base
	prop *Property[T]
}

// NewValue creates a cell holding initial. A nil rc selects Default().
func NewValue[T any](rc *Context, initial T) *Value[T] {
	v := &Value[T]{}
	v.Init(rc, v)
	v.prop = NewProperty(&v.Base, "value", initial)

	return v
}

// Get returns the current value, publishing the read.
func (v *Value[T]) Get() T {
	return v.prop.Get()
}

// Peek returns the current value without publishing the read.
func (v *Value[T]) Peek() T {
	return v.prop.Peek()
}

// Set stores value and notifies the listeners, unless value is identical to
// the current one.
func (v *Value[T]) Set(value T) {
	v.prop.Set(value)
}

// Update replaces the value with fn applied to it.
func (v *Value[T]) Update(fn func(T) T) {
	v.prop.Set(fn(v.prop.Peek()))
}
