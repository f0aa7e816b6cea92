package internal

import "reflect"

// Equaler is implemented by values that define their own structural equality.
type Equaler interface {
	Equal(other any) bool
}

// Same reports whether a and b are the same value: == for comparable values,
// reference identity for slices, maps, funcs and channels.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Comparable() && vb.Comparable() {
		return a == b
	}

	switch ta.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func, reflect.Chan:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}

// Equal reports whether a and b are structurally equal.
// Values implementing Equaler decide for themselves, identical values are
// always equal, everything else falls back to reflect.DeepEqual.
func Equal(a, b any) bool {
	if e, ok := a.(Equaler); ok {
		return e.Equal(b)
	}

	if Same(a, b) {
		return true
	}

	return reflect.DeepEqual(a, b)
}

// IsNil reports whether v is nil or an interface holding a nil pointer, map,
// slice, func or channel.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
