package lazy

import (
	"fmt"
	"reflect"
	"sync"
)

var handleType = reflect.TypeFor[Handle]()

// Wrapper builds *Lazy[T] handles for one value type without knowing T statically.
type Wrapper struct {
	// Value is T.
	Value reflect.Type
	// Handle is *Lazy[T].
	Handle reflect.Type

	wrap func(thunk func() (any, error)) Handle
}

// Wrap returns a *Lazy[T] whose producer calls thunk and asserts the result to T.
func (w Wrapper) Wrap(thunk func() (any, error)) Handle {
	return w.wrap(thunk)
}

// wrappers maps T to the Wrapper building *Lazy[T].
var wrappers sync.Map

// Register records the wrapper capability for T and returns it.
// Registering the same T again is a no-op.
func Register[T any]() Wrapper {
	t := reflect.TypeFor[T]()
	if w, ok := wrappers.Load(t); ok {
		return w.(Wrapper)
	}

	w := Wrapper{
		Value:  t,
		Handle: reflect.TypeFor[*Lazy[T]](),
		wrap: func(thunk func() (any, error)) Handle {
			return New(func() (T, error) {
				var zero T
				v, err := thunk()
				if err != nil {
					return zero, err
				}
				if v == nil {
					return zero, nil
				}
				tv, ok := v.(T)
				if !ok {
					return zero, fmt.Errorf("lazy %s: producer returned %T", t, v)
				}
				return tv, nil
			})
		},
	}
	actual, _ := wrappers.LoadOrStore(t, w)
	return actual.(Wrapper)
}

// Lookup returns the wrapper registered for the value type t.
func Lookup(t reflect.Type) (Wrapper, bool) {
	if t == nil {
		return Wrapper{}, false
	}
	w, ok := wrappers.Load(t)
	if !ok {
		return Wrapper{}, false
	}
	return w.(Wrapper), true
}

// Underlying reports whether t is a *Lazy[X] and returns X.
func Underlying(t reflect.Type) (reflect.Type, bool) {
	if t == nil || t.Kind() != reflect.Pointer || !t.Implements(handleType) {
		return nil, false
	}
	if t.Elem().PkgPath() != handleType.PkgPath() {
		return nil, false
	}
	h, ok := reflect.Zero(t).Interface().(Handle)
	if !ok {
		return nil, false
	}
	return h.ValueType(), true
}

// IsLazy reports whether t is a *Lazy[X] for some X.
func IsLazy(t reflect.Type) bool {
	_, ok := Underlying(t)
	return ok
}

// TypeFor returns *Lazy[T] for the value type t, if T has been registered.
func TypeFor(t reflect.Type) (reflect.Type, bool) {
	w, ok := Lookup(t)
	if !ok {
		return nil, false
	}
	return w.Handle, true
}
