package lazy

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Lazy is a memoizing handle around a value that is produced on first access.
// The producer runs at most once; its value and its error are both kept.
type Lazy[T any] struct {
	mu      sync.Mutex
	done    atomic.Bool
	produce func() (T, error)
	value   T
	err     error
}

// New creates a handle that calls produce on the first Value call.
func New[T any](produce func() (T, error)) *Lazy[T] {
	return &Lazy[T]{produce: produce}
}

// Of creates an already-evaluated handle.
func Of[T any](value T) *Lazy[T] {
	l := &Lazy[T]{value: value}
	l.done.Store(true)
	return l
}

// Value returns the produced value, running the producer if this is the first call.
func (l *Lazy[T]) Value() (T, error) {
	if l.done.Load() {
		return l.value, l.err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done.Load() {
		return l.value, l.err
	}

	if l.produce == nil {
		l.err = fmt.Errorf("lazy %s: no producer", l.ValueType())
	} else {
		l.value, l.err = l.produce()
	}
	l.produce = nil
	l.done.Store(true)
	return l.value, l.err
}

// MustValue is like Value but panics on error.
func (l *Lazy[T]) MustValue() T {
	v, err := l.Value()
	if err != nil {
		panic(err)
	}
	return v
}

// IsValueCreated reports whether the producer has run.
func (l *Lazy[T]) IsValueCreated() bool {
	if l == nil {
		return false
	}
	return l.done.Load()
}

// ValueType returns the reflect.Type of T. It is safe to call on a nil handle.
func (l *Lazy[T]) ValueType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Get returns the value as any. It implements Handle.
func (l *Lazy[T]) Get() (any, error) {
	v, err := l.Value()
	if err != nil {
		return nil, err
	}
	return v, nil
}

// String implements fmt.Stringer.
func (l *Lazy[T]) String() string {
	if !l.IsValueCreated() {
		return fmt.Sprintf("Lazy[%s](pending)", l.ValueType())
	}
	if l.err != nil {
		return fmt.Sprintf("Lazy[%s](error: %v)", l.ValueType(), l.err)
	}
	return fmt.Sprintf("Lazy[%s](%v)", l.ValueType(), l.value)
}

// Handle is the untyped view of a *Lazy[T].
type Handle interface {
	ValueType() reflect.Type
	IsValueCreated() bool
	Get() (any, error)
}

var _ Handle = (*Lazy[int])(nil)
