// Package lazy provides Lazy[T], a memoizing handle whose value is produced on
// first access, and a runtime registry that builds handles for a value type
// known only as a reflect.Type.
//
// # Handles
//
//	l := lazy.New(func() (*Repo, error) { return openRepo() })
//	repo, err := l.Value() // openRepo runs here, once
//
// # Registry
//
// Register[T] records how to build a *Lazy[T]. Code that only holds a
// reflect.Type (such as a registration extender walking a service table) looks
// the capability up with Lookup and calls Wrapper.Wrap with an untyped thunk.
//
//	w, ok := lazy.Lookup(reflect.TypeFor[*Repo]())
//	h := w.Wrap(func() (any, error) { return sp.GetRequiredService(w.Value) })
//
// Underlying reports whether a type is itself a *Lazy[X].
package lazy
