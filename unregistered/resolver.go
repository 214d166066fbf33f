package unregistered

import (
	"fmt"
	"reflect"

	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/logger"
	"github.com/kbukum/diext/observability"
)

// TypeResolver produces instances of types that have no registration.
type TypeResolver interface {
	// Resolve returns an instance of t, creating it if needed.
	Resolve(t reflect.Type) (any, error)
	// TryGetCached returns a previously resolved instance of t without creating one.
	TryGetCached(t reflect.Type) (any, bool, error)
	// Contains reports whether an instance of t is held.
	Contains(t reflect.Type) (bool, error)
	// Lifetime is the lifetime of the instances this resolver hands out.
	Lifetime() di.Lifetime
}

// Initializer is implemented by types that need setup after construction.
type Initializer interface {
	Init() error
}

// Option configures the resolvers, caches and decorators in this package.
type Option func(*options)

type options struct {
	resolver TypeResolver
	log      *logger.Logger
	metrics  *observability.Metrics
}

// WithResolver sets the resolver a cache delegates construction to.
func WithResolver(r TypeResolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics records fallback resolutions and cache disposal on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.log = logger.OrDefault(o.log, "unregistered")
	return o
}

// Resolver constructs a fresh instance on every call. It keeps no state.
type Resolver struct {
	log *logger.Logger
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	o := newOptions(opts)
	return &Resolver{log: o.log}
}

// Resolve constructs t. Structs are created as zero values and pointers to
// structs as a new zero element. Interfaces and every other kind fail with
// UNSUPPORTED_OPERATION.
func (r *Resolver) Resolve(t reflect.Type) (any, error) {
	if t == nil {
		return nil, errors.InvalidArgument("serviceType")
	}

	var ptr reflect.Value
	switch {
	case t.Kind() == reflect.Interface:
		return nil, errors.Unsupported(t.String(), "it is an interface type")
	case t.Kind() == reflect.Struct:
		ptr = reflect.New(t)
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		ptr = reflect.New(t.Elem())
	default:
		return nil, errors.Unsupported(t.String(),
			fmt.Sprintf("%s types have no parameterless constructor", t.Kind()))
	}

	// Init runs on the pointer so pointer receivers work for struct values too.
	if init, ok := ptr.Interface().(Initializer); ok {
		if err := init.Init(); err != nil {
			return nil, errors.ConstructionFailed(t.String(), err)
		}
	}

	if r.log.DebugEnabled() {
		r.log.Debug("Unregistered type constructed", map[string]interface{}{
			logger.FieldService: t.String(),
		})
	}
	if t.Kind() == reflect.Struct {
		return ptr.Elem().Interface(), nil
	}
	return ptr.Convert(t).Interface(), nil
}

// TryGetCached always reports a miss.
func (r *Resolver) TryGetCached(t reflect.Type) (any, bool, error) {
	if t == nil {
		return nil, false, errors.InvalidArgument("serviceType")
	}
	return nil, false, nil
}

// Contains always reports false.
func (r *Resolver) Contains(t reflect.Type) (bool, error) {
	if t == nil {
		return false, errors.InvalidArgument("serviceType")
	}
	return false, nil
}

// Lifetime returns di.Transient.
func (r *Resolver) Lifetime() di.Lifetime { return di.Transient }

var _ TypeResolver = (*Resolver)(nil)
