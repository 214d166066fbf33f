package unregistered

import (
	"sync/atomic"

	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/logger"
)

// ScopeFactory decorates a di.ScopeFactory so every scope it creates resolves
// unregistered types with the configured lifetime.
type ScopeFactory struct {
	inner     di.ScopeFactory
	lifetime  di.Lifetime
	resolver  TypeResolver
	singleton *Cache
	opts      []Option
	log       *logger.Logger
	closed    atomic.Bool
}

// NewScopeFactory wraps inner. Scoped gives each scope its own cache,
// Singleton shares one cache across scopes, Transient constructs every time.
func NewScopeFactory(inner di.ScopeFactory, lifetime di.Lifetime, opts ...Option) (*ScopeFactory, error) {
	if inner == nil {
		return nil, errors.InvalidArgument("scopeFactory")
	}
	if !lifetime.IsValid() {
		return nil, errors.Configuration("invalid unregistered-type lifetime").
			WithDetail("lifetime", lifetime.String())
	}

	o := newOptions(opts)
	f := &ScopeFactory{
		inner:    inner,
		lifetime: lifetime,
		resolver: o.resolver,
		opts:     opts,
		log:      o.log,
	}
	if f.resolver == nil {
		f.resolver = NewResolver(WithLogger(o.log))
	}
	if lifetime == di.Singleton {
		c, err := NewCache(di.Singleton, f.cacheOptions()...)
		if err != nil {
			return nil, err
		}
		f.singleton = c
	}
	return f, nil
}

// Lifetime returns the lifetime of the fallback instances.
func (f *ScopeFactory) Lifetime() di.Lifetime { return f.lifetime }

// Singleton returns the shared cache, or nil unless the lifetime is Singleton.
func (f *ScopeFactory) Singleton() *Cache { return f.singleton }

// CreateScope creates and decorates an inner scope.
func (f *ScopeFactory) CreateScope() (di.Scope, error) {
	if f.closed.Load() {
		return nil, errors.Disposed("unregistered scope factory")
	}

	inner, err := f.inner.CreateScope()
	if err != nil {
		return nil, err
	}

	var resolver TypeResolver
	switch f.lifetime {
	case di.Scoped:
		c, err := NewCache(di.Scoped, f.cacheOptions()...)
		if err != nil {
			_ = inner.Close()
			return nil, err
		}
		resolver = c
	case di.Singleton:
		resolver = f.singleton
	default:
		resolver = f.resolver
	}

	s, err := NewScope(inner, resolver, f.opts...)
	if err != nil {
		_ = inner.Close()
		return nil, err
	}
	if f.log.DebugEnabled() {
		f.log.Debug("Scope created", map[string]interface{}{
			logger.FieldScopeID:  s.ID(),
			logger.FieldLifetime: f.lifetime.String(),
		})
	}
	return s, nil
}

// Close closes the shared singleton cache. Scopes are closed by their owners.
func (f *ScopeFactory) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	if f.singleton != nil {
		return f.singleton.Close()
	}
	return nil
}

func (f *ScopeFactory) cacheOptions() []Option {
	return append(append([]Option{}, f.opts...), WithResolver(f.resolver))
}

var _ di.ScopeFactory = (*ScopeFactory)(nil)
