package unregistered

import (
	"context"
	stderrors "errors"
	"io"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/logger"
	"github.com/kbukum/diext/observability"
)

// Cache memoizes fallback instances per type for the lifetime of a scope or
// of the whole container. It is safe for concurrent use.
type Cache struct {
	lifetime di.Lifetime
	resolver TypeResolver
	log      *logger.Logger
	metrics  *observability.Metrics

	// mu is held for reading by Resolve and for writing by Close, so nothing
	// is stored after the cache has been closed.
	mu        sync.RWMutex
	instances sync.Map // reflect.Type -> any
	group     singleflight.Group
	disposed  atomic.Bool
}

// NewCache creates a cache for di.Scoped or di.Singleton instances. Misses are
// constructed with a stateless Resolver unless WithResolver is given.
func NewCache(lifetime di.Lifetime, opts ...Option) (*Cache, error) {
	if lifetime != di.Scoped && lifetime != di.Singleton {
		return nil, errors.Configuration("an unregistered-type cache supports only scoped and singleton lifetimes").
			WithDetail("lifetime", lifetime.String())
	}

	o := newOptions(opts)
	if o.resolver == nil {
		o.resolver = NewResolver(WithLogger(o.log))
	}
	return &Cache{
		lifetime: lifetime,
		resolver: o.resolver,
		log:      o.log,
		metrics:  o.metrics,
	}, nil
}

// Lifetime returns the lifetime the cache was created with.
func (c *Cache) Lifetime() di.Lifetime { return c.lifetime }

// TryGetCached returns the cached instance of t. It never constructs.
func (c *Cache) TryGetCached(t reflect.Type) (any, bool, error) {
	if t == nil {
		return nil, false, errors.InvalidArgument("serviceType")
	}
	if c.disposed.Load() {
		return nil, false, errors.Disposed(c.name())
	}
	v, ok := c.instances.Load(t)
	return v, ok, nil
}

// Resolve returns the cached instance of t, constructing it on the first call.
// Concurrent first calls share one construction. Failures are not cached.
func (c *Cache) Resolve(t reflect.Type) (any, error) {
	if t == nil {
		return nil, errors.InvalidArgument("serviceType")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.disposed.Load() {
		return nil, errors.Disposed(c.name())
	}
	if v, ok := c.instances.Load(t); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(typeKey(t), func() (any, error) {
		if v, ok := c.instances.Load(t); ok {
			return v, nil
		}
		instance, err := c.resolver.Resolve(t)
		if err != nil {
			return nil, err
		}
		c.instances.Store(t, instance)
		return instance, nil
	})
	return v, err
}

// Contains reports whether an instance of t is cached.
func (c *Cache) Contains(t reflect.Type) (bool, error) {
	if t == nil {
		return false, errors.InvalidArgument("serviceType")
	}
	if c.disposed.Load() {
		return false, errors.Disposed(c.name())
	}
	_, ok := c.instances.Load(t)
	return ok, nil
}

// Close closes every cached io.Closer once and drops the cache contents.
// Calling Close again does nothing.
func (c *Cache) Close() error {
	if !c.disposed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		errs  []error
		count int
	)
	c.instances.Range(func(key, value any) bool {
		count++
		if closer, ok := value.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		c.instances.Delete(key)
		return true
	})

	c.metrics.RecordCacheClosed(context.Background(), c.lifetime.String(), count)
	c.log.Debug("Unregistered-type cache closed", map[string]interface{}{
		logger.FieldLifetime: c.lifetime.String(),
		logger.FieldCount:    count,
	})
	return stderrors.Join(errs...)
}

func (c *Cache) name() string {
	return c.lifetime.String() + " unregistered-type cache"
}

// typeKey identifies t for singleflight. Type names are not unique across
// packages, the runtime type pointer is.
func typeKey(t reflect.Type) string {
	return strconv.FormatUint(uint64(reflect.ValueOf(t).Pointer()), 16)
}

var (
	_ TypeResolver = (*Cache)(nil)
	_ io.Closer    = (*Cache)(nil)
)
