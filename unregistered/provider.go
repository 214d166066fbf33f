package unregistered

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/logger"
	"github.com/kbukum/diext/observability"
)

// Provider decorates a service provider so that types the inner provider does
// not know are resolved through a TypeResolver instead.
type Provider struct {
	inner    di.ServiceProvider
	resolver TypeResolver
	opts     []Option
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewProvider wraps inner with resolver as the fallback.
func NewProvider(inner di.ServiceProvider, resolver TypeResolver, opts ...Option) (*Provider, error) {
	if inner == nil {
		return nil, errors.InvalidArgument("provider")
	}
	if resolver == nil {
		return nil, errors.InvalidArgument("resolver")
	}
	o := newOptions(opts)
	return &Provider{
		inner:    inner,
		resolver: resolver,
		opts:     opts,
		log:      o.log,
		metrics:  o.metrics,
	}, nil
}

// Middleware adapts NewProvider to a di.Middleware. The resolver is required:
// Middleware panics on a nil resolver, and the middleware panics on a nil provider.
func Middleware(resolver TypeResolver, opts ...Option) di.Middleware {
	if resolver == nil {
		panic(errors.InvalidArgument("resolver"))
	}
	return func(next di.ServiceProvider) di.ServiceProvider {
		p, err := NewProvider(next, resolver, opts...)
		if err != nil {
			panic(err)
		}
		return p
	}
}

// Inner returns the decorated provider.
func (p *Provider) Inner() di.ServiceProvider { return p.inner }

// Resolver returns the fallback resolver.
func (p *Provider) Resolver() TypeResolver { return p.resolver }

// GetService resolves t from the inner provider when it is registered there,
// otherwise from the fallback resolver.
func (p *Provider) GetService(t reflect.Type) (any, error) {
	registered, err := p.IsService(t)
	if err != nil {
		return nil, err
	}
	if registered {
		return p.inner.GetService(t)
	}
	return p.fallback(t)
}

// GetRequiredService is GetService for callers that treat a missing service
// as an error. The fallback either constructs t or fails.
func (p *Provider) GetRequiredService(t reflect.Type) (any, error) {
	registered, err := p.IsService(t)
	if err != nil {
		return nil, err
	}
	if registered {
		return p.inner.GetRequiredService(t)
	}
	return p.fallback(t)
}

// IsService reports whether the inner provider has a registration for t.
// Inner providers that cannot answer are treated as not having one.
func (p *Provider) IsService(t reflect.Type) (bool, error) {
	if t == nil {
		return false, errors.InvalidArgument("serviceType")
	}
	is, ok := p.inner.(di.ServiceProviderIsService)
	if !ok {
		return false, nil
	}
	return is.IsService(t)
}

// GetKeyedService passes through to the inner provider.
func (p *Provider) GetKeyedService(t reflect.Type, key any) (any, error) {
	kp, err := p.keyed()
	if err != nil {
		return nil, err
	}
	return kp.GetKeyedService(t, key)
}

// GetRequiredKeyedService passes through to the inner provider.
func (p *Provider) GetRequiredKeyedService(t reflect.Type, key any) (any, error) {
	kp, err := p.keyed()
	if err != nil {
		return nil, err
	}
	return kp.GetRequiredKeyedService(t, key)
}

// IsKeyedService passes through to the inner provider.
func (p *Provider) IsKeyedService(t reflect.Type, key any) (bool, error) {
	is, ok := p.inner.(di.ServiceProviderIsKeyedService)
	if !ok {
		if t == nil {
			return false, errors.InvalidArgument("serviceType")
		}
		return false, nil
	}
	return is.IsKeyedService(t, key)
}

// CreateScope creates an inner scope and decorates it. A scoped cache is
// replaced by a fresh one for the new scope; other resolvers are shared.
func (p *Provider) CreateScope() (di.Scope, error) {
	sf, ok := p.inner.(di.ScopeFactory)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported,
			fmt.Sprintf("provider %T cannot create scopes", p.inner))
	}
	inner, err := sf.CreateScope()
	if err != nil {
		return nil, err
	}

	resolver, err := scopeResolver(p.resolver, p.opts)
	if err != nil {
		_ = inner.Close()
		return nil, err
	}
	s, err := NewScope(inner, resolver, p.opts...)
	if err != nil {
		_ = inner.Close()
		return nil, err
	}
	return s, nil
}

func (p *Provider) keyed() (di.KeyedServiceProvider, error) {
	kp, ok := p.inner.(di.KeyedServiceProvider)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported,
			fmt.Sprintf("provider %T does not support keyed services", p.inner))
	}
	return kp, nil
}

func (p *Provider) fallback(t reflect.Type) (any, error) {
	start := time.Now()
	instance, err := p.resolver.Resolve(t)
	elapsed := time.Since(start)

	status := "resolved"
	if err != nil {
		status = string(errors.CodeOf(err))
	}
	p.metrics.RecordFallbackResolve(context.Background(), p.resolver.Lifetime().String(), status, elapsed)

	if err != nil {
		p.log.Debug("Unregistered type resolution failed", map[string]interface{}{
			logger.FieldService:  t.String(),
			logger.FieldLifetime: p.resolver.Lifetime().String(),
			logger.FieldError:    err.Error(),
		})
		return nil, err
	}
	if p.log.DebugEnabled() {
		p.log.Debug("Unregistered type resolved", map[string]interface{}{
			logger.FieldService:  t.String(),
			logger.FieldLifetime: p.resolver.Lifetime().String(),
			logger.FieldDuration: elapsed.Milliseconds(),
		})
	}
	return instance, nil
}

// scopeResolver returns the resolver a new scope should use: a fresh cache
// when r is a scoped cache, r itself otherwise.
func scopeResolver(r TypeResolver, opts []Option) (TypeResolver, error) {
	c, ok := r.(*Cache)
	if !ok || c.lifetime != di.Scoped {
		return r, nil
	}
	return NewCache(di.Scoped, append(append([]Option{}, opts...), WithResolver(c.resolver))...)
}

var (
	_ di.ServiceProvider               = (*Provider)(nil)
	_ di.KeyedServiceProvider          = (*Provider)(nil)
	_ di.ServiceProviderIsService      = (*Provider)(nil)
	_ di.ServiceProviderIsKeyedService = (*Provider)(nil)
	_ di.ScopeFactory                  = (*Provider)(nil)
)
