package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/diext/component"
	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/lazyreg"
	"github.com/kbukum/diext/logger"
	"github.com/kbukum/diext/observability"
	"github.com/kbukum/diext/unregistered"
)

// Option configures Build with collaborators that do not come from config.
type Option func(*buildOptions)

type buildOptions struct {
	logger  *logger.Logger
	metrics *observability.Metrics
}

// WithLogger sets the logger. If not set, one is created from Options.Logging.
func WithLogger(l *logger.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// WithMetrics sets the DI instruments. If not set and Options.Metrics.Enabled
// is true, they are created on the global meter provider.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *buildOptions) { o.metrics = m }
}

// Provider is the service provider produced by Build. It is a component owned
// by the application: Stop or Close disposes everything it created.
type Provider struct {
	name      string
	options   Options
	container *di.Container
	root      di.ServiceProvider
	scopes    di.ScopeFactory
	closers   []io.Closer
	summary   *Summary
	log       *logger.Logger

	onStart []Hook
	onStop  []Hook

	started atomic.Bool
	closed  atomic.Bool
}

// Build is BuildContext with a background context.
func Build(c *di.Collection, opts *Options, bopts ...Option) (*Provider, error) {
	return BuildContext(context.Background(), c, opts, bopts...)
}

// BuildContext adds lazy registrations to c when enabled, builds the
// container and decorates it with the configured unregistered-type fallback.
// A nil opts means DefaultOptions.
//
// Example:
//
//	sp, err := bootstrap.Build(services, &bootstrap.Options{
//	    AddLazyResolvers:  true,
//	    UnregisteredTypes: bootstrap.BehaviourScoped,
//	    ValidateScopes:    true,
//	})
func BuildContext(ctx context.Context, c *di.Collection, opts *Options, bopts ...Option) (p *Provider, err error) {
	if c == nil {
		return nil, errors.InvalidArgument("collection")
	}
	o := DefaultOptions()
	if opts != nil {
		o = *opts
		o.ApplyDefaults()
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanBuild)
	defer func() { observability.EndSpan(span, err) }()
	observability.SetSpanAttribute(ctx, observability.AttrServiceName, o.Name)
	observability.SetSpanAttribute(ctx, observability.AttrDescriptors, c.Len())
	observability.SetSpanAttribute(ctx, observability.AttrLazyEnabled, o.AddLazyResolvers)
	observability.SetSpanAttribute(ctx, observability.AttrBehaviour, string(o.UnregisteredTypes))

	var bo buildOptions
	for _, opt := range bopts {
		opt(&bo)
	}
	log := bo.logger
	if log == nil {
		log = logger.New(&o.Logging, o.Name)
	}
	metrics := bo.metrics
	if metrics == nil && o.Metrics.Enabled {
		if metrics, err = observability.NewMetrics(observability.Meter(o.Metrics.MeterName)); err != nil {
			return nil, errors.Configuration("failed to create DI metrics").WithCause(err)
		}
	}

	start := time.Now()
	summary := NewSummary(o.Name)

	if o.AddLazyResolvers {
		_, extSpan := observability.StartSpan(ctx, observability.SpanExtend)
		ext := lazyreg.New(lazyreg.WithLogger(log.WithComponent("lazyreg")), lazyreg.WithMetrics(metrics))
		res, extErr := ext.ExtendWithResult(c)
		observability.EndSpan(extSpan, extErr)
		if extErr != nil {
			return nil, extErr
		}
		summary.SetLazy(res)
	}

	ctr, err := di.Build(c,
		di.WithValidateScopes(o.ValidateScopes),
		di.WithLogger(log.WithComponent("di")),
	)
	if err != nil {
		return nil, err
	}

	p = &Provider{
		name:      o.Name,
		options:   o,
		container: ctr,
		root:      ctr,
		scopes:    ctr,
		summary:   summary,
		log:       log,
	}

	if lifetime, ok := o.UnregisteredTypes.Lifetime(); ok {
		if err := p.decorate(lifetime, metrics); err != nil {
			_ = ctr.Close()
			return nil, err
		}
	}
	if log.DebugEnabled() {
		p.root = di.WithLogging(log.WithComponent("resolve"))(p.root)
	}

	summary.SetRegistrations(ctr.Registrations())
	summary.SetOptions(o)
	summary.SetDuration(time.Since(start))

	log.Info("Service provider built", map[string]interface{}{
		"descriptors":        c.Len(),
		"lazy_added":         summary.Lazy.Added,
		"unregistered_types": string(o.UnregisteredTypes),
		"validate_scopes":    o.ValidateScopes,
		logger.FieldDuration: summary.Duration.Milliseconds(),
	})
	return p, nil
}

// decorate wraps the root and the scope factory with the fallback for lifetime.
// The root uses the shared singleton cache, its own scoped cache, or a plain
// resolver.
func (p *Provider) decorate(lifetime di.Lifetime, metrics *observability.Metrics) error {
	uopts := []unregistered.Option{
		unregistered.WithLogger(p.log.WithComponent("unregistered")),
		unregistered.WithMetrics(metrics),
	}

	factory, err := unregistered.NewScopeFactory(p.container, lifetime, uopts...)
	if err != nil {
		return err
	}
	p.closers = append(p.closers, factory)

	var resolver unregistered.TypeResolver
	switch lifetime {
	case di.Singleton:
		resolver = factory.Singleton()
	case di.Scoped:
		cache, err := unregistered.NewCache(di.Scoped, uopts...)
		if err != nil {
			return err
		}
		p.closers = append(p.closers, cache)
		resolver = cache
	default:
		resolver = unregistered.NewResolver(uopts...)
	}

	root, err := unregistered.NewProvider(p.container, resolver, uopts...)
	if err != nil {
		return err
	}
	p.root = root
	p.scopes = factory
	return nil
}

// Container returns the undecorated container.
func (p *Provider) Container() *di.Container { return p.container }

// Options returns the options the provider was built with, defaults applied.
func (p *Provider) Options() Options { return p.options }

// Summary returns what Build did.
func (p *Provider) Summary() *Summary { return p.summary }

// DisplaySummary prints the build summary to stdout.
func (p *Provider) DisplaySummary() { p.summary.Display(os.Stdout) }

// GetService resolves t from the root provider.
func (p *Provider) GetService(t reflect.Type) (any, error) {
	return p.root.GetService(t)
}

// GetRequiredService resolves t from the root provider.
func (p *Provider) GetRequiredService(t reflect.Type) (any, error) {
	return p.root.GetRequiredService(t)
}

// GetKeyedService resolves t under key from the root provider.
func (p *Provider) GetKeyedService(t reflect.Type, key any) (any, error) {
	return p.keyed().GetKeyedService(t, key)
}

// GetRequiredKeyedService resolves t under key from the root provider.
func (p *Provider) GetRequiredKeyedService(t reflect.Type, key any) (any, error) {
	return p.keyed().GetRequiredKeyedService(t, key)
}

// IsService reports whether t is registered.
func (p *Provider) IsService(t reflect.Type) (bool, error) {
	return p.container.IsService(t)
}

// IsKeyedService reports whether t is registered under key.
func (p *Provider) IsKeyedService(t reflect.Type, key any) (bool, error) {
	return p.container.IsKeyedService(t, key)
}

// keyed returns the root as a keyed provider. Every root Build installs is one.
func (p *Provider) keyed() di.KeyedServiceProvider {
	if kp, ok := p.root.(di.KeyedServiceProvider); ok {
		return kp
	}
	return p.container
}

// CreateScope creates a scope with the configured fallback.
func (p *Provider) CreateScope() (di.Scope, error) {
	_, span := observability.StartSpan(context.Background(), observability.SpanCreateScope)
	s, err := p.scopes.CreateScope()
	if err == nil {
		if ider, ok := s.(interface{ ID() string }); ok {
			span.SetAttributes(attribute.String(observability.AttrScopeID, ider.ID()))
		}
	}
	observability.EndSpan(span, err)
	return s, err
}

// Name implements component.Component.
func (p *Provider) Name() string { return p.name }

// Start runs the OnStart hooks. The provider is usable before Start.
func (p *Provider) Start(ctx context.Context) error {
	if p.closed.Load() {
		return errors.Disposed("provider " + p.name)
	}
	if !p.started.CompareAndSwap(false, true) {
		return nil
	}
	if err := runHooks(ctx, p.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	p.log.Info("Service provider started", map[string]interface{}{
		logger.FieldComponent: p.name,
	})
	return nil
}

// Stop runs the OnStop hooks, then closes the provider.
func (p *Provider) Stop(ctx context.Context) error {
	var hookErr error
	if !p.closed.Load() {
		if err := runHooks(ctx, p.onStop); err != nil {
			p.log.Error("OnStop hook error", logger.ErrorFields("stop", err))
			hookErr = fmt.Errorf("onStop hook failed: %w", err)
		}
	}
	return stderrors.Join(hookErr, p.Close())
}

// Health implements component.Component.
func (p *Provider) Health(ctx context.Context) component.Health {
	h := component.Health{Name: p.name, Status: component.StatusHealthy}
	switch {
	case p.closed.Load():
		h.Status = component.StatusUnhealthy
		h.Message = "closed"
	case !p.started.Load():
		h.Message = "not started"
	}
	return h
}

// Describe implements component.Describable.
func (p *Provider) Describe() component.Description {
	lazy := "off"
	if p.options.AddLazyResolvers {
		lazy = "on"
	}
	return component.Description{
		Name: p.name,
		Type: "di",
		Details: fmt.Sprintf("services=%d lazy=%s unregistered=%s",
			p.summary.Services, lazy, p.options.UnregisteredTypes),
	}
}

// Close disposes the fallback caches, then the container. Calling it again
// does nothing.
func (p *Provider) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.container.Close(); err != nil {
		errs = append(errs, err)
	}

	err := stderrors.Join(errs...)
	if err != nil {
		p.log.Error("Service provider closed with errors", logger.ErrorFields("close", err))
	} else {
		p.log.Info("Service provider closed", map[string]interface{}{
			logger.FieldComponent: p.name,
		})
	}
	return err
}

var (
	_ di.ServiceProvider               = (*Provider)(nil)
	_ di.KeyedServiceProvider          = (*Provider)(nil)
	_ di.ServiceProviderIsService      = (*Provider)(nil)
	_ di.ServiceProviderIsKeyedService = (*Provider)(nil)
	_ di.ScopeFactory                  = (*Provider)(nil)
	_ component.Component              = (*Provider)(nil)
	_ component.Describable            = (*Provider)(nil)
	_ io.Closer                        = (*Provider)(nil)
)
