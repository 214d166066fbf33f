package unregistered

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/mock/gomock"

	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/logger"
	"github.com/kbukum/diext/observability"
)

//go:generate mockgen -source=provider_test.go -destination=mock_provider_test.go -package=unregistered

type inspectableProvider interface {
	di.ServiceProvider
	di.ServiceProviderIsService
}

type typeResolver interface {
	TypeResolver
}

type registeredService struct{ id int }

// plainProvider cannot answer IsService.
type plainProvider struct{}

func (plainProvider) GetService(reflect.Type) (any, error) { return nil, nil }

func (plainProvider) GetRequiredService(reflect.Type) (any, error) {
	return nil, errors.New(errors.ErrCodeServiceNotFound, "none")
}

func buildContainer(t *testing.T, register func(c *di.Collection)) *di.Container {
	t.Helper()
	c := di.NewCollection()
	if register != nil {
		register(c)
	}
	ctr, err := di.Build(c, di.WithLogger(logger.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Close() })
	return ctr
}

func TestNewProvider_NilArguments(t *testing.T) {
	_, err := NewProvider(nil, NewResolver(nopOpts()...))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidArgument))
	_, err = NewProvider(plainProvider{}, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidArgument))
}

func TestProvider_RegisteredTypeUsesInner(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := NewMockinspectableProvider(ctrl)
	resolver := NewMocktypeResolver(ctrl)
	typ := reflect.TypeFor[*registeredService]()
	want := &registeredService{id: 7}

	inner.EXPECT().IsService(typ).Return(true, nil).Times(2)
	inner.EXPECT().GetService(typ).Return(want, nil)
	inner.EXPECT().GetRequiredService(typ).Return(want, nil)
	// The fallback must never be consulted for a registered type.
	resolver.EXPECT().Resolve(gomock.Any()).Times(0)

	p, err := NewProvider(inner, resolver, nopOpts()...)
	require.NoError(t, err)

	got, err := p.GetService(typ)
	require.NoError(t, err)
	assert.Same(t, want, got)

	got, err = p.GetRequiredService(typ)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestProvider_UnregisteredTypeUsesResolver(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := NewMockinspectableProvider(ctrl)
	resolver := NewMocktypeResolver(ctrl)
	typ := reflect.TypeFor[*concreteService]()
	fallback := &concreteService{name: "fallback"}

	inner.EXPECT().IsService(typ).Return(false, nil).Times(2)
	resolver.EXPECT().Resolve(typ).Return(fallback, nil).Times(2)
	resolver.EXPECT().Lifetime().Return(di.Scoped).AnyTimes()

	p, err := NewProvider(inner, resolver, nopOpts()...)
	require.NoError(t, err)

	got, err := p.GetService(typ)
	require.NoError(t, err)
	assert.Same(t, fallback, got)

	got, err = p.GetRequiredService(typ)
	require.NoError(t, err)
	assert.Same(t, fallback, got)
}

func TestProvider_InnerWithoutIsServiceAlwaysFallsBack(t *testing.T) {
	p, err := NewProvider(plainProvider{}, NewResolver(nopOpts()...), nopOpts()...)
	require.NoError(t, err)

	ok, err := p.IsService(reflect.TypeFor[*concreteService]())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := di.Resolve[*concreteService](p)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestProvider_IsServiceNilType(t *testing.T) {
	p, err := NewProvider(plainProvider{}, NewResolver(nopOpts()...), nopOpts()...)
	require.NoError(t, err)

	_, err = p.IsService(nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidArgument))
	_, err = p.GetService(nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidArgument))
}

func TestProvider_OverContainer(t *testing.T) {
	ctr := buildContainer(t, func(c *di.Collection) {
		require.NoError(t, di.AddSingleton[*registeredService](c, func(di.ServiceProvider) (*registeredService, error) {
			return &registeredService{id: 1}, nil
		}))
	})
	cache, err := NewCache(di.Singleton, nopOpts()...)
	require.NoError(t, err)
	p, err := NewProvider(ctr, cache, nopOpts()...)
	require.NoError(t, err)

	reg := di.MustResolve[*registeredService](p)
	assert.Equal(t, 1, reg.id)
	has, err := cache.Contains(reflect.TypeFor[*registeredService]())
	require.NoError(t, err)
	assert.False(t, has, "registered types never reach the cache")

	a := di.MustResolve[*concreteService](p)
	b := di.MustResolve[*concreteService](p)
	assert.Same(t, a, b)

	_, err = di.Resolve[abstractService](p)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupported), "got %v", err)
}

func TestProvider_KeyedPassThrough(t *testing.T) {
	ctr := buildContainer(t, func(c *di.Collection) {
		require.NoError(t, di.AddKeyedSingleton[*registeredService](c, "a", func(di.ServiceProvider) (*registeredService, error) {
			return &registeredService{id: 2}, nil
		}))
	})
	p, err := NewProvider(ctr, NewResolver(nopOpts()...), nopOpts()...)
	require.NoError(t, err)

	got, err := di.ResolveKeyed[*registeredService](p, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, got.id)

	ok, err := p.IsKeyedService(reflect.TypeFor[*registeredService](), "a")
	require.NoError(t, err)
	assert.True(t, ok)

	// No fallback for keyed requests.
	_, err = di.ResolveKeyed[*concreteService](p, "a")
	assert.True(t, errors.HasCode(err, errors.ErrCodeServiceNotFound), "got %v", err)

	plain, err := NewProvider(plainProvider{}, NewResolver(nopOpts()...), nopOpts()...)
	require.NoError(t, err)
	_, err = plain.GetKeyedService(reflect.TypeFor[*registeredService](), "a")
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupported))
	ok, err = plain.IsKeyedService(reflect.TypeFor[*registeredService](), "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMiddleware(t *testing.T) {
	ctr := buildContainer(t, nil)

	sp := di.Chain(di.WithLogging(logger.Nop()), Middleware(NewResolver(nopOpts()...), nopOpts()...))(ctr)
	got, err := di.Resolve[*concreteService](sp)
	require.NoError(t, err)
	assert.NotNil(t, got)

	assert.PanicsWithError(t, errors.InvalidArgument("resolver").Error(), func() { Middleware(nil) })
	assert.Panics(t, func() { Middleware(NewResolver(nopOpts()...))(nil) })
}

func TestProvider_CreateScope(t *testing.T) {
	ctr := buildContainer(t, nil)
	cache, err := NewCache(di.Scoped, nopOpts()...)
	require.NoError(t, err)
	p, err := NewProvider(ctr, cache, nopOpts()...)
	require.NoError(t, err)

	s1, err := p.CreateScope()
	require.NoError(t, err)
	s2, err := p.CreateScope()
	require.NoError(t, err)

	a1 := di.MustResolve[*closerService](s1.ServiceProvider())
	assert.Same(t, a1, di.MustResolve[*closerService](s1.ServiceProvider()))
	a2 := di.MustResolve[*closerService](s2.ServiceProvider())
	assert.NotSame(t, a1, a2)

	require.NoError(t, s1.Close())
	assert.Equal(t, 1, a1.closed)
	assert.Equal(t, 0, a2.closed)
	require.NoError(t, s2.Close())
	assert.Equal(t, 1, a2.closed)

	plain, err := NewProvider(plainProvider{}, cache, nopOpts()...)
	require.NoError(t, err)
	_, err = plain.CreateScope()
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupported))
}

func TestProvider_RecordsFallbackMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	m, err := observability.NewMetrics(mp.Meter("unregistered-test"))
	require.NoError(t, err)

	p, err := NewProvider(buildContainer(t, nil), NewResolver(nopOpts()...), WithLogger(logger.Nop()), WithMetrics(m))
	require.NoError(t, err)

	_, err = di.Resolve[*concreteService](p)
	require.NoError(t, err)
	_, err = di.Resolve[abstractService](p)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	statuses := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != observability.MetricFallbackResolveTotal {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				statuses[status.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), statuses["resolved"])
	assert.Equal(t, int64(1), statuses[string(errors.ErrCodeUnsupported)])
}
