package lazyreg

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/lazy"
	"github.com/kbukum/diext/logger"
)

type myInterface interface{ ID() int }

type myClass struct{ id int }

func (m *myClass) ID() int { return m.id }

func newMyClass(di.ServiceProvider) (*myClass, error) { return &myClass{id: 1}, nil }

func newMyInterface(di.ServiceProvider) (myInterface, error) { return &myClass{id: 2}, nil }

func newExtender() *Extender {
	return New(WithLogger(logger.Nop()))
}

func countType(c *di.Collection, t reflect.Type) int {
	n := 0
	for _, d := range c.All() {
		if d.ServiceType() == t {
			n++
		}
	}
	return n
}

func TestExtend_NilCollection(t *testing.T) {
	err := newExtender().Extend(nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidArgument), "got %v", err)
}

func TestExtend_SingleTransientInterface(t *testing.T) {
	c := di.NewCollection()
	require.NoError(t, di.AddTransient[myInterface](c, newMyInterface))

	require.NoError(t, newExtender().Extend(c))

	require.Equal(t, 2, c.Len())
	assert.Equal(t, di.TypeOf[myInterface](), c.At(0).ServiceType())
	assert.Equal(t, di.TypeOf[*lazy.Lazy[myInterface]](), c.At(1).ServiceType())
	assert.Equal(t, di.Transient, c.At(1).Lifetime())
	assert.False(t, c.At(1).IsKeyed())

	ctr, err := di.Build(c, di.WithLogger(logger.Nop()))
	require.NoError(t, err)
	h, err := di.Resolve[*lazy.Lazy[myInterface]](ctr)
	require.NoError(t, err)
	assert.False(t, h.IsValueCreated())

	v, err := h.Value()
	require.NoError(t, err)
	assert.IsType(t, &myClass{}, v)
	assert.True(t, h.IsValueCreated())
}

func TestExtend_EverythingButExistingLazy(t *testing.T) {
	c := di.NewCollection()
	require.NoError(t, di.AddTransient[myInterface](c, newMyInterface))
	require.NoError(t, di.AddTransient[*myClass](c, newMyClass))
	require.NoError(t, di.AddTransient[[]myInterface](c, func(sp di.ServiceProvider) ([]myInterface, error) {
		one, err := di.Resolve[myInterface](sp)
		if err != nil {
			return nil, err
		}
		return []myInterface{one}, nil
	}))
	require.NoError(t, di.AddTransient[*lazy.Lazy[*myClass]](c, func(sp di.ServiceProvider) (*lazy.Lazy[*myClass], error) {
		owner := di.Detach(sp)
		return lazy.New(func() (*myClass, error) { return di.Resolve[*myClass](owner) }), nil
	}))

	res, err := newExtender().ExtendWithResult(c)
	require.NoError(t, err)

	assert.Equal(t, 6, c.Len())
	for _, typ := range []reflect.Type{
		di.TypeOf[myInterface](),
		di.TypeOf[*lazy.Lazy[myInterface]](),
		di.TypeOf[[]myInterface](),
		di.TypeOf[*lazy.Lazy[[]myInterface]](),
		di.TypeOf[*myClass](),
		di.TypeOf[*lazy.Lazy[*myClass]](),
	} {
		assert.Equal(t, 1, countType(c, typ), "expected exactly one %s", typ)
	}
	assert.Equal(t, Result{Added: 2, Existing: 1}, res)
}

func TestExtend_Idempotent(t *testing.T) {
	c := di.NewCollection()
	require.NoError(t, di.AddScoped[*myClass](c, newMyClass))
	require.NoError(t, di.AddKeyedSingleton[*myClass](c, "primary", newMyClass))

	ext := newExtender()
	require.NoError(t, ext.Extend(c))
	first := c.Len()
	res, err := ext.ExtendWithResult(c)
	require.NoError(t, err)

	assert.Equal(t, 4, first)
	assert.Equal(t, first, c.Len(), "second run must not add anything")
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 2, res.Existing)
}

func TestExtend_DuplicateSourcesGetOneWrapper(t *testing.T) {
	c := di.NewCollection()
	require.NoError(t, di.AddTransient[*myClass](c, newMyClass))
	require.NoError(t, di.AddSingleton[*myClass](c, newMyClass))

	require.NoError(t, newExtender().Extend(c))

	assert.Equal(t, 1, countType(c, di.TypeOf[*lazy.Lazy[*myClass]]()))
}

func TestExtend_LifetimePreserved(t *testing.T) {
	tests := []struct {
		name     string
		lifetime di.Lifetime
	}{
		{"transient", di.Transient},
		{"scoped", di.Scoped},
		{"singleton", di.Singleton},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := di.NewCollection()
			d, err := di.Describe[*myClass](tc.lifetime, newMyClass)
			require.NoError(t, err)
			require.NoError(t, c.Add(d))

			require.NoError(t, newExtender().Extend(c))

			require.Equal(t, 2, c.Len())
			assert.Equal(t, tc.lifetime, c.At(1).Lifetime())
		})
	}
}

func TestExtend_KeyedIsolation(t *testing.T) {
	lazyType := di.TypeOf[*lazy.Lazy[*myClass]]()
	unkeyedLazy := func(di.ServiceProvider) (*lazy.Lazy[*myClass], error) { return lazy.Of(&myClass{}), nil }

	t.Run("keyed source ignores unkeyed wrapper", func(t *testing.T) {
		c := di.NewCollection()
		require.NoError(t, di.AddKeyedTransient[*myClass](c, "k", newMyClass))
		require.NoError(t, di.AddTransient[*lazy.Lazy[*myClass]](c, unkeyedLazy))

		require.NoError(t, newExtender().Extend(c))

		assert.True(t, c.Contains(di.ServiceID{Type: lazyType, Key: "k"}))
		assert.Equal(t, 2, countType(c, lazyType))
	})

	t.Run("unkeyed source ignores keyed wrapper", func(t *testing.T) {
		c := di.NewCollection()
		require.NoError(t, di.AddTransient[*myClass](c, newMyClass))
		require.NoError(t, di.AddKeyedTransient[*lazy.Lazy[*myClass]](c, "k", unkeyedLazy))

		require.NoError(t, newExtender().Extend(c))

		assert.True(t, c.Contains(di.ServiceID{Type: lazyType}))
		assert.Equal(t, 2, countType(c, lazyType))
	})

	t.Run("different keys get different wrappers", func(t *testing.T) {
		c := di.NewCollection()
		require.NoError(t, di.AddKeyedTransient[*myClass](c, "a", newMyClass))
		require.NoError(t, di.AddKeyedTransient[*myClass](c, "b", newMyClass))
		require.NoError(t, di.AddKeyedTransient[*lazy.Lazy[*myClass]](c, "a", unkeyedLazy))

		require.NoError(t, newExtender().Extend(c))

		assert.True(t, c.Contains(di.ServiceID{Type: lazyType, Key: "b"}))
		assert.Equal(t, 2, countType(c, lazyType))
	})
}

func TestExtend_NoDoubleWrapping(t *testing.T) {
	c := di.NewCollection()
	require.NoError(t, di.AddTransient[*lazy.Lazy[*myClass]](c, func(di.ServiceProvider) (*lazy.Lazy[*myClass], error) {
		return lazy.Of(&myClass{}), nil
	}))

	require.NoError(t, newExtender().Extend(c))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, countType(c, di.TypeOf[*lazy.Lazy[*lazy.Lazy[*myClass]]]()))
}

func TestExtend_KeyedResolution(t *testing.T) {
	c := di.NewCollection()
	require.NoError(t, di.AddKeyedSingleton[myInterface](c, "one", func(di.ServiceProvider) (myInterface, error) {
		return &myClass{id: 1}, nil
	}))
	require.NoError(t, di.AddKeyedSingleton[myInterface](c, "two", func(di.ServiceProvider) (myInterface, error) {
		return &myClass{id: 2}, nil
	}))
	require.NoError(t, newExtender().Extend(c))

	ctr, err := di.Build(c, di.WithLogger(logger.Nop()))
	require.NoError(t, err)

	h, err := di.ResolveKeyed[*lazy.Lazy[myInterface]](ctr, "two")
	require.NoError(t, err)
	direct := di.MustResolveKeyed[myInterface](ctr, "two")
	assert.Same(t, direct, h.MustValue())
	assert.Equal(t, 2, h.MustValue().ID())
}

func TestExtend_ScopedWrapperResolvesFromItsScope(t *testing.T) {
	c := di.NewCollection()
	require.NoError(t, di.AddScoped[*myClass](c, newMyClass))
	require.NoError(t, newExtender().Extend(c))

	ctr, err := di.Build(c, di.WithLogger(logger.Nop()))
	require.NoError(t, err)
	s1, err := ctr.CreateScope()
	require.NoError(t, err)
	defer s1.Close()
	s2, err := ctr.CreateScope()
	require.NoError(t, err)
	defer s2.Close()

	h1 := di.MustResolve[*lazy.Lazy[*myClass]](s1.ServiceProvider())
	assert.Same(t, h1, di.MustResolve[*lazy.Lazy[*myClass]](s1.ServiceProvider()), "scoped wrapper is shared within a scope")

	direct := di.MustResolve[*myClass](s1.ServiceProvider())
	assert.Same(t, direct, h1.MustValue())

	h2 := di.MustResolve[*lazy.Lazy[*myClass]](s2.ServiceProvider())
	assert.NotSame(t, direct, h2.MustValue())
}

func TestExtend_WrapperCreatedInsideFactoryIsNotACycle(t *testing.T) {
	type consumer struct{ dep *lazy.Lazy[*myClass] }

	c := di.NewCollection()
	require.NoError(t, di.AddTransient[*myClass](c, newMyClass))
	require.NoError(t, di.AddTransient[*consumer](c, func(sp di.ServiceProvider) (*consumer, error) {
		h, err := di.Resolve[*lazy.Lazy[*myClass]](sp)
		if err != nil {
			return nil, err
		}
		return &consumer{dep: h}, nil
	}))
	require.NoError(t, newExtender().Extend(c))

	ctr, err := di.Build(c, di.WithLogger(logger.Nop()))
	require.NoError(t, err)

	got := di.MustResolve[*consumer](ctr)
	v, err := got.dep.Value()
	require.NoError(t, err)
	assert.Equal(t, 1, v.ID())
}

type selfReferencing struct{ self *lazy.Lazy[*selfReferencing] }

func newSelfReferencing(sp di.ServiceProvider) (*selfReferencing, error) {
	h, err := di.Resolve[*lazy.Lazy[*selfReferencing]](sp)
	if err != nil {
		return nil, err
	}
	if _, err := h.Value(); err != nil {
		return nil, err
	}
	return &selfReferencing{self: h}, nil
}

func TestExtend_WrapperEvaluatedDuringConstructionReportsCycle(t *testing.T) {
	tests := []struct {
		name     string
		register func(*di.Collection) error
	}{
		{"singleton", func(c *di.Collection) error { return di.AddSingleton[*selfReferencing](c, newSelfReferencing) }},
		{"scoped", func(c *di.Collection) error { return di.AddScoped[*selfReferencing](c, newSelfReferencing) }},
		{"transient", func(c *di.Collection) error { return di.AddTransient[*selfReferencing](c, newSelfReferencing) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := di.NewCollection()
			require.NoError(t, tt.register(c))
			require.NoError(t, newExtender().Extend(c))

			ctr, err := di.Build(c, di.WithLogger(logger.Nop()))
			require.NoError(t, err)
			defer ctr.Close()
			s, err := ctr.CreateScope()
			require.NoError(t, err)
			defer s.Close()

			result := make(chan error, 1)
			go func() {
				_, err := di.Resolve[*selfReferencing](s.ServiceProvider())
				result <- err
			}()

			select {
			case err := <-result:
				assert.True(t, errors.HasCode(err, errors.ErrCodeCircularDependency), "got %v", err)
			case <-time.After(2 * time.Second):
				t.Fatal("resolution did not return")
			}

			// The failed construction leaves nothing locked.
			again := make(chan error, 1)
			go func() {
				_, err := di.Resolve[*selfReferencing](s.ServiceProvider())
				again <- err
			}()
			select {
			case err := <-again:
				assert.True(t, errors.HasCode(err, errors.ErrCodeCircularDependency), "got %v", err)
			case <-time.After(2 * time.Second):
				t.Fatal("second resolution did not return")
			}
		})
	}
}

func TestExtend_WrapperForAnotherServiceResolvesDuringConstruction(t *testing.T) {
	type holder struct{ dep *lazy.Lazy[*myClass] }

	c := di.NewCollection()
	require.NoError(t, di.AddSingleton[*myClass](c, newMyClass))
	require.NoError(t, di.AddSingleton[*holder](c, func(sp di.ServiceProvider) (*holder, error) {
		h, err := di.Resolve[*lazy.Lazy[*myClass]](sp)
		if err != nil {
			return nil, err
		}
		if _, err := h.Value(); err != nil {
			return nil, err
		}
		return &holder{dep: h}, nil
	}))
	require.NoError(t, newExtender().Extend(c))

	ctr, err := di.Build(c, di.WithLogger(logger.Nop()))
	require.NoError(t, err)

	got, err := di.Resolve[*holder](ctr)
	require.NoError(t, err)
	assert.Same(t, di.MustResolve[*myClass](ctr), got.dep.MustValue())
}

func TestExtend_WrapperPropagatesResolutionError(t *testing.T) {
	c := di.NewCollection()
	require.NoError(t, di.AddScoped[*myClass](c, newMyClass))
	require.NoError(t, newExtender().Extend(c))

	ctr, err := di.Build(c, di.WithLogger(logger.Nop()))
	require.NoError(t, err)

	// Scoped wrappers cannot be resolved from the root either.
	_, err = di.Resolve[*lazy.Lazy[*myClass]](ctr)
	assert.True(t, errors.HasCode(err, errors.ErrCodeScopeViolation), "got %v", err)
}

func TestExtend_UntypedDescriptorWithoutWrapperIsSkipped(t *testing.T) {
	type neverDescribed struct{}

	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "warn", Format: "json"}, "test", &buf)

	c := di.NewCollection()
	d, err := di.NewDescriptor(reflect.TypeFor[*neverDescribed](), nil, di.Transient, func(di.ServiceProvider) (any, error) {
		return &neverDescribed{}, nil
	})
	require.NoError(t, err)
	require.NoError(t, c.Add(d))

	res, err := New(WithLogger(log)).ExtendWithResult(c)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, res.Unsupported)
	assert.True(t, strings.Contains(buf.String(), "No lazy wrapper registered"), buf.String())
}

func TestExtendDescriptor(t *testing.T) {
	c := di.NewCollection()
	require.NoError(t, di.AddTransient[myInterface](c, newMyInterface))
	ext := newExtender()

	require.NoError(t, ext.ExtendDescriptor(c, c.At(0)))
	require.NoError(t, ext.ExtendDescriptor(c, c.At(0)))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, countType(c, di.TypeOf[*lazy.Lazy[myInterface]]()))

	assert.True(t, errors.HasCode(ext.ExtendDescriptor(nil, c.At(0)), errors.ErrCodeInvalidArgument))
	assert.True(t, errors.HasCode(ext.ExtendDescriptor(c, nil), errors.ErrCodeInvalidArgument))
}
