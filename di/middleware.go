package di

import (
	"reflect"
	"time"

	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/logger"
)

// Middleware transforms a ServiceProvider by wrapping it.
type Middleware func(ServiceProvider) ServiceProvider

// Chain composes multiple middlewares into one. The first middleware is
// outermost: Chain(a, b, c)(sp) is equivalent to a(b(c(sp))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner ServiceProvider) ServiceProvider {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] != nil {
				inner = middlewares[i](inner)
			}
		}
		return inner
	}
}

// WithLogging returns a Middleware that debug-logs each resolution with its
// duration and outcome. Keyed and IsService calls pass through when the inner
// provider supports them.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner ServiceProvider) ServiceProvider {
		return &loggingProvider{inner: inner, log: logger.OrDefault(log, "di")}
	}
}

type loggingProvider struct {
	inner ServiceProvider
	log   *logger.Logger
}

func (l *loggingProvider) GetService(t reflect.Type) (any, error) {
	return l.observe("get_service", t, nil, func() (any, error) {
		return l.inner.GetService(t)
	})
}

func (l *loggingProvider) GetRequiredService(t reflect.Type) (any, error) {
	return l.observe("get_required_service", t, nil, func() (any, error) {
		return l.inner.GetRequiredService(t)
	})
}

func (l *loggingProvider) GetKeyedService(t reflect.Type, key any) (any, error) {
	kp, ok := l.inner.(KeyedServiceProvider)
	if !ok {
		return nil, unsupportedKeyed(l.inner)
	}
	return l.observe("get_keyed_service", t, key, func() (any, error) {
		return kp.GetKeyedService(t, key)
	})
}

func (l *loggingProvider) GetRequiredKeyedService(t reflect.Type, key any) (any, error) {
	kp, ok := l.inner.(KeyedServiceProvider)
	if !ok {
		return nil, unsupportedKeyed(l.inner)
	}
	return l.observe("get_required_keyed_service", t, key, func() (any, error) {
		return kp.GetRequiredKeyedService(t, key)
	})
}

func (l *loggingProvider) IsService(t reflect.Type) (bool, error) {
	if is, ok := l.inner.(ServiceProviderIsService); ok {
		return is.IsService(t)
	}
	if t == nil {
		return false, errors.InvalidArgument("serviceType")
	}
	return false, nil
}

func (l *loggingProvider) IsKeyedService(t reflect.Type, key any) (bool, error) {
	if is, ok := l.inner.(ServiceProviderIsKeyedService); ok {
		return is.IsKeyedService(t, key)
	}
	if t == nil {
		return false, errors.InvalidArgument("serviceType")
	}
	return false, nil
}

func (l *loggingProvider) observe(op string, t reflect.Type, key any, call func() (any, error)) (any, error) {
	start := time.Now()
	instance, err := call()
	duration := time.Since(start)

	fields := map[string]interface{}{
		logger.FieldOperation: op,
		logger.FieldService:   ServiceID{Type: t, Key: key}.String(),
		logger.FieldDuration:  duration.String(),
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
		l.log.Debug("service resolution failed", fields)
	} else {
		fields["found"] = instance != nil
		l.log.Debug("service resolved", fields)
	}
	return instance, err
}

func unsupportedKeyed(sp ServiceProvider) error {
	return errors.New(errors.ErrCodeUnsupported, "provider does not support keyed services").
		WithDetail("provider", reflect.TypeOf(sp).String())
}
