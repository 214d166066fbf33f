package di

import (
	"fmt"
	"reflect"

	"github.com/kbukum/diext/errors"
)

// TypeOf returns the reflect.Type used as T's service identity.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Resolve resolves a required service with type safety.
//
// Example:
//
//	repo, err := di.Resolve[contracts.BotRepository](sp)
//	if err != nil {
//	    return fmt.Errorf("failed to get bot repository: %w", err)
//	}
func Resolve[T any](sp ServiceProvider) (T, error) {
	var zero T
	if sp == nil {
		return zero, errors.InvalidArgument("provider")
	}
	instance, err := sp.GetRequiredService(TypeOf[T]())
	if err != nil {
		return zero, err
	}
	return cast[T](instance)
}

// MustResolve resolves a required service, panics on error.
// Use this in wiring code where a missing dependency is a programming error.
func MustResolve[T any](sp ServiceProvider) T {
	v, err := Resolve[T](sp)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", TypeOf[T](), err))
	}
	return v
}

// TryResolve resolves an optional service, returns zero value and false if
// it is not registered or cannot be resolved.
//
// Example:
//
//	if metrics, ok := di.TryResolve[MetricsClient](sp); ok {
//	    metrics.RecordEvent(...)
//	}
func TryResolve[T any](sp ServiceProvider) (T, bool) {
	var zero T
	if sp == nil {
		return zero, false
	}
	instance, err := sp.GetService(TypeOf[T]())
	if err != nil || instance == nil {
		return zero, false
	}
	v, err := cast[T](instance)
	if err != nil {
		return zero, false
	}
	return v, true
}

// ResolveKeyed resolves a required keyed service. The provider must implement
// KeyedServiceProvider.
func ResolveKeyed[T any](sp ServiceProvider, key any) (T, error) {
	var zero T
	if sp == nil {
		return zero, errors.InvalidArgument("provider")
	}
	kp, ok := sp.(KeyedServiceProvider)
	if !ok {
		return zero, errors.New(errors.ErrCodeUnsupported,
			fmt.Sprintf("provider %T does not support keyed services", sp))
	}
	instance, err := kp.GetRequiredKeyedService(TypeOf[T](), key)
	if err != nil {
		return zero, err
	}
	return cast[T](instance)
}

// MustResolveKeyed is like ResolveKeyed but panics on error.
func MustResolveKeyed[T any](sp ServiceProvider, key any) T {
	v, err := ResolveKeyed[T](sp, key)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s[%v]: %v", TypeOf[T](), key, err))
	}
	return v
}

func cast[T any](instance any) (T, error) {
	var zero T
	if instance == nil {
		return zero, nil
	}
	result, ok := instance.(T)
	if !ok {
		return zero, errors.New(errors.ErrCodeInternal,
			fmt.Sprintf("di: service is %T, expected %s", instance, TypeOf[T]()))
	}
	return result, nil
}
