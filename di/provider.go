package di

import (
	"io"
	"reflect"
)

// ServiceProvider resolves services by type.
type ServiceProvider interface {
	// GetService returns (nil, nil) when t is not registered.
	GetService(t reflect.Type) (any, error)
	// GetRequiredService fails with SERVICE_NOT_FOUND when t is not registered.
	GetRequiredService(t reflect.Type) (any, error)
}

// KeyedServiceProvider resolves services by type and key. A nil key resolves
// the non-keyed registration.
type KeyedServiceProvider interface {
	GetKeyedService(t reflect.Type, key any) (any, error)
	GetRequiredKeyedService(t reflect.Type, key any) (any, error)
}

// ServiceProviderIsService reports whether a type is registered.
type ServiceProviderIsService interface {
	IsService(t reflect.Type) (bool, error)
}

// ServiceProviderIsKeyedService reports whether a type is registered under a key.
type ServiceProviderIsKeyedService interface {
	IsKeyedService(t reflect.Type, key any) (bool, error)
}

// ScopeFactory creates scopes.
type ScopeFactory interface {
	CreateScope() (Scope, error)
}

// Scope is a unit of work owning its scoped instances.
type Scope interface {
	io.Closer
	ServiceProvider() ServiceProvider
}
