package di

import (
	"fmt"
	"reflect"

	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/lazy"
)

// ServiceID identifies a registration. A non-nil Key marks a keyed service.
type ServiceID struct {
	Type reflect.Type
	Key  any
}

// IsKeyed reports whether the identity carries a key.
func (id ServiceID) IsKeyed() bool { return id.Key != nil }

func (id ServiceID) String() string {
	if id.Type == nil {
		return "<nil>"
	}
	if id.Key == nil {
		return id.Type.String()
	}
	return fmt.Sprintf("%s[%v]", id.Type, id.Key)
}

// Factory builds an instance of a service. The provider passed in resolves
// dependencies from the scope the service is being created in.
type Factory func(sp ServiceProvider) (any, error)

// Descriptor is one registration entry. Descriptors are immutable once built.
type Descriptor struct {
	id          ServiceID
	lifetime    Lifetime
	factory     Factory
	instance    any
	hasInstance bool
	implType    reflect.Type
}

func (d *Descriptor) ID() ServiceID                    { return d.id }
func (d *Descriptor) ServiceType() reflect.Type        { return d.id.Type }
func (d *Descriptor) Key() any                         { return d.id.Key }
func (d *Descriptor) IsKeyed() bool                    { return d.id.IsKeyed() }
func (d *Descriptor) Lifetime() Lifetime               { return d.lifetime }
func (d *Descriptor) Factory() Factory                 { return d.factory }
func (d *Descriptor) ImplementationType() reflect.Type { return d.implType }

// Instance returns the pre-built instance, if the descriptor has one.
func (d *Descriptor) Instance() (any, bool) { return d.instance, d.hasInstance }

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s (%s)", d.id, d.lifetime)
}

// NewDescriptor builds an untyped factory descriptor.
func NewDescriptor(t reflect.Type, key any, lifetime Lifetime, factory Factory) (*Descriptor, error) {
	if t == nil {
		return nil, errors.InvalidArgument("serviceType")
	}
	if factory == nil {
		return nil, errors.InvalidArgument("factory")
	}
	if !lifetime.IsValid() {
		return nil, errors.Configuration(fmt.Sprintf("invalid lifetime %d for %s", int(lifetime), t)).
			WithDetail("lifetime", int(lifetime))
	}
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return &Descriptor{
		id:       ServiceID{Type: t, Key: key},
		lifetime: lifetime,
		factory:  factory,
		implType: t,
	}, nil
}

// NewInstanceDescriptor builds an untyped singleton descriptor around a pre-built instance.
func NewInstanceDescriptor(t reflect.Type, key any, instance any) (*Descriptor, error) {
	if t == nil {
		return nil, errors.InvalidArgument("serviceType")
	}
	if instance == nil {
		return nil, errors.InvalidArgument("instance")
	}
	implType := reflect.TypeOf(instance)
	if !implType.AssignableTo(t) {
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("instance of %s is not assignable to %s", implType, t))
	}
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return &Descriptor{
		id:          ServiceID{Type: t, Key: key},
		lifetime:    Singleton,
		instance:    instance,
		hasInstance: true,
		implType:    implType,
	}, nil
}

// Describe builds a descriptor for T. It also registers the lazy wrapper
// capability for T so a *lazy.Lazy[T] companion can be derived later.
func Describe[T any](lifetime Lifetime, factory func(sp ServiceProvider) (T, error)) (*Descriptor, error) {
	return DescribeKeyed[T](lifetime, nil, factory)
}

// DescribeKeyed is like Describe for a keyed service.
func DescribeKeyed[T any](lifetime Lifetime, key any, factory func(sp ServiceProvider) (T, error)) (*Descriptor, error) {
	if factory == nil {
		return nil, errors.InvalidArgument("factory")
	}
	lazy.Register[T]()
	return NewDescriptor(TypeOf[T](), key, lifetime, func(sp ServiceProvider) (any, error) {
		v, err := factory(sp)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}

// DescribeInstance builds a singleton descriptor for a pre-built T.
func DescribeInstance[T any](instance T) (*Descriptor, error) {
	return DescribeKeyedInstance[T](nil, instance)
}

// DescribeKeyedInstance is like DescribeInstance for a keyed service.
func DescribeKeyedInstance[T any](key any, instance T) (*Descriptor, error) {
	lazy.Register[T]()
	return NewInstanceDescriptor(TypeOf[T](), key, instance)
}

func checkKey(key any) error {
	if key != nil && !reflect.TypeOf(key).Comparable() {
		return errors.New(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("service key of type %T is not comparable", key))
	}
	return nil
}
