package di

import (
	"github.com/kbukum/diext/errors"
)

// Collection is the ordered registration table a Container is built from.
// Duplicate identities are allowed; the last one wins when resolving a single
// service. A Collection is not safe for concurrent mutation.
type Collection struct {
	descriptors []*Descriptor
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends a descriptor.
func (c *Collection) Add(d *Descriptor) error {
	if d == nil {
		return errors.InvalidArgument("descriptor")
	}
	c.descriptors = append(c.descriptors, d)
	return nil
}

// Len returns the number of descriptors.
func (c *Collection) Len() int { return len(c.descriptors) }

// At returns the i-th descriptor.
func (c *Collection) At(i int) *Descriptor { return c.descriptors[i] }

// All returns a snapshot of the descriptors in registration order.
func (c *Collection) All() []*Descriptor {
	out := make([]*Descriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Any reports whether some descriptor satisfies pred.
func (c *Collection) Any(pred func(d *Descriptor) bool) bool {
	for _, d := range c.descriptors {
		if pred(d) {
			return true
		}
	}
	return false
}

// Contains reports whether a descriptor with exactly this identity exists.
func (c *Collection) Contains(id ServiceID) bool {
	return c.Any(func(d *Descriptor) bool { return d.id == id })
}

// --- typed registration helpers ---

func AddTransient[T any](c *Collection, factory func(sp ServiceProvider) (T, error)) error {
	return add(c, func() (*Descriptor, error) { return Describe[T](Transient, factory) })
}

func AddScoped[T any](c *Collection, factory func(sp ServiceProvider) (T, error)) error {
	return add(c, func() (*Descriptor, error) { return Describe[T](Scoped, factory) })
}

func AddSingleton[T any](c *Collection, factory func(sp ServiceProvider) (T, error)) error {
	return add(c, func() (*Descriptor, error) { return Describe[T](Singleton, factory) })
}

func AddKeyedTransient[T any](c *Collection, key any, factory func(sp ServiceProvider) (T, error)) error {
	return add(c, func() (*Descriptor, error) { return DescribeKeyed[T](Transient, key, factory) })
}

func AddKeyedScoped[T any](c *Collection, key any, factory func(sp ServiceProvider) (T, error)) error {
	return add(c, func() (*Descriptor, error) { return DescribeKeyed[T](Scoped, key, factory) })
}

func AddKeyedSingleton[T any](c *Collection, key any, factory func(sp ServiceProvider) (T, error)) error {
	return add(c, func() (*Descriptor, error) { return DescribeKeyed[T](Singleton, key, factory) })
}

// AddInstance registers a pre-built singleton.
func AddInstance[T any](c *Collection, instance T) error {
	return add(c, func() (*Descriptor, error) { return DescribeInstance[T](instance) })
}

// AddKeyedInstance registers a pre-built keyed singleton.
func AddKeyedInstance[T any](c *Collection, key any, instance T) error {
	return add(c, func() (*Descriptor, error) { return DescribeKeyedInstance[T](key, instance) })
}

func add(c *Collection, describe func() (*Descriptor, error)) error {
	if c == nil {
		return errors.InvalidArgument("collection")
	}
	d, err := describe()
	if err != nil {
		return err
	}
	return c.Add(d)
}
