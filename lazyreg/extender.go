package lazyreg

import (
	"context"
	"fmt"

	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/lazy"
	"github.com/kbukum/diext/logger"
	"github.com/kbukum/diext/observability"
)

// Extender derives a *lazy.Lazy[T] companion registration for every service T
// in a collection.
type Extender struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures an Extender.
type Option func(*Extender)

// WithLogger sets the extender logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Extender) { e.log = log }
}

// WithMetrics records every added wrapper on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Extender) { e.metrics = m }
}

// New creates an Extender.
func New(opts ...Option) *Extender {
	e := &Extender{}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logger.OrDefault(e.log, "lazyreg")
	return e
}

// Result counts what one Extend run did.
type Result struct {
	Added       int
	Existing    int
	Unsupported int
}

// Extend adds the missing lazy companions to c. Descriptors appended while the
// run is in progress are not revisited, and running it again adds nothing.
func (e *Extender) Extend(c *di.Collection) error {
	_, err := e.ExtendWithResult(c)
	return err
}

// ExtendWithResult is Extend, also reporting counts.
func (e *Extender) ExtendWithResult(c *di.Collection) (Result, error) {
	var res Result
	if c == nil {
		return res, errors.InvalidArgument("collection")
	}

	for _, d := range c.All() {
		out, err := e.extend(c, d)
		if err != nil {
			return res, err
		}
		switch out {
		case outcomeAdded:
			res.Added++
		case outcomeExisting:
			res.Existing++
		case outcomeUnsupported:
			res.Unsupported++
		}
	}

	e.log.Info("Lazy registrations extended", map[string]interface{}{
		"added":       res.Added,
		"existing":    res.Existing,
		"unsupported": res.Unsupported,
	})
	return res, nil
}

// ExtendDescriptor applies the extension rule to a single descriptor.
func (e *Extender) ExtendDescriptor(c *di.Collection, d *di.Descriptor) error {
	if c == nil {
		return errors.InvalidArgument("collection")
	}
	if d == nil {
		return errors.InvalidArgument("descriptor")
	}
	_, err := e.extend(c, d)
	return err
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeAdded
	outcomeExisting
	outcomeUnsupported
)

func (e *Extender) extend(c *di.Collection, d *di.Descriptor) (outcome, error) {
	if lazy.IsLazy(d.ServiceType()) {
		return outcomeSkipped, nil
	}

	w, ok := lazy.Lookup(d.ServiceType())
	if !ok {
		e.log.Warn("No lazy wrapper registered for service, skipping", map[string]interface{}{
			logger.FieldService: d.ID().String(),
		})
		return outcomeUnsupported, nil
	}

	lazyID := di.ServiceID{Type: w.Handle, Key: d.Key()}
	if c.Contains(lazyID) {
		return outcomeExisting, nil
	}

	wrapper, err := di.NewDescriptor(w.Handle, d.Key(), d.Lifetime(), wrapperFactory(w, d.ID()))
	if err != nil {
		return outcomeSkipped, err
	}
	if err := c.Add(wrapper); err != nil {
		return outcomeSkipped, err
	}

	e.metrics.RecordLazyWrapper(context.Background(), d.Lifetime().String(), d.IsKeyed())
	if e.log.DebugEnabled() {
		e.log.Debug("Lazy registration added", map[string]interface{}{
			logger.FieldService:  lazyID.String(),
			logger.FieldLifetime: d.Lifetime().String(),
		})
	}
	return outcomeAdded, nil
}

// wrapperFactory returns a factory producing a handle that, on first access,
// performs a required resolution of id from the provider that created it.
func wrapperFactory(w lazy.Wrapper, id di.ServiceID) di.Factory {
	return func(sp di.ServiceProvider) (any, error) {
		owner := di.Detach(sp)
		return w.Wrap(func() (any, error) {
			if !id.IsKeyed() {
				return owner.GetRequiredService(id.Type)
			}
			kp, ok := owner.(di.KeyedServiceProvider)
			if !ok {
				return nil, errors.New(errors.ErrCodeUnsupported,
					fmt.Sprintf("provider %T cannot resolve keyed service %s", owner, id))
			}
			return kp.GetRequiredKeyedService(id.Type, id.Key)
		}), nil
	}
}
