package di

import (
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/logger"
)

// Option configures Build.
type Option func(*Container)

// WithValidateScopes controls whether Scoped services may be resolved from the
// root provider. Enabled by default.
func WithValidateScopes(validate bool) Option {
	return func(c *Container) { c.validateScopes = validate }
}

// WithLogger sets the container logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Container) {
		if log != nil {
			c.log = log
		}
	}
}

// Container is the built provider. It is safe for concurrent use.
type Container struct {
	registrations  map[ServiceID]*registration
	order          []*registration
	validateScopes bool
	log            *logger.Logger
	root           *scope
	closed         atomic.Bool
}

// registration holds a descriptor and, for singletons, its instance.
type registration struct {
	desc        *Descriptor
	mutex       sync.RWMutex
	initialized bool
	instance    any
}

// RegistrationInfo describes a registration for introspection.
type RegistrationInfo struct {
	ID          ServiceID
	Lifetime    Lifetime
	Initialized bool
}

// Build snapshots the collection and builds a container from it.
func Build(c *Collection, opts ...Option) (*Container, error) {
	if c == nil {
		return nil, errors.InvalidArgument("collection")
	}

	ctr := &Container{
		registrations:  make(map[ServiceID]*registration, c.Len()),
		validateScopes: true,
	}
	for _, opt := range opts {
		opt(ctr)
	}
	ctr.log = logger.OrDefault(ctr.log, "di")

	for _, d := range c.All() {
		reg := &registration{desc: d}
		if inst, ok := d.Instance(); ok {
			reg.instance = inst
			reg.initialized = true
		}
		ctr.registrations[d.id] = reg
		ctr.order = append(ctr.order, reg)
	}
	ctr.root = newScope(ctr, true)

	ctr.log.Info("Container built", map[string]interface{}{
		"descriptors":     c.Len(),
		"services":        len(ctr.registrations),
		"validate_scopes": ctr.validateScopes,
	})
	return ctr, nil
}

// GetService resolves t from the root scope, returning (nil, nil) if unregistered.
func (c *Container) GetService(t reflect.Type) (any, error) {
	return c.root.provider.GetService(t)
}

// GetRequiredService resolves t from the root scope.
func (c *Container) GetRequiredService(t reflect.Type) (any, error) {
	return c.root.provider.GetRequiredService(t)
}

// GetKeyedService resolves t under key from the root scope.
func (c *Container) GetKeyedService(t reflect.Type, key any) (any, error) {
	return c.root.provider.GetKeyedService(t, key)
}

// GetRequiredKeyedService resolves t under key from the root scope.
func (c *Container) GetRequiredKeyedService(t reflect.Type, key any) (any, error) {
	return c.root.provider.GetRequiredKeyedService(t, key)
}

// IsService reports whether t has a non-keyed registration.
func (c *Container) IsService(t reflect.Type) (bool, error) {
	return c.IsKeyedService(t, nil)
}

// IsKeyedService reports whether t has a registration under key.
func (c *Container) IsKeyedService(t reflect.Type, key any) (bool, error) {
	if t == nil {
		return false, errors.InvalidArgument("serviceType")
	}
	if c.closed.Load() {
		return false, errors.Disposed("container")
	}
	if err := checkKey(key); err != nil {
		return false, err
	}
	_, ok := c.registrations[ServiceID{Type: t, Key: key}]
	return ok, nil
}

// CreateScope creates a child scope.
func (c *Container) CreateScope() (Scope, error) {
	if c.closed.Load() {
		return nil, errors.Disposed("container")
	}
	s := newScope(c, false)
	c.log.Debug("Scope created", map[string]interface{}{
		logger.FieldScopeID: s.id,
	})
	return s, nil
}

// Registrations returns info about every resolvable registration.
func (c *Container) Registrations() []RegistrationInfo {
	result := make([]RegistrationInfo, 0, len(c.registrations))
	for _, reg := range c.order {
		if c.registrations[reg.desc.id] != reg {
			continue
		}
		reg.mutex.RLock()
		result = append(result, RegistrationInfo{
			ID:          reg.desc.id,
			Lifetime:    reg.desc.lifetime,
			Initialized: reg.initialized,
		})
		reg.mutex.RUnlock()
	}
	return result
}

// Close closes the root scope, releasing container-created singletons that
// implement io.Closer in reverse creation order. Further use fails.
func (c *Container) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.root.Close()
	c.log.Debug("Container closed")
	return err
}

// --- scopes ---

type scope struct {
	id        string
	container *Container
	isRoot    bool
	provider  *resolver

	mutex       sync.Mutex
	slots       map[ServiceID]*registration
	disposables []io.Closer
	closed      bool
}

func newScope(c *Container, isRoot bool) *scope {
	s := &scope{
		id:        uuid.NewString(),
		container: c,
		isRoot:    isRoot,
		slots:     make(map[ServiceID]*registration),
	}
	s.provider = &resolver{scope: s}
	return s
}

// ID returns the scope's unique identifier.
func (s *scope) ID() string { return s.id }

// ServiceProvider returns the provider resolving from this scope.
func (s *scope) ServiceProvider() ServiceProvider { return s.provider }

// Close closes the instances this scope created, in reverse order.
// Closing twice is a no-op.
func (s *scope) Close() error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return nil
	}
	s.closed = true
	disposables := s.disposables
	s.disposables = nil
	s.slots = nil
	s.mutex.Unlock()

	var errs []error
	for i := len(disposables) - 1; i >= 0; i-- {
		if err := disposables[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if !s.isRoot {
		s.container.log.Debug("Scope closed", map[string]interface{}{
			logger.FieldScopeID: s.id,
			logger.FieldCount:   len(disposables),
		})
	}
	return stderrors.Join(errs...)
}

func (s *scope) track(instance any) error {
	closer, ok := instance.(io.Closer)
	if !ok {
		return nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return errors.Disposed(s.name())
	}
	s.disposables = append(s.disposables, closer)
	return nil
}

func (s *scope) slot(id ServiceID, desc *Descriptor) (*registration, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil, errors.Disposed(s.name())
	}
	reg, ok := s.slots[id]
	if !ok {
		reg = &registration{desc: desc}
		s.slots[id] = reg
	}
	return reg, nil
}

func (s *scope) isClosed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

func (s *scope) name() string {
	if s.isRoot {
		return "container"
	}
	return "scope " + s.id
}

// --- resolution ---

// resolver is the provider handed to callers and factories. It carries the
// chain of services being constructed so cycles can be reported.
type resolver struct {
	scope    *scope
	chain    []ServiceID
	frames   []*frame
	detached bool
}

// frame marks one factory call of the chain as running.
type frame struct {
	done atomic.Bool
}

// Detach returns a provider for use after the factory that received sp, such
// as from a lazy handle. It resolves from the same scope and checks cycles
// only against the services whose factories are still running.
// Other providers are returned unchanged.
func Detach(sp ServiceProvider) ServiceProvider {
	r, ok := sp.(*resolver)
	if !ok {
		return sp
	}
	if len(r.chain) == 0 {
		return r.scope.provider
	}
	return &resolver{scope: r.scope, chain: r.chain, frames: r.frames, detached: true}
}

// live returns the chain to check cycles against. Frames finish in reverse
// order, so the running ones are always a prefix.
func (r *resolver) live() ([]ServiceID, []*frame) {
	if !r.detached {
		return r.chain, r.frames
	}
	n := 0
	for n < len(r.frames) && !r.frames[n].done.Load() {
		n++
	}
	return r.chain[:n], r.frames[:n]
}

func (r *resolver) GetService(t reflect.Type) (any, error) {
	return r.resolve(t, nil, false)
}

func (r *resolver) GetRequiredService(t reflect.Type) (any, error) {
	return r.resolve(t, nil, true)
}

func (r *resolver) GetKeyedService(t reflect.Type, key any) (any, error) {
	return r.resolve(t, key, false)
}

func (r *resolver) GetRequiredKeyedService(t reflect.Type, key any) (any, error) {
	return r.resolve(t, key, true)
}

func (r *resolver) IsService(t reflect.Type) (bool, error) {
	return r.scope.container.IsKeyedService(t, nil)
}

func (r *resolver) IsKeyedService(t reflect.Type, key any) (bool, error) {
	return r.scope.container.IsKeyedService(t, key)
}

func (r *resolver) resolve(t reflect.Type, key any, required bool) (any, error) {
	if t == nil {
		return nil, errors.InvalidArgument("serviceType")
	}
	if err := checkKey(key); err != nil {
		return nil, err
	}
	c := r.scope.container
	if c.closed.Load() {
		return nil, errors.Disposed("container")
	}
	if r.scope.isClosed() {
		return nil, errors.Disposed(r.scope.name())
	}

	id := ServiceID{Type: t, Key: key}
	reg, ok := c.registrations[id]
	if !ok {
		if required {
			return nil, errors.ServiceNotFound(id.String())
		}
		return nil, nil
	}

	current, running := r.live()
	for _, prev := range current {
		if prev == id {
			names := make([]string, 0, len(current)+1)
			for _, p := range current {
				names = append(names, p.String())
			}
			names = append(names, id.String())
			return nil, errors.CircularDependency(names)
		}
	}
	chain := make([]ServiceID, len(current), len(current)+1)
	copy(chain, current)
	chain = append(chain, id)
	frames := make([]*frame, len(running), len(running)+1)
	copy(frames, running)
	frames = append(frames, &frame{})

	switch reg.desc.lifetime {
	case Singleton:
		return c.resolveShared(reg, &resolver{scope: c.root, chain: chain, frames: frames}, c.root)
	case Scoped:
		if r.scope.isRoot && c.validateScopes {
			return nil, errors.ScopeViolation(id.String())
		}
		slot, err := r.scope.slot(id, reg.desc)
		if err != nil {
			return nil, err
		}
		return c.resolveShared(slot, &resolver{scope: r.scope, chain: chain, frames: frames}, r.scope)
	default:
		return c.construct(reg.desc, &resolver{scope: r.scope, chain: chain, frames: frames}, r.scope)
	}
}

// resolveShared returns the instance held by reg, constructing it once.
func (c *Container) resolveShared(reg *registration, next *resolver, owner *scope) (any, error) {
	reg.mutex.RLock()
	if reg.initialized {
		instance := reg.instance
		reg.mutex.RUnlock()
		return instance, nil
	}
	reg.mutex.RUnlock()

	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	// Double-check pattern
	if reg.initialized {
		return reg.instance, nil
	}

	instance, err := c.construct(reg.desc, next, owner)
	if err != nil {
		return nil, err
	}
	reg.instance = instance
	reg.initialized = true
	return instance, nil
}

func (c *Container) construct(desc *Descriptor, next *resolver, owner *scope) (any, error) {
	if inst, ok := desc.Instance(); ok {
		return inst, nil
	}

	instance, err := c.invoke(desc, next)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeCircularDependency) {
			return nil, err
		}
		return nil, errors.ConstructionFailed(desc.id.String(), err)
	}
	if instance != nil {
		if vt := reflect.TypeOf(instance); !vt.AssignableTo(desc.id.Type) {
			return nil, errors.ConstructionFailed(desc.id.String(),
				fmt.Errorf("factory returned %s", vt))
		}
	}
	if err := owner.track(instance); err != nil {
		if closer, ok := instance.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return instance, nil
}

// invoke runs the factory with the last frame of next marked as running.
func (c *Container) invoke(desc *Descriptor, next *resolver) (any, error) {
	if n := len(next.frames); n > 0 {
		defer next.frames[n-1].done.Store(true)
	}
	return desc.factory(next)
}

var (
	_ ServiceProvider               = (*Container)(nil)
	_ KeyedServiceProvider          = (*Container)(nil)
	_ ServiceProviderIsService      = (*Container)(nil)
	_ ServiceProviderIsKeyedService = (*Container)(nil)
	_ ScopeFactory                  = (*Container)(nil)
	_ io.Closer                     = (*Container)(nil)
	_ Scope                         = (*scope)(nil)
)
