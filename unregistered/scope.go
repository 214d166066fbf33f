package unregistered

import (
	stderrors "errors"
	"io"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/logger"
)

// Scope decorates a di.Scope so that its provider falls back to a resolver.
type Scope struct {
	id       string
	inner    di.Scope
	provider *Provider
	log      *logger.Logger
	closed   atomic.Bool
}

// NewScope wraps inner. When resolver is scoped it is owned by the scope and
// closed with it.
func NewScope(inner di.Scope, resolver TypeResolver, opts ...Option) (*Scope, error) {
	if inner == nil {
		return nil, errors.InvalidArgument("scope")
	}
	p, err := NewProvider(inner.ServiceProvider(), resolver, opts...)
	if err != nil {
		return nil, err
	}
	return &Scope{
		id:       uuid.NewString(),
		inner:    inner,
		provider: p,
		log:      p.log,
	}, nil
}

// ID returns the scope identifier used in logs.
func (s *Scope) ID() string { return s.id }

// ServiceProvider returns the decorated provider of the scope.
func (s *Scope) ServiceProvider() di.ServiceProvider { return s.provider }

// Close closes the scoped resolver, then the inner scope.
func (s *Scope) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	r := s.provider.resolver
	if r.Lifetime() == di.Scoped {
		if closer, ok := r.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := s.inner.Close(); err != nil {
		errs = append(errs, err)
	}

	err := stderrors.Join(errs...)
	if err != nil {
		s.log.Warn("Scope closed with errors", map[string]interface{}{
			logger.FieldScopeID: s.id,
			logger.FieldError:   err.Error(),
		})
	}
	return err
}

var _ di.Scope = (*Scope)(nil)
