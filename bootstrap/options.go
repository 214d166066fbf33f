package bootstrap

import (
	"fmt"
	"strings"

	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/logger"
	"github.com/kbukum/diext/observability"
	"github.com/kbukum/diext/validation"
)

// Behaviour selects how types without a registration are resolved.
type Behaviour string

const (
	// BehaviourNone leaves unregistered types to the container, which reports them as not found.
	BehaviourNone      Behaviour = "none"
	BehaviourTransient Behaviour = "transient"
	BehaviourScoped    Behaviour = "scoped"
	BehaviourSingleton Behaviour = "singleton"
)

// ParseBehaviour parses a behaviour name, case-insensitively.
func ParseBehaviour(s string) (Behaviour, error) {
	b := Behaviour(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case BehaviourNone, BehaviourTransient, BehaviourScoped, BehaviourSingleton:
		return b, nil
	case "":
		return BehaviourNone, nil
	}
	return "", errors.Configuration(fmt.Sprintf("unknown unregistered-type behaviour %q", s)).
		WithDetail("behaviour", s)
}

// Lifetime returns the lifetime of fallback instances. ok is false for BehaviourNone.
func (b Behaviour) Lifetime() (lifetime di.Lifetime, ok bool) {
	switch b {
	case BehaviourTransient:
		return di.Transient, true
	case BehaviourScoped:
		return di.Scoped, true
	case BehaviourSingleton:
		return di.Singleton, true
	default:
		return 0, false
	}
}

// Options configures Build.
type Options struct {
	// Name identifies the built provider as a component and in logs.
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
	// AddLazyResolvers registers a *lazy.Lazy[T] for every service T.
	AddLazyResolvers bool `yaml:"add_lazy_resolvers" mapstructure:"add_lazy_resolvers"`
	// UnregisteredTypes selects the fallback for types with no registration.
	UnregisteredTypes Behaviour `yaml:"unregistered_types" mapstructure:"unregistered_types" validate:"oneof=none transient scoped singleton"`
	// ValidateScopes forbids resolving scoped services from the root provider.
	ValidateScopes bool `yaml:"validate_scopes" mapstructure:"validate_scopes"`

	Logging logger.Config               `yaml:"logging" mapstructure:"logging"`
	Metrics observability.MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// DefaultName is the component name used when Options.Name is empty.
const DefaultName = "diext"

// DefaultOptions returns options with scope validation on and no fallback.
func DefaultOptions() Options {
	o := Options{ValidateScopes: true}
	o.ApplyDefaults()
	return o
}

// ApplyDefaults fills empty fields and normalizes the behaviour name.
func (o *Options) ApplyDefaults() {
	if o.Name == "" {
		o.Name = DefaultName
	}
	o.UnregisteredTypes = Behaviour(strings.ToLower(strings.TrimSpace(string(o.UnregisteredTypes))))
	if o.UnregisteredTypes == "" {
		o.UnregisteredTypes = BehaviourNone
	}
	o.Logging.ApplyDefaults()
	o.Metrics.ApplyDefaults()
}

// Validate checks the options, collecting every problem into one CONFIGURATION_ERROR.
func (o *Options) Validate() error {
	v := validation.New()
	v.Merge("", validation.Validate(o))
	v.Merge("logging", o.Logging.Validate())
	return v.Validate()
}
