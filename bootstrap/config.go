package bootstrap

import (
	"github.com/kbukum/diext/config"
)

// EnvPrefix is the environment variable prefix read by LoadOptions,
// e.g. DIEXT_UNREGISTERED_TYPES=scoped.
const EnvPrefix = "DIEXT_"

// LoadOptions loads Options named name from the YAML file, the .env file and
// DIEXT_ environment variables, then applies defaults and validates.
// Values not present in any source keep their DefaultOptions value.
func LoadOptions(name string, opts ...config.LoaderOption) (*Options, error) {
	o := DefaultOptions()
	loaderOpts := append([]config.LoaderOption{config.WithEnvPrefix(EnvPrefix)}, opts...)
	if err := config.LoadConfig(name, &o, loaderOpts...); err != nil {
		return nil, err
	}
	o.ApplyDefaults()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}
