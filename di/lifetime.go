package di

import (
	"fmt"
	"strings"

	"github.com/kbukum/diext/errors"
)

// Lifetime controls how often a registration produces a fresh instance.
type Lifetime int

const (
	Transient Lifetime = iota // new instance on every resolution
	Scoped                    // one instance per scope
	Singleton                 // one instance per container
)

// String returns the lowercase lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// IsValid reports whether l is one of the defined lifetimes.
func (l Lifetime) IsValid() bool {
	return l >= Transient && l <= Singleton
}

// ParseLifetime parses a lifetime name, case-insensitively.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transient":
		return Transient, nil
	case "scoped":
		return Scoped, nil
	case "singleton":
		return Singleton, nil
	default:
		return 0, errors.Configuration(fmt.Sprintf("unknown lifetime %q", s)).
			WithDetail("lifetime", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifetime) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, errors.Configuration(fmt.Sprintf("invalid lifetime %d", int(l)))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lifetime) UnmarshalText(text []byte) error {
	parsed, err := ParseLifetime(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
