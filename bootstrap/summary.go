package bootstrap

import (
	"fmt"
	"io"
	"time"

	"github.com/kbukum/diext/di"
	"github.com/kbukum/diext/lazyreg"
)

// Summary records what Build did.
type Summary struct {
	Name           string
	Descriptors    int
	Services       int
	ByLifetime     map[di.Lifetime]int
	Lazy           lazyreg.Result
	LazyEnabled    bool
	Behaviour      Behaviour
	ValidateScopes bool
	Duration       time.Duration
}

// NewSummary creates an empty summary for the named provider.
func NewSummary(name string) *Summary {
	return &Summary{
		Name:       name,
		ByLifetime: make(map[di.Lifetime]int),
		Behaviour:  BehaviourNone,
	}
}

// SetLazy records the lazy-registration result.
func (s *Summary) SetLazy(res lazyreg.Result) {
	s.LazyEnabled = true
	s.Lazy = res
}

// SetRegistrations counts the container registrations by lifetime.
func (s *Summary) SetRegistrations(regs []di.RegistrationInfo) {
	s.Services = len(regs)
	for _, r := range regs {
		s.ByLifetime[r.Lifetime]++
	}
}

// SetOptions records the options the provider was built with.
func (s *Summary) SetOptions(o Options) {
	s.Behaviour = o.UnregisteredTypes
	s.ValidateScopes = o.ValidateScopes
}

// SetDuration records the build time.
func (s *Summary) SetDuration(d time.Duration) {
	s.Duration = d
}

// Display writes the summary as a tree.
func (s *Summary) Display(w io.Writer) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🧩 %s built in %.3fs\n\n", s.Name, s.Duration.Seconds())

	fmt.Fprintf(w, "📦 Services (%d)\n", s.Services)
	lifetimes := []di.Lifetime{di.Transient, di.Scoped, di.Singleton}
	for i, l := range lifetimes {
		prefix := "├──"
		if i == len(lifetimes)-1 {
			prefix = "└──"
		}
		fmt.Fprintf(w, "   %s %s: %d\n", prefix, l, s.ByLifetime[l])
	}

	fmt.Fprintf(w, "\n⚡ Lazy registrations\n")
	if s.LazyEnabled {
		fmt.Fprintf(w, "   ├── added: %d\n", s.Lazy.Added)
		fmt.Fprintf(w, "   ├── existing: %d\n", s.Lazy.Existing)
		fmt.Fprintf(w, "   └── unsupported: %d\n", s.Lazy.Unsupported)
	} else {
		fmt.Fprintf(w, "   └── disabled\n")
	}

	fmt.Fprintf(w, "\n🔎 Unregistered types: %s\n", s.Behaviour)
	fmt.Fprintf(w, "%s Scope validation\n", statusIcon(s.ValidateScopes))
	fmt.Fprintf(w, "\n")
}

func statusIcon(enabled bool) string {
	if enabled {
		return "✅"
	}
	return "⏸️"
}
