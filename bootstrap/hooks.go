package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback run by Start or Stop.
type Hook func(ctx context.Context) error

// OnStart registers hooks that run once, when the provider is started.
func (p *Provider) OnStart(hooks ...Hook) {
	p.onStart = append(p.onStart, hooks...)
}

// OnStop registers hooks that run before the provider is closed by Stop.
// Use this to release things resolved from the provider while it is still usable.
func (p *Provider) OnStop(hooks ...Hook) {
	p.onStop = append(p.onStop, hooks...)
}

// runHooks executes a slice of hooks sequentially, returning the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
