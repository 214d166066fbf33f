// Package di provides a type-keyed dependency injection container.
//
// Services are registered in a Collection with a Lifetime (Transient, Scoped or
// Singleton) and an optional key, then Build produces a Container. Scoped
// services live for one Scope; singletons live for the container. Both are
// closed in reverse creation order when their owner closes.
//
// # Registration
//
//	c := di.NewCollection()
//	_ = di.AddSingleton[*Config](c, func(di.ServiceProvider) (*Config, error) {
//	    return LoadConfig()
//	})
//	_ = di.AddScoped[Repository](c, func(sp di.ServiceProvider) (Repository, error) {
//	    cfg, err := di.Resolve[*Config](sp)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewRepository(cfg), nil
//	})
//
// # Resolution
//
//	ctr, _ := di.Build(c)
//	scope, _ := ctr.CreateScope()
//	defer scope.Close()
//	repo := di.MustResolve[Repository](scope.ServiceProvider())
//
// Typed descriptor constructors also register the *lazy.Lazy[T] wrapper
// capability for T, which the lazyreg package uses to add deferred companions.
package di
