// Package bootstrap builds a service provider from a registration collection
// and a set of options.
//
// # Quick Start
//
//	services := di.NewCollection()
//	_ = di.AddScoped[*Repository](services, NewRepository)
//
//	opts, err := bootstrap.LoadOptions("my-service")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sp, err := bootstrap.Build(services, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sp.Close()
//
// With AddLazyResolvers every service T can also be resolved as a
// *lazy.Lazy[T]. UnregisteredTypes selects how types with no registration
// are resolved: not at all, a new instance per request, one per scope, or one
// per provider.
package bootstrap
