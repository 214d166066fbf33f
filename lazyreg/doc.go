// Package lazyreg augments a di.Collection with deferred companions.
//
// For every registration of T (optionally keyed) the Extender adds a
// registration of *lazy.Lazy[T] with the same lifetime and key. Resolving the
// companion is cheap; T itself is resolved from the same provider the first
// time the handle's Value is read.
//
//	c := di.NewCollection()
//	_ = di.AddScoped[*Repo](c, newRepo)
//	if err := lazyreg.New().Extend(c); err != nil {
//	    return err
//	}
//	ctr, _ := di.Build(c)
//	scope, _ := ctr.CreateScope()
//	h := di.MustResolve[*lazy.Lazy[*Repo]](scope.ServiceProvider())
//	repo, err := h.Value() // newRepo runs here
package lazyreg
