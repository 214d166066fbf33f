// Package unregistered resolves types that were never registered with the
// container.
//
// A Resolver constructs structs and pointers to structs on demand. A Cache
// keeps those instances per scope or for the whole container and closes them
// when it is closed. Provider, Scope and ScopeFactory decorate the container
// so that registered services keep their normal resolution and only
// not-found types go to the fallback:
//
//	ctr, _ := di.Build(c)
//	cache, _ := unregistered.NewCache(di.Singleton)
//	sp, _ := unregistered.NewProvider(ctr, cache)
//	svc, err := di.Resolve[*Handler](sp)
package unregistered
