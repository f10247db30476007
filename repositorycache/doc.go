// Package repositorycache decorates a snapshot loader with an entity cache.
//
// # Overview
//
// A CachedRepository wraps a Loader, the function that fetches all rows of
// one entity kind for an owner, and an EntityCache. Reads go through the
// cache; writes pass through to the caller's function and invalidate the
// cache only when they succeed.
//
// # Basic Usage
//
//	products := cache.NewEntityCache[Snapshot](svc, nil, workspaceID, "products")
//	repo := repositorycache.New(products, loadProducts)
//
//	snap, err := repo.Snapshot(ctx, ownerID, false) // cached after the first call
//
//	err = repo.Write(ctx, func(ctx context.Context) error {
//		return client.Products().Delete(ctx, q)
//	})
//	snap, err = repo.Snapshot(ctx, ownerID, true) // forced reload
//
// # Caching Behavior
//
//  1. Unless forced, return the cached snapshot when it belongs to owner
//  2. Otherwise join the load already running for the same owner and cache
//     generation, or start one
//  3. Store the result if no invalidation happened while it was loading
//  4. Return the result to every caller that joined
//
// A failed load stores nothing and every joined caller receives its error.
//
// # Dependents
//
// Snapshots that embed data of another entity register the other
// repository's cache as a dependent with WithDependents. A successful write
// invalidates the repository's own cache and every dependent.
package repositorycache
