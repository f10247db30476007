// Package cache provides the per-entity snapshot cache used by the inventory
// catalogs, and the storage and key interfaces behind it.
//
// # Overview
//
//   - CacheService: opaque key/value storage with TTL (sturdyc by default)
//   - KeySerializer: builds stable keys from segments
//   - EntityCache: one owner-tagged snapshot per entity kind
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	products := cache.NewEntityCache[[]model.Product](svc, nil, "ws-1", "products")
//
//	if rows, ok := products.Get(ctx, ownerID, false); ok {
//		return rows, nil
//	}
//	gen := products.Generation()
//	rows, err := fetch(ctx, ownerID)
//	if err != nil {
//		return nil, err
//	}
//	_, err = products.PutIfGeneration(ctx, gen, ownerID, rows)
//
// After any successful write call Invalidate; the next Get misses and the
// generation check keeps loads that started before the write from storing
// their result.
//
// # Keys
//
// Keys are namespace::kind::owner. KeyPrefix(namespace) matches every entry
// of one namespace, which is how a signed-out workspace is dropped:
//
//	_ = svc.DeleteByPrefix(ctx, cache.KeyPrefix("ws-1"))
//
// # Error Handling
//
// Get on a key that holds a value of another type returns
// ErrInvalidResultType. EntityCache treats such an entry as a miss.
package cache
