// Package cacheaside gives any expensive computation transparent caching
// through a cache-aside template, without tying the computation to a backend.
//
// For each Execute the template:
//
//   - computes directly when the Computation has no key (bypass)
//   - computes directly when the store read fails (fail-open)
//   - on a miss, computes and schedules an asynchronous insert
//   - on a fresh hit (now <= createdAt+window), returns the cached value
//   - on an expired hit, recomputes and schedules an asynchronous replace; if
//     recomputation fails the stale value is returned instead (unless
//     DisableStaleOnFailure is set, in which case the error is returned)
//
// Writes are fire-and-forget on a bounded pool (see package pool). When the pool
// is saturated the write is dropped and logged; callers never see it.
//
// Components:
//   - Store[V]: read/write/delete of Entry[V]. ProviderStore adapts any
//     provider.Provider byte store (Redis, memcached, Ristretto, BigCache) using a
//     Codec[V] and a small binary frame that carries the entry's creation time.
//   - Computation[V]: the key plus the value-producing function.
//
// Concurrent executions for the same key are not deduplicated unless
// Options.Coalesce is set.
//
// Usage:
//
//	store, _ := cacheaside.NewProviderStore(cacheaside.ProviderStoreOptions[User]{
//	    Namespace: "user",
//	    Provider:  provider,
//	    Codec:     codec.JSON[User]{},
//	    TTL:       24 * time.Hour,
//	})
//	tpl, _ := cacheaside.New(cacheaside.Options[User]{Store: store})
//	defer tpl.Close(ctx)
//
//	u, err := tpl.Execute(ctx, cacheaside.Keyed("user:42", func(ctx context.Context) (User, error) {
//	    return db.LoadUser(ctx, 42)
//	}))
package cacheaside
