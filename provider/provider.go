// Package provider defines the byte-store abstraction behind ProviderStore.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// bytes previously passed to Set/Add for a key. Stores that compress or otherwise
// transform values must fully reverse the transform on Get.
//
// The keyspace "entry:<ns>:" is owned by cacheaside. Foreign writes under it
// are treated as corruption and deleted on read.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores (inserts or replaces) value with the given TTL; ttl <= 0 means no expiry.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Adder is implemented by providers with a native insert-if-absent primitive
// (memcached "add", redis SETNX). ok=false with a nil error means the key was
// already present and nothing was written.
type Adder interface {
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)
}
