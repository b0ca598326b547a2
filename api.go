package cacheaside

import (
	"context"
	"time"

	"github.com/unkn0wn-root/cacheaside/pool"
)

// Store is the backing store capability a Template needs.
// Implementations must be safe for concurrent use across keys.
type Store[V any] interface {
	// Read returns (entry, true, nil) on hit, (zero, false, nil) on miss.
	Read(ctx context.Context, key string) (Entry[V], bool, error)

	// Write persists e. isUpdate=false is an insert (a store may keep an entry
	// another writer added first); isUpdate=true replaces.
	Write(ctx context.Context, key string, e Entry[V], isUpdate bool) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Template is the cache-aside orchestrator. Safe for concurrent use.
type Template[V any] interface {
	Enabled() bool

	// Execute runs c with the default freshness window.
	Execute(ctx context.Context, c Computation[V]) (V, error)

	// ExecuteWithin runs c with a per-call freshness window; 0 means the default.
	ExecuteWithin(ctx context.Context, c Computation[V], window time.Duration) (V, error)

	// Get reads the raw entry for key, with no freshness check.
	Get(ctx context.Context, key string) (e Entry[V], ok bool, err error)

	// Delete removes key from the store synchronously.
	Delete(ctx context.Context, key string) error

	// Close drains the write pool (when owned) and closes the store if it has
	// a Close(context.Context) error method. The store is closed even when the
	// drain hits ctx's deadline; both errors are joined.
	Close(ctx context.Context) error
}

// Options tune the behavior of a Template.
// Only Store is required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Store Store[V]

	Window                time.Duration // 0 => 30m
	DisableStaleOnFailure bool          // default false => stale value served when refresh fails
	WriteTimeout          time.Duration // per async write; 0 => no deadline

	// Pool sizes the template's own write pool. Ignored when Executor is set.
	Pool pool.Config
	// Executor shares a pool between templates. The template does not close it.
	Executor *pool.Pool

	Logger   Logger // if nil, NopLogger is used
	Hooks    Hooks  // if nil, NopHooks is used
	Disabled bool   // default false (enabled); disabled templates always compute

	// Coalesce deduplicates concurrent recomputation of the same key within this
	// process. Followers share the leader's result; only the leader schedules a
	// write. The shared computation keeps the leader's ctx values but ignores its
	// cancellation, so one caller going away cannot fail the others.
	Coalesce bool

	// Now is the clock used for entry timestamps and expiry. nil => time.Now.
	Now func() time.Time
}

func New[V any](opts Options[V]) (Template[V], error) {
	return newTemplate(opts)
}
