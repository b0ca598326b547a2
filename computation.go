package cacheaside

import "context"

// Computation is the unit of work a Template caches.
type Computation[V any] interface {
	// Key names the cached result. ok=false opts this call out of caching
	// entirely: the store is never touched. Called once per Execute.
	Key() (key string, ok bool)
	// Compute produces the value. It may be slow and may fail.
	Compute(ctx context.Context) (V, error)
}

// ComputeFunc adapts a plain function into the Compute half of a Computation.
type ComputeFunc[V any] func(ctx context.Context) (V, error)

type funcComputation[V any] struct {
	key    string
	cached bool
	fn     ComputeFunc[V]
}

func (c funcComputation[V]) Key() (string, bool)                    { return c.key, c.cached }
func (c funcComputation[V]) Compute(ctx context.Context) (V, error) { return c.fn(ctx) }

// Keyed caches fn's result under key.
func Keyed[V any](key string, fn ComputeFunc[V]) Computation[V] {
	return funcComputation[V]{key: key, cached: true, fn: fn}
}

// Uncached runs fn on every Execute without touching the store.
func Uncached[V any](fn ComputeFunc[V]) Computation[V] {
	return funcComputation[V]{fn: fn}
}
