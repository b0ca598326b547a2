package cacheaside

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/cacheaside/pool"
)

type template[V any] struct {
	store          Store[V]
	log            Logger
	hooks          Hooks
	enabled        bool
	window         time.Duration
	staleOnFailure bool
	writeTimeout   time.Duration
	now            func() time.Time

	exec     *pool.Pool
	ownsExec bool

	sf *singleflight.Group // nil unless Options.Coalesce
}

func newTemplate[V any](opts Options[V]) (*template[V], error) {
	if opts.Store == nil {
		return nil, ErrStoreRequired
	}
	if opts.Window < 0 {
		return nil, ErrInvalidWindow
	}

	t := &template[V]{
		store:          opts.Store,
		enabled:        !opts.Disabled,
		staleOnFailure: !opts.DisableStaleOnFailure,
		writeTimeout:   opts.WriteTimeout,
	}

	// defaults
	t.log = coalesce[Logger](opts.Logger, NopLogger{})
	t.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	t.window = coalesce(opts.Window, DefaultWindow)
	t.now = opts.Now
	if t.now == nil {
		t.now = time.Now
	}

	if opts.Executor != nil {
		t.exec = opts.Executor
	} else {
		t.exec = pool.New(opts.Pool, pool.WithPanicHandler(func(r any) {
			t.log.Error("cache write panicked", Fields{"panic": fmt.Sprint(r)})
		}))
		t.ownsExec = true
	}
	if opts.Coalesce {
		t.sf = new(singleflight.Group)
	}
	return t, nil
}

func (t *template[V]) Enabled() bool { return t.enabled }

func (t *template[V]) Execute(ctx context.Context, c Computation[V]) (V, error) {
	return t.ExecuteWithin(ctx, c, 0)
}

func (t *template[V]) ExecuteWithin(ctx context.Context, c Computation[V], window time.Duration) (V, error) {
	var zero V
	if c == nil {
		return zero, ErrNilComputation
	}
	if window < 0 {
		return zero, ErrInvalidWindow
	}
	if window == 0 {
		window = t.window
	}

	key, ok := c.Key()
	if !t.enabled || !ok {
		t.log.Debug("cache bypassed, computing directly", Fields{"enabled": t.enabled})
		t.hooks.Served("", OutcomeBypass)
		v, err := c.Compute(ctx)
		if err != nil {
			return zero, &ComputeError{Err: err}
		}
		return v, nil
	}

	e, found, err := t.store.Read(ctx, key)
	if err != nil {
		// the store only accelerates; never let it fail the call
		t.log.Warn("cache read failed, computing directly", Fields{"key": key, "err": err})
		t.hooks.StoreReadFailed(key, err)
		v, cerr := c.Compute(ctx)
		if cerr != nil {
			t.hooks.Served(key, OutcomeError)
			return zero, &ComputeError{Key: key, Err: cerr}
		}
		t.hooks.Served(key, OutcomeFailOpen)
		return v, nil
	}

	if !found {
		v, err := t.populate(ctx, key, c, false)
		if err != nil {
			t.hooks.Served(key, OutcomeError)
			return zero, err
		}
		t.log.Debug("cache miss, computed and scheduled insert", Fields{"key": key})
		t.hooks.Served(key, OutcomeMiss)
		return v, nil
	}

	now := t.now()
	if !e.Expired(now, window) {
		t.log.Debug("cache hit", Fields{"key": key, "age": e.Age(now)})
		t.hooks.Served(key, OutcomeHit)
		return e.Value(), nil
	}

	v, err := t.populate(ctx, key, c, true)
	if err == nil {
		t.log.Debug("cache expired, recomputed and scheduled replace", Fields{"key": key, "age": e.Age(now)})
		t.hooks.Served(key, OutcomeRefresh)
		return v, nil
	}
	if !t.staleOnFailure {
		t.log.Warn("recompute of expired entry failed", Fields{"key": key, "err": err})
		t.hooks.Served(key, OutcomeError)
		return zero, err
	}
	// the store keeps the stale entry; the next call retries the computation
	t.log.Warn("recompute of expired entry failed, serving stale value",
		Fields{"key": key, "age": e.Age(now), "err": err})
	t.hooks.StaleServed(key, e.Age(now), err)
	t.hooks.Served(key, OutcomeStale)
	return e.Value(), nil
}

// populate computes c and, on success, schedules the write-back.
func (t *template[V]) populate(ctx context.Context, key string, c Computation[V], isUpdate bool) (V, error) {
	run := func() (V, error) {
		v, err := c.Compute(ctx)
		if err != nil {
			return v, &ComputeError{Key: key, Refresh: isUpdate, Err: err}
		}
		t.scheduleWrite(ctx, key, NewEntry(v, t.now()), isUpdate)
		return v, nil
	}
	if t.sf == nil {
		return run()
	}

	// followers must not inherit the leader's cancellation
	ctx = context.WithoutCancel(ctx)
	res, err, shared := t.sf.Do(key, func() (any, error) {
		return run()
	})
	if shared {
		t.log.Debug("joined in-flight computation", Fields{"key": key})
	}
	// a nil interface V comes back as a nil any
	v, _ := res.(V)
	if err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}

func (t *template[V]) scheduleWrite(ctx context.Context, key string, e Entry[V], isUpdate bool) {
	// the caller may cancel ctx as soon as we return
	wctx := context.WithoutCancel(ctx)
	err := t.exec.Submit(func() {
		ctx := wctx
		if t.writeTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(wctx, t.writeTimeout)
			defer cancel()
		}
		if err := t.store.Write(ctx, key, e, isUpdate); err != nil {
			t.log.Warn("cache write failed", Fields{"key": key, "update": isUpdate, "err": err})
			t.hooks.WriteFailed(key, isUpdate, err)
			return
		}
		t.log.Debug("cache written", Fields{"key": key, "update": isUpdate})
	})
	if err != nil {
		t.log.Warn("cache write dropped", Fields{"key": key, "update": isUpdate, "err": err})
		t.hooks.WriteDropped(key, isUpdate, err)
	}
}

func (t *template[V]) Get(ctx context.Context, key string) (Entry[V], bool, error) {
	if !t.enabled {
		return Entry[V]{}, false, nil
	}
	e, ok, err := t.store.Read(ctx, key)
	if err != nil {
		return Entry[V]{}, false, &StoreError{Op: "read", Key: key, Err: err}
	}
	return e, ok, nil
}

func (t *template[V]) Delete(ctx context.Context, key string) error {
	if !t.enabled {
		return nil
	}
	if err := t.store.Delete(ctx, key); err != nil {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	t.log.Debug("deleted key", Fields{"key": key})
	return nil
}

type storeCloser interface {
	Close(ctx context.Context) error
}

// Close closes the store even when draining the pool runs out of time.
func (t *template[V]) Close(ctx context.Context) error {
	var poolErr, storeErr error
	if t.ownsExec {
		poolErr = t.exec.Close(ctx)
	}
	if c, ok := t.store.(storeCloser); ok {
		storeErr = c.Close(ctx)
	}
	return errors.Join(poolErr, storeErr)
}
