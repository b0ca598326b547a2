// Package asynchook moves Hooks calls off the hot path onto a small queue.
// Events are dropped, never blocked on, when the queue is full.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{ServedEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	tpl, _ := cacheaside.New(cacheaside.Options[User]{
//	    Store: store,
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/cacheaside"
)

type Hooks struct {
	inner   cacheaside.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ cacheaside.Hooks = (*Hooks)(nil)

func New(inner cacheaside.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close flushes queued events. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped counts events lost to a full queue or a closed hook.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Served(k string, o cacheaside.Outcome) { h.try(func() { h.inner.Served(k, o) }) }
func (h *Hooks) StoreReadFailed(k string, err error) {
	h.try(func() { h.inner.StoreReadFailed(k, err) })
}
func (h *Hooks) StaleServed(k string, age time.Duration, err error) {
	h.try(func() { h.inner.StaleServed(k, age, err) })
}
func (h *Hooks) WriteDropped(k string, u bool, err error) {
	h.try(func() { h.inner.WriteDropped(k, u, err) })
}
func (h *Hooks) WriteFailed(k string, u bool, err error) {
	h.try(func() { h.inner.WriteFailed(k, u, err) })
}
