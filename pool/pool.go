// Package pool is a small elastic worker pool with a bounded queue that drops
// work instead of blocking the submitter.
//
// Admission order for Submit:
//
//  1. fewer than MinWorkers running: start a worker with the task
//  2. queue has room: enqueue
//  3. fewer than MaxWorkers running: start a worker with the task
//  4. otherwise: ErrSaturated (the task is dropped)
//
// Every worker, including the first MinWorkers, exits after IdleTimeout without
// work, so an unused pool shrinks to zero goroutines.
package pool

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrSaturated = errors.New("pool: saturated")
	ErrClosed    = errors.New("pool: closed")
)

const (
	DefaultMinWorkers  = 5
	DefaultMaxWorkers  = 10
	DefaultIdleTimeout = 60 * time.Second
	DefaultQueueSize   = 20
)

// Config sizes the pool. Zero fields take the defaults above.
type Config struct {
	MinWorkers  int
	MaxWorkers  int
	IdleTimeout time.Duration
	QueueSize   int
}

// DefaultConfig returns 5/10 workers, 60s idle timeout and a queue of 20.
func DefaultConfig() Config {
	return Config{
		MinWorkers:  DefaultMinWorkers,
		MaxWorkers:  DefaultMaxWorkers,
		IdleTimeout: DefaultIdleTimeout,
		QueueSize:   DefaultQueueSize,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinWorkers <= 0 {
		c.MinWorkers = d.MinWorkers
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = d.MaxWorkers
	}
	if c.MaxWorkers < c.MinWorkers {
		c.MaxWorkers = c.MinWorkers
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	return c
}

type Option func(*Pool)

// WithPanicHandler is called with the recovered value when a task panics.
// The worker survives the panic.
func WithPanicHandler(fn func(recovered any)) Option {
	return func(p *Pool) { p.onPanic = fn }
}

type Pool struct {
	cfg     Config
	q       chan func()
	onPanic func(any)

	mu      sync.Mutex
	workers int
	closed  bool
	wg      sync.WaitGroup
	done    chan struct{}
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Workers int
	Queued  int
}

func New(cfg Config, opts ...Option) *Pool {
	cfg = cfg.withDefaults()
	p := &Pool{
		cfg:  cfg,
		q:    make(chan func(), cfg.QueueSize),
		done: make(chan struct{}),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pool) Config() Config { return p.cfg }

// Submit never blocks. It returns ErrSaturated when the queue is full and the
// pool is at MaxWorkers, and ErrClosed after Close.
func (p *Pool) Submit(task func()) error {
	if task == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.workers < p.cfg.MinWorkers {
		p.spawnLocked(task)
		return nil
	}
	select {
	case p.q <- task:
		return nil
	default:
	}
	if p.workers < p.cfg.MaxWorkers {
		p.spawnLocked(task)
		return nil
	}
	return ErrSaturated
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Workers: p.workers, Queued: len(p.q)}
}

// Close stops admission and waits for queued and running tasks to finish, or
// for ctx to end. Safe to call more than once.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.q)
		// queued work needs at least one worker to drain it
		if p.workers == 0 && len(p.q) > 0 {
			p.spawnLocked(nil)
		}
		go func() {
			p.wg.Wait()
			close(p.done)
		}()
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) spawnLocked(first func()) {
	p.workers++
	p.wg.Add(1)
	go p.work(first)
}

func (p *Pool) work(first func()) {
	defer p.wg.Done()
	if first != nil {
		p.run(first)
	}

	idle := time.NewTimer(p.cfg.IdleTimeout)
	defer idle.Stop()
	for {
		select {
		case task, ok := <-p.q:
			if !ok {
				p.exit()
				return
			}
			p.run(task)
			idle.Reset(p.cfg.IdleTimeout)
		case <-idle.C:
			p.mu.Lock()
			// a task enqueued under the lock before we got here still needs a worker
			if len(p.q) > 0 {
				p.mu.Unlock()
				idle.Reset(p.cfg.IdleTimeout)
				continue
			}
			p.workers--
			p.mu.Unlock()
			return
		}
	}
}

func (p *Pool) exit() {
	p.mu.Lock()
	p.workers--
	p.mu.Unlock()
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil && p.onPanic != nil {
			p.onPanic(r)
		}
	}()
	task()
}
