// Package breaker wraps a provider.Provider in a sony/gobreaker circuit breaker.
//
// When a remote store goes down every cache read would otherwise pay a full
// network timeout before the template fails open. With the breaker open, calls
// fail immediately with gobreaker.ErrOpenState and the template recomputes at
// in-process speed until the breaker half-opens again.
package breaker

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

type Config struct {
	Name string
	// MaxRequests allowed through while half-open. 0 => 1.
	MaxRequests uint32
	// Interval clears counts while closed. 0 => never.
	Interval time.Duration
	// Timeout is how long the breaker stays open. 0 => 60s.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker. 0 => 5.
	ConsecutiveFailures uint32
	// OnStateChange is forwarded to gobreaker.
	OnStateChange func(name string, from, to gobreaker.State)
}

type Provider struct {
	inner pr.Provider
	cb    *gobreaker.CircuitBreaker
}

var _ pr.Provider = (*Provider)(nil)

func New(inner pr.Provider, cfg Config) *Provider {
	trip := cfg.ConsecutiveFailures
	if trip == 0 {
		trip = 5
	}
	name := cfg.Name
	if name == "" {
		name = "cacheaside"
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= trip
		},
		OnStateChange: cfg.OnStateChange,
	})
	return &Provider{inner: inner, cb: cb}
}

// State reports the breaker state.
func (p *Provider) State() gobreaker.State { return p.cb.State() }

type hit struct {
	b  []byte
	ok bool
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := p.cb.Execute(func() (interface{}, error) {
		b, ok, err := p.inner.Get(ctx, key)
		return hit{b, ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	h := res.(hit)
	return h.b, h.ok, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	res, err := p.cb.Execute(func() (interface{}, error) {
		return p.inner.Set(ctx, key, value, ttl)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

// Add falls back to Set when the wrapped provider has no native Add.
func (p *Provider) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	res, err := p.cb.Execute(func() (interface{}, error) {
		if a, ok := p.inner.(pr.Adder); ok {
			return a.Add(ctx, key, value, ttl)
		}
		return p.inner.Set(ctx, key, value, ttl)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.inner.Del(ctx, key)
	})
	return err
}

// Close bypasses the breaker.
func (p *Provider) Close(ctx context.Context) error { return p.inner.Close(ctx) }
