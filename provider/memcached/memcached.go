// Package memcached adapts github.com/bradfitz/gomemcache to provider.Provider.
//
// Keys handed to this provider must already satisfy memcached's rules
// (<= 250 bytes, no whitespace or control bytes); ProviderStore guarantees that.
package memcached

import (
	"context"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

var ErrNoServers = errors.New("memcached provider: no servers")

// relativeTTLLimit is the largest expiration memcached treats as relative seconds;
// anything larger is read as an absolute unix timestamp.
const relativeTTLLimit = 30 * 24 * time.Hour

type Memcached struct {
	mc  *memcache.Client
	now func() time.Time
}

var (
	_ pr.Provider = (*Memcached)(nil)
	_ pr.Adder    = (*Memcached)(nil)
)

type Config struct {
	Servers      []string      // host:port; ignored when Client is set
	Timeout      time.Duration // socket read/write timeout; 0 => gomemcache default
	MaxIdleConns int           // 0 => gomemcache default

	// Client lets callers share a preconfigured client.
	Client *memcache.Client
}

func New(cfg Config) (*Memcached, error) {
	mc := cfg.Client
	if mc == nil {
		if len(cfg.Servers) == 0 {
			return nil, ErrNoServers
		}
		mc = memcache.New(cfg.Servers...)
		if cfg.Timeout > 0 {
			mc.Timeout = cfg.Timeout
		}
		if cfg.MaxIdleConns > 0 {
			mc.MaxIdleConns = cfg.MaxIdleConns
		}
	}
	return &Memcached{mc: mc, now: time.Now}, nil
}

// gomemcache has no context support; ctx is accepted for interface symmetry.
func (p *Memcached) Get(_ context.Context, key string) ([]byte, bool, error) {
	it, err := p.mc.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return it.Value, true, nil
}

func (p *Memcached) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	err := p.mc.Set(&memcache.Item{Key: key, Value: value, Expiration: p.expiration(ttl)})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memcached) Add(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	err := p.mc.Add(&memcache.Item{Key: key, Value: value, Expiration: p.expiration(ttl)})
	if errors.Is(err, memcache.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memcached) Del(_ context.Context, key string) error {
	if err := p.mc.Delete(key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}

// Close is a no-op: gomemcache releases idle connections on its own.
func (p *Memcached) Close(context.Context) error { return nil }

func (p *Memcached) expiration(ttl time.Duration) int32 {
	return expirationAt(p.now(), ttl)
}

func expirationAt(now time.Time, ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl <= relativeTTLLimit {
		secs := int32(ttl / time.Second)
		if secs == 0 {
			secs = 1 // sub-second TTLs would otherwise mean "never expire"
		}
		return secs
	}
	return int32(now.Add(ttl).Unix())
}
