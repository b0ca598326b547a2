package cacheaside

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/cacheaside/codec"
	"github.com/unkn0wn-root/cacheaside/internal/util"
	"github.com/unkn0wn-root/cacheaside/internal/wire"
	pr "github.com/unkn0wn-root/cacheaside/provider"
)

// ProviderStoreOptions configure a ProviderStore.
// Namespace, Provider and Codec are required.
type ProviderStoreOptions[V any] struct {
	Namespace string // logical namespace to avoid collisions. e.g. "user", "report"
	Provider  pr.Provider
	Codec     c.Codec[V]

	// TTL is the provider-side expiry. It should comfortably exceed the
	// template window, otherwise the store evicts entries before they can be
	// served stale. 0 => no expiry.
	TTL time.Duration

	Logger Logger // if nil, NopLogger is used
}

// ProviderStore is a Store over a byte Provider. Values are encoded with Codec
// and framed together with the entry's creation time.
type ProviderStore[V any] struct {
	ns       string
	provider pr.Provider
	codec    c.Codec[V]
	ttl      time.Duration
	log      Logger
}

var _ Store[struct{}] = (*ProviderStore[struct{}])(nil)

func NewProviderStore[V any](opts ProviderStoreOptions[V]) (*ProviderStore[V], error) {
	if opts.Provider == nil {
		return nil, ErrProviderRequired
	}
	if opts.Codec == nil {
		return nil, ErrCodecRequired
	}
	if opts.Namespace == "" {
		return nil, ErrNamespaceMissing
	}
	if !util.ValidPrefix(keyPrefix(opts.Namespace)) {
		return nil, ErrInvalidNamespace
	}
	return &ProviderStore[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		ttl:      opts.TTL,
		log:      coalesce[Logger](opts.Logger, NopLogger{}),
	}, nil
}

// Read self-heals: undecodable bytes are deleted and reported as a miss.
func (s *ProviderStore[V]) Read(ctx context.Context, key string) (Entry[V], bool, error) {
	k := s.storageKey(key)
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil || !ok {
		return Entry[V]{}, false, err
	}
	createdAt, payload, err := wire.DecodeEntry(raw)
	if err != nil {
		s.heal(ctx, k, "corrupt")
		return Entry[V]{}, false, nil
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		s.heal(ctx, k, "value_decode")
		return Entry[V]{}, false, nil
	}
	return NewEntry(v, createdAt), true, nil
}

// Write inserts through provider.Adder when available, so a concurrent insert
// that landed first is kept. Updates always overwrite.
func (s *ProviderStore[V]) Write(ctx context.Context, key string, e Entry[V], isUpdate bool) error {
	payload, err := s.codec.Encode(e.Value())
	if err != nil {
		return err
	}
	k := s.storageKey(key)
	b := wire.EncodeEntry(e.CreatedAt(), payload)

	if a, ok := s.provider.(pr.Adder); ok && !isUpdate {
		added, err := a.Add(ctx, k, b, s.ttl)
		if err != nil {
			return err
		}
		if !added {
			s.log.Debug("insert skipped, entry already present", Fields{"key": key})
		}
		return nil
	}

	ok, err := s.provider.Set(ctx, k, b, s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug("write rejected by provider (pressure)", Fields{"key": key, "update": isUpdate})
	}
	return nil
}

func (s *ProviderStore[V]) Delete(ctx context.Context, key string) error {
	return s.provider.Del(ctx, s.storageKey(key))
}

func (s *ProviderStore[V]) Close(ctx context.Context) error {
	return s.provider.Close(ctx)
}

func (s *ProviderStore[V]) storageKey(userKey string) string {
	// isolate by namespace
	return util.StorageKey(keyPrefix(s.ns), userKey)
}

func keyPrefix(ns string) string { return defaultNS + ":" + ns }

func (s *ProviderStore[V]) heal(ctx context.Context, storageKey, reason string) {
	if err := s.provider.Del(ctx, storageKey); err != nil {
		s.log.Warn("self-heal delete failed", Fields{"key": storageKey, "reason": reason, "err": err})
		return
	}
	s.log.Debug("self-healed unreadable entry", Fields{"key": storageKey, "reason": reason})
}
