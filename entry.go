package cacheaside

import "time"

// Entry is a cached value plus the instant it was produced. It is immutable:
// fields are only set by NewEntry.
type Entry[V any] struct {
	value     V
	createdAt time.Time
}

// NewEntry strips the monotonic clock reading from createdAt so entries compare
// the same before and after a round trip through a store.
func NewEntry[V any](value V, createdAt time.Time) Entry[V] {
	return Entry[V]{value: value, createdAt: createdAt.Round(0)}
}

func (e Entry[V]) Value() V             { return e.value }
func (e Entry[V]) CreatedAt() time.Time { return e.createdAt }

// Age is how long ago the entry was created, as seen at now.
func (e Entry[V]) Age(now time.Time) time.Duration { return now.Sub(e.createdAt) }

// Expired reports now > createdAt+window. The boundary instant is still fresh.
func (e Entry[V]) Expired(now time.Time, window time.Duration) bool {
	return now.After(e.createdAt.Add(window))
}

// EqualEntries compares value and creation instant, ignoring time zone.
func EqualEntries[V comparable](a, b Entry[V]) bool {
	return a.value == b.value && a.createdAt.Equal(b.createdAt)
}
