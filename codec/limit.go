package codec

import (
	"errors"
	"fmt"
)

var ErrTooLarge = errors.New("codec: payload too large")

// LimitCodec bounds payload sizes around another codec. A limit <= 0 disables
// that direction's check.
//
// MaxDecode guards reads: entries in a shared network cache are untrusted
// input, and a rejected payload makes ProviderStore drop the entry as a miss.
// MaxEncode guards writes against values the store would refuse anyway
// (memcached's default item limit is 1MB); the write fails and is reported
// through the template's hooks.
type LimitCodec[V any] struct {
	Inner     Codec[V]
	MaxDecode int
	MaxEncode int
}

func (c LimitCodec[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.MaxEncode > 0 && len(b) > c.MaxEncode {
		return nil, fmt.Errorf("%w: encoded %d > %d", ErrTooLarge, len(b), c.MaxEncode)
	}
	return b, nil
}

func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
