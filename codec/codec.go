// Package codec holds the serializers a ProviderStore uses to turn cached
// values into bytes. Serialization belongs to the store adapter, never to the
// entry itself, so any Codec can be paired with any provider.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
