package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes proto messages. ctor must return a fresh, non-nil message
// (e.g. func() *mypb.User { return &mypb.User{} }).
type Protobuf[T proto.Message] struct {
	new func() T
	mo  proto.MarshalOptions
}

var _ Codec[proto.Message] = Protobuf[proto.Message]{}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

// Deterministic returns a copy that orders map fields, so equal messages
// always produce equal bytes.
func (c Protobuf[T]) Deterministic() Protobuf[T] {
	c.mo.Deterministic = true
	return c
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return c.mo.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
