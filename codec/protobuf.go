package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Protobuf is the StoreAs codec for generated message types. Output is
// deterministic, so storing the same message twice writes the same bytes
// under the two keys.
type Protobuf[T proto.Message] struct {
	alloc func() T
}

// NewProtobuf takes the allocator GetAs uses for every hit, e.g.
// func() *pb.Page { return &pb.Page{} }.
func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{alloc: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.alloc()
	if err := proto.Unmarshal(b, m); err != nil {
		return m, fmt.Errorf("codec: protobuf: %w", err)
	}
	return m, nil
}
