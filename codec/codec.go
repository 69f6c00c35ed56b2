// Package codec converts typed values to and from the raw bytes kept in the
// store. Decode is what Cache.GetAs applies to a hit; Encode is what
// StoreAs applies before storing.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
