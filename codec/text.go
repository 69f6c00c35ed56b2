package codec

import (
	"fmt"
	"strconv"
)

// String passes text through unchanged. GetStr reads every stored value with
// it, so numbers come back in their decimal form.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }

// Bytes stores a payload as is. It lets binary blobs go through StoreAs and
// GetAs alongside the typed codecs.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// Int reads and writes base-10 integers, the representation Redis uses for
// INCR counters and go-redis uses for integer arguments.
type Int struct{}

func (Int) Encode(n int64) ([]byte, error) { return strconv.AppendInt(nil, n, 10), nil }
func (Int) Decode(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("codec: not an integer: %w", err)
	}
	return n, nil
}

// Float writes the shortest decimal form that round-trips ('f', -1), which is
// also what go-redis sends for a float64 argument.
type Float struct{}

func (Float) Encode(f float64) ([]byte, error) { return strconv.AppendFloat(nil, f, 'f', -1, 64), nil }
func (Float) Decode(b []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, fmt.Errorf("codec: not a float: %w", err)
	}
	return f, nil
}
