package redisbasic

import (
	"context"
	"fmt"

	c "github.com/unkn0wn-root/redisbasic/codec"
	pr "github.com/unkn0wn-root/redisbasic/provider"
)

// Cache stores values under random keys and reads them back.
// A miss is reported as ok=false with a nil error, never as an error.
type Cache interface {
	// Store saves v (string, []byte, integer or float) under a fresh UUID key
	// and returns the key. Every call is counted and recorded under StoreOp.
	Store(ctx context.Context, v any) (key string, err error)

	Get(ctx context.Context, key string) (raw []byte, ok bool, err error)
	GetStr(ctx context.Context, key string) (string, bool, error)
	GetInt(ctx context.Context, key string) (int64, bool, error)
	GetFloat(ctx context.Context, key string) (float64, bool, error)

	// History and Replay read the recorded calls of an operation (e.g. StoreOp).
	History(ctx context.Context, name string) (History, error)
	Replay(ctx context.Context, name string) (string, error)

	Close(ctx context.Context) error
}

// Options configure a Cache. Only Provider is required.
type Options struct {
	Provider pr.Provider

	Logger  Logger        // if nil, NopLogger is used
	Hooks   Hooks         // if nil, NopHooks is used
	KeyFunc func() string // nil => uuid.NewString
	// KeepData skips the FLUSHDB that New otherwise issues, for callers that
	// share the database with other data.
	KeepData bool
}

// New builds a Cache over opts.Provider. Unless KeepData is set, the selected
// database is flushed first.
func New(ctx context.Context, opts Options) (Cache, error) {
	return newCache(ctx, opts)
}

// GetAs reads key and converts it with decode. A nil decode is allowed when V
// is []byte. Decode failures are returned as *DecodeError.
func GetAs[V any](ctx context.Context, cc Cache, key string, decode func([]byte) (V, error)) (V, bool, error) {
	var zero V
	raw, ok, err := cc.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	if decode == nil {
		if v, ok := any(raw).(V); ok {
			return v, true, nil
		}
		return zero, false, &DecodeError{Key: key, Err: fmt.Errorf("no decode function for %T", zero)}
	}
	v, err := decode(raw)
	if err != nil {
		if r, ok := cc.(decodeReporter); ok {
			r.decodeFailed(key, err)
		}
		return zero, false, &DecodeError{Key: key, Err: err}
	}
	return v, true, nil
}

// StoreAs encodes v with enc and stores the bytes through Cache.Store, so the
// call is recorded like any other.
func StoreAs[V any](ctx context.Context, cc Cache, v V, enc c.Codec[V]) (string, error) {
	b, err := enc.Encode(v)
	if err != nil {
		return "", fmt.Errorf("redisbasic: encode %T: %w", v, err)
	}
	return cc.Store(ctx, b)
}

type decodeReporter interface {
	decodeFailed(key string, err error)
}
