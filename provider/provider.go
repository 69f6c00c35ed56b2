// Package provider defines the key-value store contract used by redisbasic.
//
// The command subset mirrors Redis: plain strings with optional expiry,
// integer counters and append-only lists. Implementations MUST be
// byte-for-byte transparent: Get returns exactly the bytes previously passed
// to Set, and LRange returns exactly the bytes passed to RPush.
//
// Keys written by redisbasic:
//
//	<uuid>            - values stored by Cache.Store
//	<op>              - call counter of a recorded operation
//	<op>:inputs       - recorded inputs (list)
//	<op>:outputs      - recorded outputs (list)
//	<url>             - cached page body (expiring)
//	count:<url>       - page access counter
package provider

import (
	"context"
	"time"
)

// Provider is a minimal Redis-like store.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss or expiry.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value. ttl > 0 sets an expiry (SETEX); ttl <= 0 means no expiry
	// and clears any previous one (SET).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Incr atomically increments the integer at key and returns the new value.
	// A missing key counts as 0.
	Incr(ctx context.Context, key string) (int64, error)

	// RPush appends values to the list at key and returns the new length.
	RPush(ctx context.Context, key string, values ...[]byte) (int64, error)

	// LRange returns list elements between start and stop (inclusive).
	// Negative indexes count from the tail, -1 being the last element.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)

	// LLen returns the list length; 0 for a missing key.
	LLen(ctx context.Context, key string) (int64, error)

	// FlushDB removes every key of the selected database.
	FlushDB(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}
