// Package redisbasic stores values in a Redis-like keyspace under random
// keys, reads them back with optional decoding, and records every Store call.
//
// Components:
//   - Provider: the store (Redis via go-redis, or an in-process Ristretto /
//     BigCache keyspace for tests and single-process use).
//   - Cache: Store / Get / GetStr / GetInt / GetFloat / Replay.
//   - Ledger: call counting and input/output history decorators
//     (CountCalls, CallHistory) for any Op[In, Out].
//   - pagecache: an HTTP page cache with a fixed TTL and per-URL access counter.
//
// Keys:
//
//	<uuid>                - stored values
//	Cache.store           - number of Store calls
//	Cache.store:inputs    - recorded Store arguments
//	Cache.store:outputs   - recorded Store results
//
// Usage:
//
//	p, _ := redisprovider.NewFromURL(ctx, "redis://localhost:6379/0")
//	c, _ := redisbasic.New(ctx, redisbasic.Options{Provider: p})
//	defer c.Close(ctx)
//
//	key, _ := c.Store(ctx, 123)
//	n, ok, _ := c.GetInt(ctx, key) // 123, true
//	trace, _ := c.Replay(ctx, redisbasic.StoreOp)
package redisbasic
