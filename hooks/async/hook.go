// Package asynchook moves hook calls off the request path.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    PageHitEvery: 100, // sample hits; misses and errors are always logged
//	})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	fetcher, _ := pagecache.New(pagecache.Options{
//	    Provider: provider,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/redisbasic"
)

// Hooks forwards every event to inner on a bounded queue. When the queue is
// full the event is dropped and counted.
type Hooks struct {
	inner   redisbasic.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed and sends on q
	closed  bool
	dropped atomic.Uint64
}

var _ redisbasic.Hooks = (*Hooks)(nil)

func New(inner redisbasic.Hooks, workers, qlen int) *Hooks {
	if inner == nil {
		inner = redisbasic.NopHooks{}
	}
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events sent after Close are
// dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) BookkeepingError(op, stage string, err error) {
	h.try(func() { h.inner.BookkeepingError(op, stage, err) })
}
func (h *Hooks) DecodeFailed(key string, err error) { h.try(func() { h.inner.DecodeFailed(key, err) }) }
func (h *Hooks) PageHit(url string, n int64)        { h.try(func() { h.inner.PageHit(url, n) }) }
func (h *Hooks) PageMiss(url string, status int, n int64) {
	h.try(func() { h.inner.PageMiss(url, status, n) })
}
func (h *Hooks) PageFetchError(url string, err error) {
	h.try(func() { h.inner.PageFetchError(url, err) })
}
