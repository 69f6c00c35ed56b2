// Package local implements the provider command subset on top of a plain
// in-process byte map. Strings, counters and lists are framed with
// internal/wire so that expiry and WRONGTYPE checks follow Redis.
package local

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/unkn0wn-root/redisbasic/internal/wire"
)

var (
	ErrWrongType  = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	ErrNotInteger = errors.New("ERR value is not an integer or out of range")
	ErrOverflow   = errors.New("ERR increment or decrement would overflow")
	// ErrRejected is returned when the backing cache refuses a write. It says
	// nothing about entries evicted after they were accepted.
	ErrRejected = errors.New("local: write rejected by backing cache")
)

// Bytes is the byte map a local provider wraps.
// ttl is a hint for memory reclamation; expiry is enforced by Store.
type Bytes interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Del(key string)
	Clear() error
	Close() error
}

// Clock provides the current time. Tests inject a fake one to move past TTLs.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Store serializes read-modify-write commands (INCR, RPUSH) with a single
// mutex; the backing map only sees whole-entry gets and sets.
type Store struct {
	mu    sync.Mutex
	b     Bytes
	clock Clock
}

// New wraps b. A nil clock uses time.Now.
func New(b Bytes, clock Clock) *Store {
	if clock == nil {
		clock = realClock{}
	}
	return &Store{b: b, clock: clock}
}

type entry struct {
	kind     byte
	deadline int64
	raw      []byte
}

// load returns the live entry at key. Expired or corrupt entries are removed
// and reported as missing.
func (s *Store) load(key string) (entry, bool) {
	raw, ok := s.b.Get(key)
	if !ok {
		return entry{}, false
	}
	kind, deadline, err := wire.Peek(raw)
	if err != nil {
		s.b.Del(key) // self-heal corrupt
		return entry{}, false
	}
	if deadline != 0 && s.clock.Now().UnixNano() >= deadline {
		s.b.Del(key)
		return entry{}, false
	}
	return entry{kind: kind, deadline: deadline, raw: raw}, true
}

// remaining converts an absolute deadline back to a ttl hint; 0 means none.
func (s *Store) remaining(deadline int64) time.Duration {
	if deadline == 0 {
		return 0
	}
	d := time.Duration(deadline - s.clock.Now().UnixNano())
	if d <= 0 {
		return time.Nanosecond
	}
	return d
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.load(key)
	if !ok {
		return nil, false, nil
	}
	if e.kind != wire.KindString {
		return nil, false, ErrWrongType
	}
	_, payload, err := wire.DecodeString(e.raw)
	if err != nil {
		s.b.Del(key)
		return nil, false, nil
	}
	return clone(payload), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var deadline int64
	if ttl > 0 {
		deadline = s.clock.Now().Add(ttl).UnixNano()
	} else {
		ttl = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Set(key, wire.EncodeString(deadline, value), ttl)
}

// Incr keeps the existing expiry, as Redis does.
func (s *Store) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		n        int64
		deadline int64
	)
	if e, ok := s.load(key); ok {
		if e.kind != wire.KindString {
			return 0, ErrWrongType
		}
		_, payload, err := wire.DecodeString(e.raw)
		if err != nil {
			return 0, ErrNotInteger
		}
		n, err = strconv.ParseInt(string(payload), 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		deadline = e.deadline
	}
	if n == math.MaxInt64 {
		return 0, ErrOverflow
	}
	n++

	raw := wire.EncodeString(deadline, strconv.AppendInt(nil, n, 10))
	if err := s.b.Set(key, raw, s.remaining(deadline)); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) RPush(_ context.Context, key string, values ...[]byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, deadline, err := s.list(key)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return int64(len(items)), nil
	}
	items = append(items, values...)
	if err := s.b.Set(key, wire.EncodeList(deadline, items), s.remaining(deadline)); err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (s *Store) LRange(_ context.Context, key string, start, stop int64) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := s.list(key)
	if err != nil {
		return nil, err
	}
	n := int64(len(items))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return [][]byte{}, nil
	}

	out := make([][]byte, 0, stop-start+1)
	for _, it := range items[start : stop+1] {
		out = append(out, clone(it))
	}
	return out, nil
}

func (s *Store) LLen(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := s.list(key)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (s *Store) FlushDB(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Clear()
}

func (s *Store) Close(context.Context) error {
	return s.b.Close()
}

// list returns the items at key; a missing key is an empty list.
// caller must hold s.mu.
func (s *Store) list(key string) ([][]byte, int64, error) {
	e, ok := s.load(key)
	if !ok {
		return nil, 0, nil
	}
	if e.kind != wire.KindList {
		return nil, 0, ErrWrongType
	}
	deadline, items, err := wire.DecodeList(e.raw)
	if err != nil {
		s.b.Del(key)
		return nil, 0, nil
	}
	return items, deadline, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
