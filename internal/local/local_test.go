package local

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mapBytes struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMapBytes() *mapBytes { return &mapBytes{m: make(map[string][]byte)} }

func (b *mapBytes) Get(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.m[key]
	return v, ok
}

func (b *mapBytes) Set(key string, value []byte, _ time.Duration) error {
	b.mu.Lock()
	b.m[key] = value
	b.mu.Unlock()
	return nil
}

func (b *mapBytes) Del(key string) {
	b.mu.Lock()
	delete(b.m, key)
	b.mu.Unlock()
}

func (b *mapBytes) Clear() error {
	b.mu.Lock()
	b.m = make(map[string][]byte)
	b.mu.Unlock()
	return nil
}

func (b *mapBytes) Close() error { return nil }

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore() (*Store, *mapBytes, *fakeClock) {
	b := newMapBytes()
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	return New(b, clk), b, clk
}

func TestGetSetAndMiss(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore()

	_, ok, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)

	// empty value is a hit, not a miss
	require.NoError(t, s.Set(ctx, "empty", nil, 0))
	got, ok, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, got)
}

func TestSetWithTTLExpires(t *testing.T) {
	ctx := context.Background()
	s, b, clk := newTestStore()

	require.NoError(t, s.Set(ctx, "page", []byte("<html>"), 10*time.Second))

	clk.Advance(9 * time.Second)
	_, ok, err := s.Get(ctx, "page")
	require.NoError(t, err)
	require.True(t, ok)

	clk.Advance(time.Second)
	_, ok, err = s.Get(ctx, "page")
	require.NoError(t, err)
	require.False(t, ok)

	_, present := b.Get("page")
	require.False(t, present, "expired entry should be dropped from the backing map")
}

func TestSetWithoutTTLClearsExpiry(t *testing.T) {
	ctx := context.Background()
	s, _, clk := newTestStore()

	require.NoError(t, s.Set(ctx, "k", []byte("a"), time.Second))
	require.NoError(t, s.Set(ctx, "k", []byte("b"), 0))
	clk.Advance(time.Hour)

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("b"), got)
}

func TestIncr(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore()

	for want := int64(1); want <= 3; want++ {
		n, err := s.Incr(ctx, "count:x")
		require.NoError(t, err)
		require.Equal(t, want, n)
	}
	got, ok, err := s.Get(ctx, "count:x")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "3", string(got))

	require.NoError(t, s.Set(ctx, "text", []byte("abc"), 0))
	_, err = s.Incr(ctx, "text")
	require.ErrorIs(t, err, ErrNotInteger)

	require.NoError(t, s.Set(ctx, "max", []byte("9223372036854775807"), 0))
	_, err = s.Incr(ctx, "max")
	require.ErrorIs(t, err, ErrOverflow)
}

func TestIncrKeepsExpiry(t *testing.T) {
	ctx := context.Background()
	s, _, clk := newTestStore()

	require.NoError(t, s.Set(ctx, "n", []byte("5"), 10*time.Second))
	n, err := s.Incr(ctx, "n")
	require.NoError(t, err)
	require.Equal(t, int64(6), n)

	clk.Advance(11 * time.Second)
	_, ok, err := s.Get(ctx, "n")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListCommands(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore()

	n, err := s.LLen(ctx, "l")
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = s.RPush(ctx, "l", []byte("a"), []byte("b"))
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	n, err = s.RPush(ctx, "l", []byte("c"))
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	all, err := s.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, all)

	tail, err := s.LRange(ctx, "l", -2, 100)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("b"), []byte("c")}, tail)

	none, err := s.LRange(ctx, "l", 5, 10)
	require.NoError(t, err)
	require.Empty(t, none)

	missing, err := s.LRange(ctx, "nothing", 0, -1)
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestWrongType(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore()

	_, err := s.RPush(ctx, "l", []byte("a"))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "s", []byte("x"), 0))

	_, _, err = s.Get(ctx, "l")
	require.ErrorIs(t, err, ErrWrongType)
	_, err = s.Incr(ctx, "l")
	require.ErrorIs(t, err, ErrWrongType)
	_, err = s.RPush(ctx, "s", []byte("b"))
	require.ErrorIs(t, err, ErrWrongType)
	_, err = s.LLen(ctx, "s")
	require.ErrorIs(t, err, ErrWrongType)
}

func TestCorruptEntryIsSelfHealed(t *testing.T) {
	ctx := context.Background()
	s, b, _ := newTestStore()

	require.NoError(t, b.Set("bad", []byte("not-wire-format"), 0))
	_, ok, err := s.Get(ctx, "bad")
	require.NoError(t, err)
	require.False(t, ok)

	_, present := b.Get("bad")
	require.False(t, present)
}

func TestFlushDB(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore()

	require.NoError(t, s.Set(ctx, "a", []byte("1"), 0))
	_, err := s.RPush(ctx, "b", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, s.FlushDB(ctx))

	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)
	n, err := s.LLen(ctx, "b")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestReturnedBytesAreCopies(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore()

	require.NoError(t, s.Set(ctx, "k", []byte("abc"), 0))
	got, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'Z'

	again, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(again))
}
