// Package providertest is a conformance suite every provider.Provider must pass.
package providertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pr "github.com/unkn0wn-root/redisbasic/provider"
)

// Harness builds a fresh, empty provider for each subtest. Advance moves the
// provider's notion of time forward so TTLs can be tested without sleeping.
type Harness struct {
	New     func(t *testing.T) pr.Provider
	Advance func(d time.Duration)
}

func Run(t *testing.T, h Harness) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(t *testing.T, p pr.Provider, h Harness)
	}{
		{"GetMiss", testGetMiss},
		{"SetGet", testSetGet},
		{"SetEmptyValue", testSetEmptyValue},
		{"SetOverwrite", testSetOverwrite},
		{"SetTTLExpires", testSetTTLExpires},
		{"Incr", testIncr},
		{"IncrNotInteger", testIncrNotInteger},
		{"Lists", testLists},
		{"ListWrongType", testListWrongType},
		{"FlushDB", testFlushDB},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := h.New(t)
			t.Cleanup(func() { _ = p.Close(context.Background()) })
			tc.fn(t, p, h)
		})
	}
}

func testGetMiss(t *testing.T, p pr.Provider, _ Harness) {
	v, ok, err := p.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, v)
}

func testSetGet(t *testing.T, p pr.Provider, _ Harness) {
	ctx := context.Background()
	blob := []byte{0x00, 0xff, 0x10, 'a'}
	require.NoError(t, p.Set(ctx, "blob", blob, 0))

	got, ok, err := p.Get(ctx, "blob")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, blob, got)
}

func testSetEmptyValue(t *testing.T, p pr.Provider, _ Harness) {
	ctx := context.Background()
	require.NoError(t, p.Set(ctx, "empty", []byte{}, 0))

	got, ok, err := p.Get(ctx, "empty")
	require.NoError(t, err)
	require.True(t, ok, "empty value must be distinguishable from a miss")
	require.Empty(t, got)
}

func testSetOverwrite(t *testing.T, p pr.Provider, h Harness) {
	ctx := context.Background()
	require.NoError(t, p.Set(ctx, "k", []byte("old"), time.Second))
	require.NoError(t, p.Set(ctx, "k", []byte("new"), 0))
	h.Advance(2 * time.Second)

	got, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok, "SET without ttl must clear the previous expiry")
	require.Equal(t, "new", string(got))
}

func testSetTTLExpires(t *testing.T, p pr.Provider, h Harness) {
	ctx := context.Background()
	require.NoError(t, p.Set(ctx, "page", []byte("<html/>"), 10*time.Second))

	h.Advance(5 * time.Second)
	_, ok, err := p.Get(ctx, "page")
	require.NoError(t, err)
	require.True(t, ok)

	h.Advance(6 * time.Second)
	_, ok, err = p.Get(ctx, "page")
	require.NoError(t, err)
	require.False(t, ok)
}

func testIncr(t *testing.T, p pr.Provider, _ Harness) {
	ctx := context.Background()
	for want := int64(1); want <= 5; want++ {
		n, err := p.Incr(ctx, "counter")
		require.NoError(t, err)
		require.Equal(t, want, n)
	}
	raw, ok, err := p.Get(ctx, "counter")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "5", string(raw))

	require.NoError(t, p.Set(ctx, "preset", []byte("41"), 0))
	n, err := p.Incr(ctx, "preset")
	require.NoError(t, err)
	require.Equal(t, int64(42), n)
}

func testIncrNotInteger(t *testing.T, p pr.Provider, _ Harness) {
	ctx := context.Background()
	require.NoError(t, p.Set(ctx, "word", []byte("hello"), 0))
	_, err := p.Incr(ctx, "word")
	require.Error(t, err)
}

func testLists(t *testing.T, p pr.Provider, _ Harness) {
	ctx := context.Background()

	n, err := p.LLen(ctx, "l")
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = p.RPush(ctx, "l", []byte("a"))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	n, err = p.RPush(ctx, "l", []byte("b"), []byte("c"))
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	n, err = p.LLen(ctx, "l")
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	all, err := p.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, all)

	mid, err := p.LRange(ctx, "l", 1, 1)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("b")}, mid)

	tail, err := p.LRange(ctx, "l", -2, -1)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("b"), []byte("c")}, tail)

	empty, err := p.LRange(ctx, "l", 10, 20)
	require.NoError(t, err)
	require.Empty(t, empty)

	missing, err := p.LRange(ctx, "none", 0, -1)
	require.NoError(t, err)
	require.Empty(t, missing)
}

func testListWrongType(t *testing.T, p pr.Provider, _ Harness) {
	ctx := context.Background()
	require.NoError(t, p.Set(ctx, "str", []byte("x"), 0))
	_, err := p.RPush(ctx, "str", []byte("y"))
	require.Error(t, err)

	_, err = p.RPush(ctx, "list", []byte("y"))
	require.NoError(t, err)
	_, _, err = p.Get(ctx, "list")
	require.Error(t, err)
}

func testFlushDB(t *testing.T, p pr.Provider, _ Harness) {
	ctx := context.Background()
	require.NoError(t, p.Set(ctx, "a", []byte("1"), 0))
	_, err := p.Incr(ctx, "b")
	require.NoError(t, err)
	_, err = p.RPush(ctx, "c", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, p.FlushDB(ctx))

	_, ok, err := p.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = p.Get(ctx, "b")
	require.NoError(t, err)
	require.False(t, ok)
	n, err := p.LLen(ctx, "c")
	require.NoError(t, err)
	require.Zero(t, n)
}
