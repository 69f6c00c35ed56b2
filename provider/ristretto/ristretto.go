package ristretto

import (
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/redisbasic/internal/local"
	pr "github.com/unkn0wn-root/redisbasic/provider"
)

// Provider keeps the whole keyspace in a Ristretto cache. Useful for tests and
// single-process deployments without a Redis server.
//
// Ristretto is a cache, not a database. A write its admission policy refuses
// fails with local.ErrRejected, but entries accepted earlier can still be
// evicted later under MaxCost pressure, counters and history lists included,
// and read back as missing. Size MaxCost for the whole data set.
type Provider struct {
	*local.Store
	c *rc.Cache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // bytes; cost of an entry is its encoded length
	BufferItems int64
	Metrics     bool
	Clock       local.Clock // nil => time.Now
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		Metrics:            cfg.Metrics,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{Store: local.New(bytesMap{c: c}, cfg.Clock), c: c}, nil
}

// Metrics exposes Ristretto counters when Config.Metrics is set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }

type bytesMap struct {
	c *rc.Cache
}

func (m bytesMap) Get(key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		m.c.Del(key)
		return nil, false
	}
	return b, true
}

// Set waits for the write buffer, then reads the key back: admission and
// cost checks run asynchronously and SetWithTTL does not report them.
func (m bytesMap) Set(key string, value []byte, ttl time.Duration) error {
	if !m.c.SetWithTTL(key, value, int64(len(value)), ttl) {
		return local.ErrRejected // set buffer full
	}
	m.c.Wait()
	if _, ok := m.c.Get(key); !ok {
		return local.ErrRejected
	}
	return nil
}

func (m bytesMap) Del(key string) { m.c.Del(key) }

func (m bytesMap) Clear() error {
	m.c.Clear()
	return nil
}

func (m bytesMap) Close() error {
	m.c.Close()
	return nil
}
