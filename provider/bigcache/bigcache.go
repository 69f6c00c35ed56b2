package bigcache

import (
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/redisbasic/internal/local"
	pr "github.com/unkn0wn-root/redisbasic/provider"
)

// Provider keeps the keyspace in BigCache. BigCache has a single global
// LifeWindow; per-key expiry (SETEX) is tracked in the entry header by
// internal/local, so LifeWindow only bounds how long any entry may live.
//
// BigCache appends every write to a per-shard ring buffer and only reclaims
// overwritten copies once they age past LifeWindow. History lists are
// rewritten on each RPUSH, so memory grows with the number of recorded calls.
// Prefer Redis or ristretto for long-running, write-heavy use.
type Provider struct {
	*local.Store
	c *bc.BigCache
}

var _ pr.Provider = (*Provider)(nil)

// defaultLifeWindow keeps counters and history lists for the process lifetime.
const defaultLifeWindow = 365 * 24 * time.Hour

type Config struct {
	LifeWindow         time.Duration // 0 => one year
	CleanWindow        time.Duration // 0 => no background cleanup
	Shards             int           // power of two; 0 => bigcache default
	MaxEntriesInWindow int // initial sizing only
	MaxEntrySize       int // bytes; initial sizing only, larger entries still fit
	// HardMaxCacheSizeMB caps memory; 0 = unlimited. A cap turns the keyspace
	// into an evicting cache: when a shard is full BigCache drops its oldest
	// entries, live values and counters included, and any entry larger than
	// HardMaxCacheSizeMB/Shards is refused.
	HardMaxCacheSizeMB int
	Clock              local.Clock
}

func New(cfg Config) (*Provider, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = defaultLifeWindow
	}
	conf := bc.DefaultConfig(life)
	conf.CleanWindow = cfg.CleanWindow
	conf.Verbose = false
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Provider{Store: local.New(bytesMap{c: c}, cfg.Clock), c: c}, nil
}

// Len reports the number of raw entries, expired ones not yet read included.
func (p *Provider) Len() int { return p.c.Len() }

type bytesMap struct {
	c *bc.BigCache
}

func (m bytesMap) Get(key string) ([]byte, bool) {
	b, err := m.c.Get(key)
	if err != nil { // ErrEntryNotFound
		return nil, false
	}
	return b, true
}

func (m bytesMap) Set(key string, value []byte, _ time.Duration) error {
	return m.c.Set(key, value)
}

func (m bytesMap) Del(key string) {
	_ = m.c.Delete(key) // ErrEntryNotFound is fine
}

func (m bytesMap) Clear() error { return m.c.Reset() }

func (m bytesMap) Close() error { return m.c.Close() }
