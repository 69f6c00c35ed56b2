// Package config reads redisbasic settings from the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/redisbasic"
	zaplog "github.com/unkn0wn-root/redisbasic/log/zap"
	"github.com/unkn0wn-root/redisbasic/pagecache"
	pr "github.com/unkn0wn-root/redisbasic/provider"
	"github.com/unkn0wn-root/redisbasic/provider/bigcache"
	rp "github.com/unkn0wn-root/redisbasic/provider/redis"
	"github.com/unkn0wn-root/redisbasic/provider/ristretto"
)

const (
	ProviderRedis     = "redis"
	ProviderRistretto = "ristretto"
	ProviderBigcache  = "bigcache"
)

type Config struct {
	Env      string        `mapstructure:"REDISBASIC_ENV"`
	Provider string        `mapstructure:"REDISBASIC_PROVIDER"`
	RedisURL string        `mapstructure:"REDISBASIC_REDIS_URL"`
	PageTTL  time.Duration `mapstructure:"REDISBASIC_PAGE_TTL"`
	KeepData bool          `mapstructure:"REDISBASIC_KEEP_DATA"`
	LogLevel string        `mapstructure:"REDISBASIC_LOG_LEVEL"`
}

// Load reads the environment, after loading any of files that exist.
// Variables already set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	for _, path := range files {
		if _, err := os.Stat(path); err == nil {
			if err := gotenv.Load(path); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("REDISBASIC_ENV", "dev")
	v.SetDefault("REDISBASIC_PROVIDER", ProviderRedis)
	v.SetDefault("REDISBASIC_REDIS_URL", "redis://127.0.0.1:6379/0")
	v.SetDefault("REDISBASIC_PAGE_TTL", pagecache.DefaultTTL.String())
	v.SetDefault("REDISBASIC_KEEP_DATA", false)
	v.SetDefault("REDISBASIC_LOG_LEVEL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDISBASIC_REDIS_URL is required")
		}
		if _, err := goredis.ParseURL(c.RedisURL); err != nil {
			return fmt.Errorf("REDISBASIC_REDIS_URL: %w", err)
		}
	case ProviderRistretto, ProviderBigcache:
	default:
		return fmt.Errorf("invalid REDISBASIC_PROVIDER %q (must be redis, ristretto or bigcache)", c.Provider)
	}
	if c.PageTTL <= 0 {
		return fmt.Errorf("REDISBASIC_PAGE_TTL must be positive, got %s", c.PageTTL)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) IsProd() bool { return c.Env == "prod" }

// RedisOptions parses RedisURL; validate has already accepted it.
func (c *Config) RedisOptions() (*goredis.Options, error) {
	return goredis.ParseURL(c.RedisURL)
}

// NewProvider connects to Redis or builds the selected in-process provider.
func (c *Config) NewProvider(ctx context.Context) (pr.Provider, error) {
	switch c.Provider {
	case ProviderRistretto:
		return ristretto.New(ristretto.Config{NumCounters: 1e6, MaxCost: 64 << 20, BufferItems: 64})
	case ProviderBigcache:
		// no hard cap: a capped BigCache evicts live values and counters
		return bigcache.New(bigcache.Config{Shards: 64, MaxEntriesInWindow: 10_000, MaxEntrySize: 1024})
	default:
		opt, err := c.RedisOptions()
		if err != nil {
			return nil, err
		}
		return rp.Dial(ctx, opt)
	}
}

// ZapLogger builds a production JSON logger for prod and a console logger
// otherwise. LogLevel overrides the env default (info / debug).
func (c *Config) ZapLogger() (*zap.Logger, error) {
	var zc zap.Config
	if c.IsProd() {
		zc = zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if lvl, _ := c.level(); c.LogLevel != "" {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	return zc.Build()
}

func (c *Config) level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("REDISBASIC_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// CacheOptions prefills redisbasic.Options. log may be nil.
func (c *Config) CacheOptions(p pr.Provider, log *zap.Logger) redisbasic.Options {
	return redisbasic.Options{
		Provider: p,
		Logger:   logger(log),
		KeepData: c.KeepData,
	}
}

// PageOptions prefills pagecache.Options. log may be nil.
func (c *Config) PageOptions(p pr.Provider, log *zap.Logger) pagecache.Options {
	return pagecache.Options{
		Provider: p,
		TTL:      c.PageTTL,
		Logger:   logger(log),
	}
}

func logger(l *zap.Logger) redisbasic.Logger {
	if l == nil {
		return redisbasic.NopLogger{}
	}
	return zaplog.New(l)
}
