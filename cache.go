package redisbasic

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	c "github.com/unkn0wn-root/redisbasic/codec"
	pr "github.com/unkn0wn-root/redisbasic/provider"
)

type cache struct {
	provider pr.Provider
	ledger   *Ledger
	log      Logger
	hooks    Hooks
	newKey   func() string
	store    Op[any, string]
}

var _ Cache = (*cache)(nil)

func newCache(ctx context.Context, opts Options) (*cache, error) {
	if opts.Provider == nil {
		return nil, ErrNilProvider
	}

	cc := &cache{provider: opts.Provider}

	// defaults
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.KeyFunc != nil {
		cc.newKey = opts.KeyFunc
	} else {
		cc.newKey = uuid.NewString
	}

	if !opts.KeepData {
		if err := cc.provider.FlushDB(ctx); err != nil {
			return nil, fmt.Errorf("redisbasic: flushdb: %w", err)
		}
		cc.log.Debug("flushed database", nil)
	}

	cc.ledger = NewLedger(cc.provider, cc.hooks, cc.log)
	cc.store = CountCalls(cc.ledger, StoreOp, CallHistory[any, string](cc.ledger, StoreOp, cc.set))
	return cc, nil
}

func (cc *cache) Store(ctx context.Context, v any) (string, error) {
	return cc.store(ctx, v)
}

// set is the unrecorded store operation.
func (cc *cache) set(ctx context.Context, v any) (string, error) {
	b, err := encodeValue(v)
	if err != nil {
		return "", err
	}
	key := cc.newKey()
	if err := cc.provider.Set(ctx, key, b, 0); err != nil {
		cc.log.Error("store failed", Fields{"key": key, "err": err})
		return "", fmt.Errorf("redisbasic: store: %w", err)
	}
	cc.log.Debug("stored value", Fields{"key": key, "size": len(b)})
	return key, nil
}

func (cc *cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := cc.provider.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("redisbasic: get %q: %w", key, err)
	}
	return raw, ok, nil
}

func (cc *cache) GetStr(ctx context.Context, key string) (string, bool, error) {
	return GetAs(ctx, cc, key, c.String{}.Decode)
}

func (cc *cache) GetInt(ctx context.Context, key string) (int64, bool, error) {
	return GetAs(ctx, cc, key, c.Int{}.Decode)
}

func (cc *cache) GetFloat(ctx context.Context, key string) (float64, bool, error) {
	return GetAs(ctx, cc, key, c.Float{}.Decode)
}

func (cc *cache) History(ctx context.Context, name string) (History, error) {
	return cc.ledger.History(ctx, name)
}

func (cc *cache) Replay(ctx context.Context, name string) (string, error) {
	return cc.ledger.Replay(ctx, name)
}

func (cc *cache) Close(ctx context.Context) error {
	return cc.provider.Close(ctx)
}

func (cc *cache) decodeFailed(key string, err error) {
	cc.hooks.DecodeFailed(key, err)
	cc.log.Debug("decode failed", Fields{"key": key, "err": err})
}
