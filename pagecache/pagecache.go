// Package pagecache fetches web pages through a short-lived store cache and
// counts how often each URL was requested.
//
//	f, _ := pagecache.New(pagecache.Options{Provider: p})
//	body, err := f.GetPage(ctx, "http://slowwly.robertomurray.co.uk")
//	n, _ := f.Count(ctx, "http://slowwly.robertomurray.co.uk")
//
// The body lives at <url> for TTL; the counter lives at count:<url> and never
// expires.
package pagecache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/unkn0wn-root/redisbasic"
	"github.com/unkn0wn-root/redisbasic/internal/util"
	pr "github.com/unkn0wn-root/redisbasic/provider"
)

// DefaultTTL is how long a fetched body is served from the store.
const DefaultTTL = 10 * time.Second

// DefaultMaxBody caps how much of a response is read and cached.
const DefaultMaxBody = 8 << 20

// FetchError reports an upstream request that produced no body. Nothing is
// cached or counted for it.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("pagecache: fetch %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

type Options struct {
	Provider pr.Provider
	Client   *http.Client // nil => client with a 30s timeout
	TTL      time.Duration
	MaxBody  int64 // bytes; 0 => DefaultMaxBody

	Logger redisbasic.Logger
	Hooks  redisbasic.Hooks
}

type Fetcher struct {
	p       pr.Provider
	client  *http.Client
	ttl     time.Duration
	maxBody int64
	log     redisbasic.Logger
	hooks   redisbasic.Hooks
}

func New(opts Options) (*Fetcher, error) {
	if opts.Provider == nil {
		return nil, redisbasic.ErrNilProvider
	}
	f := &Fetcher{
		p:       opts.Provider,
		client:  opts.Client,
		ttl:     opts.TTL,
		maxBody: opts.MaxBody,
		log:     opts.Logger,
		hooks:   opts.Hooks,
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: 30 * time.Second}
	}
	if f.ttl <= 0 {
		f.ttl = DefaultTTL
	}
	if f.maxBody <= 0 {
		f.maxBody = DefaultMaxBody
	}
	if f.log == nil {
		f.log = redisbasic.NopLogger{}
	}
	if f.hooks == nil {
		f.hooks = redisbasic.NopHooks{}
	}
	return f, nil
}

// GetPage returns the body of url, from the store while it is fresh and from
// the network otherwise. Every successful call increments count:<url>.
func (f *Fetcher) GetPage(ctx context.Context, url string) (string, error) {
	cached, ok, err := f.p.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("pagecache: get %s: %w", url, err)
	}
	if ok {
		n, err := f.bump(ctx, url)
		if err != nil {
			return "", err
		}
		f.hooks.PageHit(url, n)
		f.log.Debug("page served from store", redisbasic.Fields{"url": url, "count": n})
		return string(cached), nil
	}

	body, status, err := f.fetch(ctx, url)
	if err != nil {
		f.hooks.PageFetchError(url, err)
		f.log.Warn("page fetch failed", redisbasic.Fields{"url": url, "err": err})
		return "", &FetchError{URL: url, Err: err}
	}

	if err := f.p.Set(ctx, url, body, f.ttl); err != nil {
		return "", fmt.Errorf("pagecache: setex %s: %w", url, err)
	}
	n, err := f.bump(ctx, url)
	if err != nil {
		return "", err
	}
	f.hooks.PageMiss(url, status, n)
	f.log.Info("page fetched", redisbasic.Fields{"url": url, "status": status, "size": len(body), "count": n})
	return string(body), nil
}

// Count reads count:<url>; a URL never requested reports 0.
func (f *Fetcher) Count(ctx context.Context, url string) (int64, error) {
	raw, ok, err := f.p.Get(ctx, util.CountKey(url))
	if err != nil {
		return 0, fmt.Errorf("pagecache: get %s: %w", util.CountKey(url), err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, &redisbasic.DecodeError{Key: util.CountKey(url), Err: err}
	}
	return n, nil
}

func (f *Fetcher) Close(ctx context.Context) error {
	f.client.CloseIdleConnections()
	return f.p.Close(ctx)
}

func (f *Fetcher) bump(ctx context.Context, url string) (int64, error) {
	n, err := f.p.Incr(ctx, util.CountKey(url))
	if err != nil {
		return 0, fmt.Errorf("pagecache: incr %s: %w", util.CountKey(url), err)
	}
	return n, nil
}

// fetch GETs url. Any status is a result; only transport and read errors fail.
func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, resp.StatusCode, fmt.Errorf("body exceeds %d bytes", f.maxBody)
	}
	return body, resp.StatusCode, nil
}
