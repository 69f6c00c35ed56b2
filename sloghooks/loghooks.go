package sloghooks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/redisbasic"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	PageHitEvery    uint64
	DecodeFailEvery uint64
	// Optional key/URL redactor. Defaults to SHA-256 prefix.
	// Use func(s string) string { return s } to log URLs in clear.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr    atomic.Uint64
	decodeCtr atomic.Uint64
}

var _ redisbasic.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) BookkeepingError(op, stage string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("redisbasic.bookkeeping_error",
		"op", op,
		"stage", stage,
		"err", err)
}

func (h *Hooks) DecodeFailed(key string, err error) {
	if h.l == nil || !sample(h.opts.DecodeFailEvery, &h.decodeCtr) {
		return
	}
	h.l.Debug("redisbasic.decode_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) PageHit(url string, count int64) {
	if h.l == nil || !sample(h.opts.PageHitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("redisbasic.page_hit",
		"url", h.redact(url),
		"count", count)
}

func (h *Hooks) PageMiss(url string, status int, count int64) {
	if h.l == nil {
		return
	}
	lvl := slog.LevelInfo
	if status >= 400 {
		lvl = slog.LevelWarn
	}
	h.l.Log(context.Background(), lvl, "redisbasic.page_miss",
		"url", h.redact(url),
		"status", status,
		"count", count)
}

func (h *Hooks) PageFetchError(url string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("redisbasic.page_fetch_error",
		"url", h.redact(url),
		"err", err)
}
