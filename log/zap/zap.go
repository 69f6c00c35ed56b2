// Package zap adapts a *zap.Logger to redisbasic.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/redisbasic"
)

var _ redisbasic.Logger = Logger{}

// Logger writes redisbasic logs to L. A nil L discards everything.
type Logger struct{ L *zap.Logger }

func New(l *zap.Logger) Logger {
	if l == nil {
		return Logger{}
	}
	return Logger{L: l.Named("redisbasic")}
}

func (z Logger) Debug(msg string, f redisbasic.Fields) { z.log(zapcore.DebugLevel, msg, f) }
func (z Logger) Info(msg string, f redisbasic.Fields)  { z.log(zapcore.InfoLevel, msg, f) }
func (z Logger) Warn(msg string, f redisbasic.Fields)  { z.log(zapcore.WarnLevel, msg, f) }
func (z Logger) Error(msg string, f redisbasic.Fields) { z.log(zapcore.ErrorLevel, msg, f) }

func (z Logger) log(lvl zapcore.Level, msg string, f redisbasic.Fields) {
	if z.L == nil {
		return
	}
	// skip building fields for disabled levels
	if ce := z.L.Check(lvl, msg); ce != nil {
		ce.Write(zf(f)...)
	}
}

// zf converts fields in key order; an error under "err" becomes zap.Error.
func zf(f redisbasic.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok && k == "err" {
			out = append(out, zap.Error(err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
