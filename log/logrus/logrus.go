// Package logrus adapts a *logrus.Entry to redisbasic.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/redisbasic"
)

var _ redisbasic.Logger = Logger{}

// Logger writes redisbasic logs to E. A nil E discards everything.
type Logger struct{ E *logrus.Entry }

func New(l *logrus.Logger) Logger {
	if l == nil {
		return Logger{}
	}
	return Logger{E: l.WithField("component", "redisbasic")}
}

func (l Logger) Debug(msg string, f redisbasic.Fields) { l.log(logrus.DebugLevel, msg, f) }
func (l Logger) Info(msg string, f redisbasic.Fields)  { l.log(logrus.InfoLevel, msg, f) }
func (l Logger) Warn(msg string, f redisbasic.Fields)  { l.log(logrus.WarnLevel, msg, f) }
func (l Logger) Error(msg string, f redisbasic.Fields) { l.log(logrus.ErrorLevel, msg, f) }

func (l Logger) log(lvl logrus.Level, msg string, f redisbasic.Fields) {
	if l.E == nil || !l.E.Logger.IsLevelEnabled(lvl) {
		return
	}
	e := l.E
	if len(f) > 0 {
		lf := make(logrus.Fields, len(f))
		for k, v := range f {
			if k == "err" {
				k = logrus.ErrorKey
			}
			lf[k] = v
		}
		e = e.WithFields(lf)
	}
	e.Log(lvl, msg)
}
