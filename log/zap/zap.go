// Package zap adapts a *zap.Logger to nsmap.Logger.
package zap

import (
	"sort"

	"github.com/unkn0wn-root/nsmap"
	"go.uber.org/zap"
)

var _ nsmap.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New tags every entry with component=nsmap. A nil logger yields a no-op one.
func New(l *zap.Logger) ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return ZapLogger{L: l.With(zap.String("component", "nsmap"))}
}

func (z ZapLogger) Debug(msg string, f nsmap.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f nsmap.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f nsmap.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f nsmap.Fields) { z.L.Error(msg, zf(f)...) }

// zf converts fields in key order so output is stable.
func zf(f nsmap.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]zap.Field, 0, len(f))
	for _, k := range names {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
