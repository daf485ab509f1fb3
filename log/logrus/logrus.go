// Package logrus adapts a *logrus.Entry to nsmap.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/nsmap"
)

var _ nsmap.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: logrus.NewEntry(l).WithField("component", "nsmap")}
}

func (l LogrusLogger) Debug(msg string, f nsmap.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f nsmap.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f nsmap.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f nsmap.Fields) { l.with(f).Error(msg) }

func (l LogrusLogger) with(f nsmap.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}
