package zap

import (
	"errors"
	"testing"

	"github.com/unkn0wn-root/nsmap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("d", nsmap.Fields{"token": "abc"})
	l.Info("i", nil)
	l.Warn("w", nsmap.Fields{"err": errors.New("boom")})
	l.Error("e", nsmap.Fields{"keys": 3})

	entries := logs.AllUntimed()
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Fatalf("entry %d level=%v want %v", i, e.Level, wantLevels[i])
		}
		if e.ContextMap()["component"] != "nsmap" {
			t.Fatalf("entry %d missing component field: %v", i, e.ContextMap())
		}
	}
	if got := entries[0].ContextMap()["token"]; got != "abc" {
		t.Fatalf("token field = %v", got)
	}
	if got := entries[2].ContextMap()["err"]; got != "boom" {
		t.Fatalf("err field = %v", got)
	}
}

func TestNilLogger(t *testing.T) {
	New(nil).Info("ignored", nsmap.Fields{"a": 1})
}
