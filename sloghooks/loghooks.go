// Package sloghooks logs nsmap.Hooks events to a *slog.Logger.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/nsmap"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	ScanMissEvery uint64
	// Optional key redactor for physical keys. Defaults to SHA-256 prefix.
	// Tokens are logged as is; they carry no user data.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	scanMissCtr atomic.Uint64
}

var _ nsmap.Hooks = (*Hooks)(nil)

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

func (h *Hooks) Purged(token string, keys int, reason string) {
	if h.l == nil {
		return
	}
	h.l.Debug("nsmap.purged",
		"token", token,
		"keys", keys,
		"reason", reason)
}

func (h *Hooks) Kept(token, reason string) {
	if h.l == nil {
		return
	}
	h.l.Debug("nsmap.kept",
		"token", token,
		"reason", reason)
}

func (h *Hooks) Leaked(token string, persisted bool) {
	if h.l == nil {
		return
	}
	h.l.Warn("nsmap.leaked",
		"token", token,
		"persisted", persisted,
		"msg", "map collected without Close; purge timing is undefined")
}

func (h *Hooks) ScanMiss(physicalKey string) {
	if h.l == nil || !sample(h.opts.ScanMissEvery, &h.scanMissCtr) {
		return
	}
	h.l.Info("nsmap.scan_miss",
		"key", h.redact(physicalKey))
}

func (h *Hooks) CleanupError(token string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("nsmap.cleanup_error",
		"token", token,
		"err", err)
}
