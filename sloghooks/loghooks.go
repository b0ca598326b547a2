// Package sloghooks logs template events through log/slog, with sampling for
// the per-call Served event and key redaction.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/cacheaside"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	ServedEvery uint64
	StaleEvery  uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	servedCtr atomic.Uint64
	staleCtr  atomic.Uint64
}

var _ cacheaside.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if k == "" {
		return ""
	}
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

func (h *Hooks) Served(key string, o cacheaside.Outcome) {
	if h.l == nil || !sample(h.opts.ServedEvery, &h.servedCtr) {
		return
	}
	h.l.Debug("cacheaside.served",
		"key", h.redact(key),
		"outcome", o.String())
}

func (h *Hooks) StoreReadFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cacheaside.store_read_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) StaleServed(key string, age time.Duration, err error) {
	if h.l == nil || !sample(h.opts.StaleEvery, &h.staleCtr) {
		return
	}
	h.l.Warn("cacheaside.stale_served",
		"key", h.redact(key),
		"age", age,
		"err", err)
}

func (h *Hooks) WriteDropped(key string, isUpdate bool, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cacheaside.write_dropped",
		"key", h.redact(key),
		"is_update", isUpdate,
		"err", err)
}

func (h *Hooks) WriteFailed(key string, isUpdate bool, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("cacheaside.write_failed",
		"key", h.redact(key),
		"is_update", isUpdate,
		"err", err)
}
