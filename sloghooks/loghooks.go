// Package sloghooks reports snapshot events through log/slog.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/exists-forall/id-cache"
	"github.com/exists-forall/id-cache/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery    uint64
	SetRejectedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr    atomic.Uint64
	setRejectedCtr atomic.Uint64
}

var _ idcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.ShortHash(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("idcache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil || !sample(h.opts.SetRejectedEvery, &h.setRejectedCtr) {
		return
	}
	h.l.Warn("idcache.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) VersionReadError(count int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("idcache.version_read_error",
		"count", count,
		"err", err)
}

func (h *Hooks) VersionBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("idcache.version_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(name string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("idcache.invalidate_outage",
		"name", name,
		"bump_err", bumpErr,
		"del_err", delErr)
}

func (h *Hooks) LocalVersionsShared() {
	if h.l == nil {
		return
	}
	h.l.Warn("idcache.local_versions_shared",
		"msg", "shared provider with in-process versions; stale snapshots possible in multi-replica")
}
