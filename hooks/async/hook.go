// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SelfHealEvery: 10, // sample logs: ~every 10th self-heal
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	store, _ := snapshot.New[WordID](snapshot.Options[string]{
//	    Namespace: "app:prod:words",
//	    Provider:  provider,
//	    Codec:     codec.JSON[[]string]{},
//	    Versions:  versions.NewRedis(rdb, 0),
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/exists-forall/id-cache"
)

// Hooks forwards events to inner on a small worker pool. Events that do not fit in
// the queue are dropped and counted.
type Hooks struct {
	inner   idcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ idcache.Hooks = (*Hooks)(nil)

func New(inner idcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Hooks must not be called after Close.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped returns the number of events lost to a full queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) SelfHeal(k, r string)                 { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string)         { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) VersionReadError(n int, err error)    { h.try(func() { h.inner.VersionReadError(n, err) }) }
func (h *Hooks) VersionBumpError(k string, err error) { h.try(func() { h.inner.VersionBumpError(k, err) }) }
func (h *Hooks) LocalVersionsShared()                 { h.try(func() { h.inner.LocalVersionsShared() }) }
func (h *Hooks) InvalidateOutage(name string, be, de error) {
	h.try(func() { h.inner.InvalidateOutage(name, be, de) })
}
