package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/exists-forall/id-cache"
)

type countingHooks struct {
	idcache.NopHooks
	mu    sync.Mutex
	heals []string
	gate  chan struct{} // when set, SelfHeal blocks until closed
}

func (c *countingHooks) SelfHeal(k, r string) {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heals = append(c.heals, k+"/"+r)
}

func TestForwardsAndDrainsOnClose(t *testing.T) {
	inner := &countingHooks{}
	h := New(inner, 2, 16)
	for i := 0; i < 10; i++ {
		h.SelfHeal("snap:ns:k", "corrupt")
	}
	h.VersionReadError(1, errors.New("x"))
	h.Close()
	h.Close() // idempotent

	if len(inner.heals) != 10 {
		t.Fatalf("delivered %d of 10 events", len(inner.heals))
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped=%d", h.Dropped())
	}
}

func TestDropsWhenQueueFull(t *testing.T) {
	inner := &countingHooks{gate: make(chan struct{})}
	h := New(inner, 1, 1)

	// The worker may or may not have dequeued the first event yet, so at most
	// two of these fit (one in flight, one queued).
	for i := 0; i < 5; i++ {
		h.SelfHeal("k", "decode")
	}
	if d := h.Dropped(); d < 3 {
		t.Fatalf("dropped=%d, want at least 3", d)
	}
	close(inner.gate)
	h.Close()
	if got := uint64(len(inner.heals)) + h.Dropped(); got != 5 {
		t.Fatalf("delivered+dropped=%d, want 5", got)
	}
}
