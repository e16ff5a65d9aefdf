package versions

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	version   uint64
	updatedAt time.Time
}

// Local keeps versions in-process, with an optional loop that prunes counters not
// bumped within the retention window. A pruned counter reads as 0 again, so a snapshot
// saved before the prune must not outlive it; keep retention well above snapshot TTLs.
type Local struct {
	mu      sync.RWMutex
	entries map[string]localEntry

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ Store = (*Local)(nil)

// NewLocal returns an in-process store. The cleanup loop runs only when both
// cleanupInterval and retention are positive.
func NewLocal(cleanupInterval, retention time.Duration) *Local {
	s := &Local{entries: make(map[string]localEntry)}
	if cleanupInterval > 0 && retention > 0 {
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go s.cleanupLoop(cleanupInterval, retention)
	}
	return s
}

func (s *Local) cleanupLoop(interval, retention time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup(retention)
		case <-s.stopCh:
			return
		}
	}
}

func (s *Local) Current(_ context.Context, key string) (uint64, error) {
	s.mu.RLock()
	e := s.entries[key]
	s.mu.RUnlock()
	return e.version, nil
}

// CurrentMany takes the read lock once for all keys.
func (s *Local) CurrentMany(_ context.Context, keys []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(keys))
	s.mu.RLock()
	for _, k := range keys {
		out[k] = s.entries[k].version
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *Local) Bump(_ context.Context, key string) (uint64, error) {
	now := time.Now()
	s.mu.Lock()
	e := s.entries[key]
	e.version++
	e.updatedAt = now
	s.entries[key] = e
	s.mu.Unlock()
	return e.version, nil
}

func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	for k, e := range s.entries {
		if e.updatedAt.Before(cutoff) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}

// Close stops the cleanup loop. Safe to call multiple times.
func (s *Local) Close(_ context.Context) error {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.wg.Wait()
		}
	})
	return nil
}
