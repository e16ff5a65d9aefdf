// Package provider defines the byte store that snapshot.Store persists caches into.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key. If a store performs internal
// transforms (e.g., compression), they MUST be fully reversed.
//
// The keyspaces "snap:<len(ns)>:<ns>:" and "manifest:<len(ns)>:<ns>:" are owned by the
// snapshot store.
// Foreign writes under these prefixes are treated as corruption and deleted.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. It must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL; ttl <= 0 means no expiry. May ignore cost.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort). Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Shared is implemented by providers whose data is visible to other processes
// (Redis, object stores). The snapshot store warns when such a provider is paired
// with in-process versions.
type Shared interface {
	Shared() bool
}

// IsShared reports whether p declares itself shared.
func IsShared(p Provider) bool {
	s, ok := p.(Shared)
	return ok && s.Shared()
}
