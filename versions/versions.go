// Package versions keeps a version counter per snapshot key.
//
// snapshot.Store stamps every saved snapshot with the version it observed and only
// writes when that version is still current; Invalidate bumps the counter, which makes
// every older snapshot stale. A missing counter reads as 0.
package versions

import (
	"context"
	"time"
)

// Store abstracts where versions live.
// Use Local (default) for in-process versions, Redis or DynamoDB when replicas share
// snapshots through a remote provider.
type Store interface {
	// Current returns the current version; missing => 0.
	Current(ctx context.Context, key string) (uint64, error)
	// CurrentMany returns versions for many keys; missing => 0.
	CurrentMany(ctx context.Context, keys []string) (map[string]uint64, error)
	// Bump atomically increments and returns the new version.
	Bump(ctx context.Context, key string) (uint64, error)
	// Cleanup prunes long-inactive counters if applicable (no-op for remote stores).
	Cleanup(retention time.Duration)
	// Close releases resources.
	Close(context.Context) error
}
