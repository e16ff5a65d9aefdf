package snapshot

import "time"

const (
	defaultVersionRetention = 30 * 24 * time.Hour
	defaultSweep            = time.Hour
	defaultLoadConcurrency  = 8
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
