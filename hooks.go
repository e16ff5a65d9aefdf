package idcache

// Hooks are lightweight callbacks for high-signal snapshot events.
// Implementations MUST be cheap and non-blocking; wrap slow sinks with hooks/async.
type Hooks interface {
	// A stored snapshot was deleted on load.
	// reason ∈ {"corrupt", "version_mismatch", "decode", "duplicate"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// Version store read failed. count is the number of names involved.
	VersionReadError(count int, err error)

	// Version store bump failed.
	VersionBumpError(storageKey string, err error)

	// Both version bump and delete failed during Invalidate (likely backend outage).
	InvalidateOutage(name string, bumpErr, delErr error)

	// A shared (remote) provider is paired with in-process versions; replicas will
	// not see each other's invalidations.
	LocalVersionsShared()
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)               {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) VersionReadError(int, error)           {}
func (NopHooks) VersionBumpError(string, error)        {}
func (NopHooks) InvalidateOutage(string, error, error) {}
func (NopHooks) LocalVersionsShared()                  {}
