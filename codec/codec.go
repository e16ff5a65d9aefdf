// Package codec converts values to and from bytes for snapshot storage.
//
// Snapshot stores use a Codec[[]T] for the ordered value sequence of a cache.
// Changing the codec of a namespace is a breaking change for stored snapshots.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Named is implemented by codecs that report a stable name. Snapshot manifests record it.
type Named interface {
	Name() string
}

// NameOf returns the name of c, or "custom" when c does not implement Named.
func NameOf(c any) string {
	if n, ok := c.(Named); ok {
		return n.Name()
	}
	return "custom"
}
