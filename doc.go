// Package idcache implements an interning cache that assigns sequential ids to unique values.
//
// A Cache[I, T] keeps two structures in lockstep:
//   - an append-only ordered store of values; the position of a value is its id.
//   - a reverse index from value to id, used to detect repeats.
//
// Ids are dense: n distinct values receive exactly 0, 1, …, n-1 in first-seen order.
// Ids are never reused and never invalidated.
//
// Id types:
//
// I is a caller-defined named unsigned integer type. The name is what keeps ids from
// different domains apart:
//
//	type WordID uint32
//	type TagID uint16
//
//	words := idcache.New[WordID, string]()
//	foo := words.MakeID("foo") // 0
//	bar := words.MakeID("bar") // 1
//	_ = words.MakeID("foo")    // 0 again
//	_ = words.Get(bar)         // "bar"
//
// Get panics with *InvalidIDError on an id the cache never issued. MakeID panics with
// *ExhaustedError when the next id does not fit in I.
//
// Concurrency:
//
// A Cache is not safe for concurrent mutation. Callers that share one must serialize
// access themselves. Concurrent reads are fine as long as nothing writes.
//
// Persistence:
//
// The core never persists anything. A Cache encodes as the ordered sequence of its values
// (JSON, CBOR and msgpack are supported directly), and FromValues rebuilds the reverse index.
// Package snapshot stores whole caches in a provider.Provider with version-checked writes.
package idcache
