package idcache

// ID is the constraint for id types. Declare one named type per domain so ids from
// different caches cannot be mixed up:
//
//	type WordID uint32
//
// The cache only converts between I and a dense non-negative position; ids support
// nothing beyond comparison and integer conversion.
type ID interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// maxID returns the largest value representable by I.
func maxID[I ID]() uint64 {
	return uint64(^I(0))
}

// toID converts a position into an id; ok=false when n does not fit in I.
func toID[I ID](n int) (I, bool) {
	if n < 0 || uint64(n) > maxID[I]() {
		return 0, false
	}
	return I(n), true
}
