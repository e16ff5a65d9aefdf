package idcache

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// Cache assigns sequential ids of type I to unique values of type T.
//
// The zero value is an empty cache ready to use. A Cache must not be copied after
// first use; use Clone.
type Cache[I ID, T comparable] struct {
	values []T     // id -> value, append-only
	index  map[T]I // value -> id
}

// New returns an empty cache. Nothing is preallocated.
func New[I ID, T comparable]() *Cache[I, T] {
	return &Cache[I, T]{}
}

// NewWithCapacity returns an empty cache with room for at least capacity unique values.
// The capacity is a hint only.
func NewWithCapacity[I ID, T comparable](capacity int) *Cache[I, T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache[I, T]{
		values: make([]T, 0, capacity),
		index:  make(map[T]I, capacity),
	}
}

// FromValues rebuilds a cache from an ordered value sequence, as produced by Values.
// The value at position i receives id i. A repeated value yields *DuplicateValueError;
// a sequence longer than the id space yields *ExhaustedError.
func FromValues[I ID, T comparable](values []T) (*Cache[I, T], error) {
	if n := len(values); n > 0 {
		if _, ok := toID[I](n - 1); !ok {
			return nil, &ExhaustedError{Pos: n - 1, Max: maxID[I]()}
		}
	}
	c := NewWithCapacity[I, T](len(values))
	for i, v := range values {
		if first, ok := c.index[v]; ok {
			return nil, &DuplicateValueError{Index: i, First: uint64(first)}
		}
		c.index[v] = I(i)
		c.values = append(c.values, v)
	}
	return c, nil
}

// MakeID returns the id of v, assigning the next sequential id if v has not been seen.
//
// Values that are not equal to themselves (floating-point NaN) are never found again and
// receive a fresh id on every call. Panics with *ExhaustedError when a new id would not
// fit in I.
func (c *Cache[I, T]) MakeID(v T) I {
	if id, ok := c.index[v]; ok {
		return id
	}
	id, ok := toID[I](len(c.values))
	if !ok {
		panic(&ExhaustedError{Pos: len(c.values), Max: maxID[I]()})
	}
	if c.index == nil {
		c.index = make(map[T]I)
	}
	c.values = append(c.values, v)
	c.index[v] = id
	return id
}

// Lookup returns the id previously assigned to v without assigning a new one.
func (c *Cache[I, T]) Lookup(v T) (I, bool) {
	id, ok := c.index[v]
	return id, ok
}

// Get returns the value with the given id.
// Panics with *InvalidIDError if id was never issued by this cache.
func (c *Cache[I, T]) Get(id I) T {
	if uint64(id) >= uint64(len(c.values)) {
		panic(&InvalidIDError{ID: uint64(id), Len: len(c.values)})
	}
	return c.values[id]
}

// Value is like Get but reports ok=false instead of panicking.
func (c *Cache[I, T]) Value(id I) (T, bool) {
	if uint64(id) >= uint64(len(c.values)) {
		var zero T
		return zero, false
	}
	return c.values[id], true
}

// Len returns the number of unique values.
func (c *Cache[I, T]) Len() int { return len(c.values) }

// IsEmpty reports whether no value has been interned.
func (c *Cache[I, T]) IsEmpty() bool { return len(c.values) == 0 }

// Count returns the number of assigned ids as an I. It panics with *ExhaustedError when
// the count itself does not fit (e.g. 256 values in a uint8 cache); use Len then.
func (c *Cache[I, T]) Count() I {
	n, ok := toID[I](len(c.values))
	if !ok {
		panic(&ExhaustedError{Pos: len(c.values), Max: maxID[I]()})
	}
	return n
}

// All yields (id, value) pairs in ascending id order, which is insertion order.
// The sequence may be ranged over any number of times.
func (c *Cache[I, T]) All() iter.Seq2[I, T] {
	return func(yield func(I, T) bool) {
		for i, v := range c.values {
			if !yield(I(i), v) {
				return
			}
		}
	}
}

// IDs yields every assigned id in ascending order.
func (c *Cache[I, T]) IDs() iter.Seq[I] {
	return func(yield func(I) bool) {
		for i := range c.values {
			if !yield(I(i)) {
				return
			}
		}
	}
}

// Values returns a copy of the values ordered by id.
func (c *Cache[I, T]) Values() []T {
	return slices.Clone(c.values)
}

// Clone returns an independent copy of c.
func (c *Cache[I, T]) Clone() *Cache[I, T] {
	return &Cache[I, T]{
		values: slices.Clone(c.values),
		index:  maps.Clone(c.index),
	}
}

// Equal reports whether both caches hold the same values under the same ids.
func (c *Cache[I, T]) Equal(other *Cache[I, T]) bool {
	if c == nil || other == nil {
		return c == other
	}
	return slices.Equal(c.values, other.values)
}

// String formats the cache as its ordered value sequence.
func (c *Cache[I, T]) String() string {
	return fmt.Sprint(c.values)
}
