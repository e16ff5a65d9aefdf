package idcache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID matches *InvalidIDError.
	ErrInvalidID = errors.New("idcache: invalid id")
	// ErrExhausted matches *ExhaustedError.
	ErrExhausted = errors.New("idcache: id space exhausted")
	// ErrDuplicateValue matches *DuplicateValueError.
	ErrDuplicateValue = errors.New("idcache: duplicate value")
)

// InvalidIDError is the panic value of Get for an id the cache never issued.
type InvalidIDError struct {
	ID  uint64
	Len int
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("idcache: invalid id %d (cache holds %d values)", e.ID, e.Len)
}

func (e *InvalidIDError) Unwrap() error { return ErrInvalidID }

// ExhaustedError reports that position Pos has no id because it exceeds the largest
// value of the id type (Max). MakeID and Count panic with it; FromValues returns it.
type ExhaustedError struct {
	Pos int
	Max uint64
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("idcache: id space exhausted: %d exceeds max id %d", e.Pos, e.Max)
}

func (e *ExhaustedError) Unwrap() error { return ErrExhausted }

// DuplicateValueError is returned when restoring a value sequence that repeats a value.
// Index is the position of the repeat, First the position of the earlier occurrence.
type DuplicateValueError struct {
	Index int
	First uint64
}

func (e *DuplicateValueError) Error() string {
	return fmt.Sprintf("idcache: duplicate value at position %d (first seen at %d)", e.Index, e.First)
}

func (e *DuplicateValueError) Unwrap() error { return ErrDuplicateValue }

// InvalidateError is returned by snapshot invalidation when both the version bump and
// the delete failed.
type InvalidateError struct {
	Name    string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("invalidate %q failed: version bump and delete failed: bump=%v; delete=%v",
			e.Name, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("invalidate %q: version bump failed: %v", e.Name, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("invalidate %q: delete failed: %v", e.Name, e.DelErr)
	default:
		return fmt.Sprintf("invalidate %q: unknown error", e.Name)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
