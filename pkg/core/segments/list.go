package segments

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/gomlx/forall/pkg/core/resources"
	"github.com/pkg/errors"
)

// List is an explicit, owned list of indices, in arbitrary order and possibly with duplicates.
//
// The indices are copied once at construction into storage reserved in the resource (memory space)
// of the execution policy that will iterate over it. Slices of a List are views over the same storage.
type List[I Integer] struct {
	data  []I
	res   resources.Resource
	alloc *resources.Allocation
}

var _ Segment[int] = (*List[int])(nil)

// NewList copies indices into a new List resident in res.
//
// If res is nil, resources.Host is used. It returns an error wrapping resources.ErrOutOfMemory if
// the memory can't be reserved.
func NewList[I Integer](indices []I, res resources.Resource) (*List[I], error) {
	if res == nil {
		res = resources.Host
	}
	var zero I
	alloc, err := res.Allocate(int64(len(indices)) * int64(unsafe.Sizeof(zero)))
	if err != nil {
		return nil, errors.WithMessagef(err, "segments: failed to create List of %d indices in %s memory",
			len(indices), res.Space())
	}
	data := make([]I, len(indices))
	copy(data, indices)
	return &List[I]{data: data, res: res, alloc: alloc}, nil
}

// Kind implements Segment.
func (l *List[I]) Kind() Kind { return KindList }

// Len implements Segment.
func (l *List[I]) Len() int { return len(l.data) }

// At implements Segment.
func (l *List[I]) At(pos int) I { return l.data[pos] }

// Slice implements Segment. The returned List shares storage with l and must not be released.
func (l *List[I]) Slice(offset, count int) Segment[I] {
	start, end := clampSlice(len(l.data), offset, count)
	return &List[I]{data: l.data[start:end:end], res: l.res}
}

// All implements Segment.
func (l *List[I]) All() iter.Seq[I] {
	return func(yield func(I) bool) {
		for _, idx := range l.data {
			if !yield(idx) {
				return
			}
		}
	}
}

// Resource where the list is resident.
func (l *List[I]) Resource() resources.Resource { return l.res }

// Release returns the list memory reservation. The list must not be used after that.
// Releasing a slice of a List is a no-op.
func (l *List[I]) Release() {
	l.alloc.Release()
	l.alloc = nil
}

// String implements fmt.Stringer.
func (l *List[I]) String() string {
	return fmt.Sprintf("List[len=%d, %s]", len(l.data), l.res.Space())
}
