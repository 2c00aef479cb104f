package segments

import (
	"fmt"
	"iter"

	"github.com/gomlx/exceptions"
)

// Range is the contiguous segment [Begin, End). It holds no storage.
type Range[I Integer] struct {
	begin, end I
}

var _ Segment[int] = Range[int]{}

// NewRange returns the segment [begin, end). If end < begin the range is empty.
func NewRange[I Integer](begin, end I) Range[I] {
	if end < begin {
		end = begin
	}
	return Range[I]{begin: begin, end: end}
}

// Kind implements Segment.
func (r Range[I]) Kind() Kind { return KindRange }

// Begin of the range.
func (r Range[I]) Begin() I { return r.begin }

// End of the range, exclusive.
func (r Range[I]) End() I { return r.end }

// Len implements Segment.
func (r Range[I]) Len() int { return span(r.begin, r.end) }

// At implements Segment.
func (r Range[I]) At(pos int) I { return r.begin + I(pos) }

// Slice implements Segment.
func (r Range[I]) Slice(offset, count int) Segment[I] {
	start, end := clampSlice(r.Len(), offset, count)
	return Range[I]{begin: r.begin + I(start), end: r.begin + I(end)}
}

// All implements Segment.
func (r Range[I]) All() iter.Seq[I] {
	return func(yield func(I) bool) {
		for idx := r.begin; idx < r.end; idx++ {
			if !yield(idx) {
				return
			}
		}
	}
}

// String implements fmt.Stringer.
func (r Range[I]) String() string {
	return fmt.Sprintf("Range[%d, %d)", r.begin, r.end)
}

// Strided is the segment {begin, begin+stride, ...} bounded by end (exclusive), with a signed stride.
// A negative stride iterates in descending order, from begin down to (but excluding) end.
type Strided[I Integer] struct {
	begin  I
	stride I
	length int
}

var _ Segment[int] = Strided[int]{}

// NewStrided returns the strided segment. A zero stride is a configuration error and panics.
func NewStrided[I Integer](begin, end, stride I) Strided[I] {
	if stride == 0 {
		exceptions.Panicf("segments: NewStrided(%d, %d, %d) with zero stride", begin, end, stride)
	}
	var length int
	if stride > 0 && end > begin {
		length = ceilDiv(span(begin, end), uint64(stride))
	} else if stride < 0 && end < begin {
		length = ceilDiv(span(end, begin), uint64(-int64(stride)))
	}
	return Strided[I]{begin: begin, stride: stride, length: length}
}

// Kind implements Segment.
func (s Strided[I]) Kind() Kind { return KindStrided }

// Begin of the segment, the first index visited (if not empty).
func (s Strided[I]) Begin() I { return s.begin }

// Stride between consecutive indices.
func (s Strided[I]) Stride() I { return s.stride }

// Len implements Segment.
func (s Strided[I]) Len() int { return s.length }

// At implements Segment.
func (s Strided[I]) At(pos int) I { return s.begin + I(pos)*s.stride }

// Slice implements Segment.
func (s Strided[I]) Slice(offset, count int) Segment[I] {
	start, end := clampSlice(s.length, offset, count)
	return Strided[I]{begin: s.At(start), stride: s.stride, length: end - start}
}

// All implements Segment.
func (s Strided[I]) All() iter.Seq[I] { return allOf[I](s) }

// String implements fmt.Stringer.
func (s Strided[I]) String() string {
	return fmt.Sprintf("Strided[begin=%d, stride=%d, len=%d]", s.begin, s.stride, s.length)
}
