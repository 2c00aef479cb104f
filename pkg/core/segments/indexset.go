package segments

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/forall/backends"
)

// IndexSet is an ordered composite of segments, iterated as one logical sequence.
//
// Each segment may carry its own inner execution policy, used by the dispatch engine when
// it executes that segment. IndexSets are built once before dispatch and must not be
// changed while a loop is iterating over them.
type IndexSet[I Integer] struct {
	entries []entry[I]
	length  int
}

type entry[I Integer] struct {
	seg    Segment[I]
	policy backends.Policy
	offset int // Logical position of the first index of seg in the IndexSet.
}

// NewIndexSet creates an IndexSet with the given segments, in order.
func NewIndexSet[I Integer](segs ...Segment[I]) *IndexSet[I] {
	iset := &IndexSet[I]{}
	for _, seg := range segs {
		iset.PushBack(seg)
	}
	return iset
}

// PushBack appends a segment, to be executed with the policy given to the dispatch engine.
func (s *IndexSet[I]) PushBack(seg Segment[I]) {
	s.PushBackWithPolicy(seg, nil)
}

// PushBackWithPolicy appends a segment with its own inner execution policy (nil for none).
func (s *IndexSet[I]) PushBackWithPolicy(seg Segment[I], policy backends.Policy) {
	if seg == nil {
		exceptions.Panicf("segments: IndexSet.PushBack(nil)")
	}
	s.entries = append(s.entries, entry[I]{seg: seg, policy: policy, offset: s.length})
	s.length += seg.Len()
}

// Len is the total number of indices, the sum of the lengths of all segments.
func (s *IndexSet[I]) Len() int { return s.length }

// NumSegments in the IndexSet.
func (s *IndexSet[I]) NumSegments() int { return len(s.entries) }

// Segment returns the i-th segment.
func (s *IndexSet[I]) Segment(i int) Segment[I] { return s.entries[i].seg }

// Policy returns the inner policy of the i-th segment, or nil if none was given.
func (s *IndexSet[I]) Policy(i int) backends.Policy { return s.entries[i].policy }

// Offset returns the logical position of the first index of the i-th segment.
func (s *IndexSet[I]) Offset(i int) int { return s.entries[i].offset }

// At returns the index at logical position pos of the whole IndexSet.
func (s *IndexSet[I]) At(pos int) I {
	if pos < 0 || pos >= s.length {
		exceptions.Panicf("segments: IndexSet.At(%d) out of range [0, %d)", pos, s.length)
	}
	// First entry whose end is beyond pos. Empty segments are skipped naturally.
	i := sort.Search(len(s.entries), func(i int) bool {
		e := s.entries[i]
		return e.offset+e.seg.Len() > pos
	})
	e := s.entries[i]
	return e.seg.At(pos - e.offset)
}

// All iterates over all indices of all segments, in append order.
func (s *IndexSet[I]) All() iter.Seq[I] {
	return func(yield func(I) bool) {
		for _, e := range s.entries {
			for idx := range e.seg.All() {
				if !yield(idx) {
					return
				}
			}
		}
	}
}

// String implements fmt.Stringer.
func (s *IndexSet[I]) String() string {
	parts := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		parts = append(parts, fmt.Sprintf("%v", e.seg))
	}
	return fmt.Sprintf("IndexSet(len=%d){%s}", s.length, strings.Join(parts, ", "))
}
