// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package segments describes iteration spaces: which indices a loop visits, and in what order.
//
// A Segment is the atomic unit of iteration: a Range, a Strided range or an explicit List of
// indices. An IndexSet is an ordered composite of segments iterated as one logical sequence.
//
// Segments are addressed by logical position: At(pos) returns the index visited at position pos,
// for pos in [0, Len()). Executors only ever deal with positions, which is what allows the same
// loop to be partitioned, tiled or mapped to device threads without knowing the segment variant.
package segments

import (
	"iter"
	"math"

	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"
)

// Integer is the constraint for index types.
type Integer = constraints.Integer

// Kind of segment.
type Kind int

const (
	// KindRange is a contiguous [begin, end) range.
	KindRange Kind = iota

	// KindStrided is a [begin, end) range stepped by a signed stride.
	KindStrided

	// KindList is an explicit list of indices.
	KindList
)

//go:generate go tool enumer -type=Kind -trimprefix=Kind -output=gen_kind_enumer.go segments.go

// Segment is a set of integral indices visited in a segment-defined order.
//
// Segments are immutable and safe to share among concurrently executing iterations.
type Segment[I Integer] interface {
	// Kind of the segment.
	Kind() Kind

	// Len returns the number of indices, in O(1).
	Len() int

	// At returns the index at logical position pos, with 0 <= pos < Len().
	At(pos int) I

	// Slice returns a segment of the same kind over the logical positions [offset, offset+count),
	// clamped to the segment length. It never copies index data.
	Slice(offset, count int) Segment[I]

	// All iterates over the indices in the segment's natural order.
	All() iter.Seq[I]
}

// clampSlice returns the clamped [start, end) logical positions for Slice.
func clampSlice(length, offset, count int) (start, end int) {
	if offset < 0 || count < 0 {
		exceptions.Panicf("segments: invalid Slice(offset=%d, count=%d)", offset, count)
	}
	start = min(offset, length)
	end = start + min(count, length-start)
	return
}

// span returns the number of indices in [begin, end), or 0 if end <= begin.
// The difference is taken modulo 2^64, so it is exact for any index type.
func span[I Integer](begin, end I) int {
	if end <= begin {
		return 0
	}
	n := uint64(end) - uint64(begin)
	if n > math.MaxInt {
		exceptions.Panicf("segments: [%d, %d) has more than MaxInt indices", begin, end)
	}
	return int(n)
}

// ceilDiv returns ceil(n/d) for n in [0, MaxInt].
func ceilDiv(n int, d uint64) int {
	q := uint64(n) / d
	if uint64(n)%d != 0 {
		q++
	}
	return int(q)
}

// allOf implements Segment.All in terms of Len and At.
func allOf[I Integer](seg Segment[I]) iter.Seq[I] {
	return func(yield func(I) bool) {
		n := seg.Len()
		for pos := range n {
			if !yield(seg.At(pos)) {
				return
			}
		}
	}
}

// Collect returns the indices of seg in order. Mostly useful for tests and debugging.
func Collect[I Integer](seg Segment[I]) []I {
	out := make([]I, 0, seg.Len())
	for idx := range seg.All() {
		out = append(out, idx)
	}
	return out
}
