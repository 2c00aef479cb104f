package tiling

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/forall/pkg/core/segments"
)

// LaunchDims is the launch geometry of a kernel.
//
// Every statement mapped to groups (or units) uses one axis: the outermost such statement on a path
// of the kernel tree uses axis 0, the next nested one axis 1, and so on. Sibling statements share
// their axis, whose radix is the largest extent among them. A group index (or unit rank) is decoded
// in mixed radix, axis 0 being the most significant, and each statement runs for the position given
// by its axis coordinate, if it's smaller than its actual extent.
type LaunchDims struct {
	// Groups is the number of groups: the product of GroupRadices.
	Groups int

	// GroupSize is the number of units per group: the product of UnitRadices.
	GroupSize int

	// GroupRadices is the extent of each group axis.
	GroupRadices []int

	// UnitRadices is the extent of each unit axis.
	UnitRadices []int
}

// String implements fmt.Stringer.
func (d LaunchDims) String() string {
	return fmt.Sprintf("LaunchDims{Groups=%d %v, GroupSize=%d %v}", d.Groups, d.GroupRadices, d.GroupSize, d.UnitRadices)
}

func (d *LaunchDims) addGroupAxis(axis, extent int) {
	d.GroupRadices = growAxis(d.GroupRadices, axis, extent)
}

func (d *LaunchDims) addUnitAxis(axis, extent int) {
	d.UnitRadices = growAxis(d.UnitRadices, axis, extent)
}

// growAxis sets radices[axis] to at least extent, and at least 1.
func growAxis(radices []int, axis, extent int) []int {
	for len(radices) <= axis {
		radices = append(radices, 1)
	}
	radices[axis] = max(radices[axis], extent)
	return radices
}

func product(radices []int) int {
	p := 1
	for _, r := range radices {
		p *= r
	}
	return p
}

// decode converts v to mixed-radix coordinates, axis 0 being the most significant.
func decode(v int, radices, coords []int) {
	for axis := len(radices) - 1; axis >= 0; axis-- {
		coords[axis] = v % radices[axis]
		v /= radices[axis]
	}
}

// LaunchDims computes the launch geometry of the kernel over segs, one segment per dimension.
//
// The computation runs on a private snapshot of segs, where the segment of a tiled dimension is
// restricted to its first tile while computing the dimensions of the inner statements. So all
// dimensions are known before any statement runs, and segs is not modified.
//
// If maxGroupSize > 0, a group size larger than it is a configuration error, and it panics.
func (k *Kernel[P, I]) LaunchDims(segs []segments.Segment[I], maxGroupSize int) LaunchDims {
	if len(segs) < k.numDims {
		exceptions.Panicf("tiling: kernel uses %d dimensions, but only %d segments were given", k.numDims, len(segs))
	}
	for dim, seg := range segs {
		if seg == nil {
			exceptions.Panicf("tiling: segment for dimension %d is nil", dim)
		}
	}
	snapshot := slices.Clone(segs)
	var d LaunchDims
	for _, stmt := range k.stmts {
		stmt.dims(&d, snapshot, 0, 0)
	}
	d.Groups = product(d.GroupRadices)
	d.GroupSize = product(d.UnitRadices)
	if maxGroupSize > 0 && d.GroupSize > maxGroupSize {
		exceptions.Panicf("tiling: kernel %s requires %d units per group, more than the maximum %d",
			k, d.GroupSize, maxGroupSize)
	}
	return d
}

func (s *forStmt[P, I]) dims(d *LaunchDims, segs []segments.Segment[I], groupAxis, unitAxis int) {
	extent := segs[s.dim].Len()
	switch s.mapping {
	case MapGroups:
		d.addGroupAxis(groupAxis, extent)
		groupAxis++
	case MapUnits:
		d.addUnitAxis(unitAxis, extent)
		unitAxis++
	}
	for _, stmt := range s.body {
		stmt.dims(d, segs, groupAxis, unitAxis)
	}
}

func (s *tileStmt[P, I]) dims(d *LaunchDims, segs []segments.Segment[I], groupAxis, unitAxis int) {
	seg := segs[s.dim]
	extent := NumTiles(seg.Len(), s.chunk)
	switch s.mapping {
	case MapGroups:
		d.addGroupAxis(groupAxis, extent)
		groupAxis++
	case MapUnits:
		d.addUnitAxis(unitAxis, extent)
		unitAxis++
	}
	segs[s.dim] = seg.Slice(0, s.chunk)
	for _, stmt := range s.body {
		stmt.dims(d, segs, groupAxis, unitAxis)
	}
	segs[s.dim] = seg
}

func (s *lambdaStmt[P, I]) dims(*LaunchDims, []segments.Segment[I], int, int) {}
