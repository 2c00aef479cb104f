package tiling

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/pkg/core/forall"
	"github.com/gomlx/forall/pkg/core/segments"
	"k8s.io/klog/v2"
)

// Run executes kernel k over segs (one segment per dimension) as a single launch of policy p,
// binding the given reducers to it.
//
// On device executors groups and units map to blocks and threads, and the launch group size is
// the one computed by the kernel. On host executors each group is a lane, and loops mapped to
// units run sequentially within it.
//
// It panics on errors, see RunOrError.
func Run[P backends.Policy, I segments.Integer](p P, k *Kernel[P, I], segs []segments.Segment[I], reducers ...forall.Reducer[P]) {
	if err := RunOrError(p, k, segs, reducers...); err != nil {
		panic(err)
	}
}

// RunOrError is like Run, but returns resource errors instead of panicking.
func RunOrError[P backends.Policy, I segments.Integer](p P, k *Kernel[P, I], segs []segments.Segment[I], reducers ...forall.Reducer[P]) error {
	if any(p) == nil {
		exceptions.Panicf("tiling: nil policy")
	}
	forall.CheckResidency(p, segs...)
	exec := p.Executor()
	onDevice := exec.Kind() == backends.Device
	maxGroupSize := 0
	if onDevice {
		maxGroupSize = exec.Capabilities().MaxGroupSize
	}
	d := k.LaunchDims(segs, maxGroupSize)
	if klog.V(1).Enabled() {
		klog.Infof("tiling: %s on %s: %s", k, exec.Name(), d)
	}
	cfg := p.LaunchConfig()
	if !onDevice {
		return forall.Dispatch(p, d.Groups, cfg, func(lane forall.Lane[P], pos int) {
			st := newLaneState(lane, segs, &d, false)
			decode(pos, d.GroupRadices, st.groupCoords)
			st.run(k.stmts, 0, 0)
		}, reducers...)
	}
	cfg.GroupSize = d.GroupSize
	return forall.Dispatch(p, d.Groups*d.GroupSize, cfg, func(lane forall.Lane[P], _ int) {
		st := newLaneState(lane, segs, &d, true)
		decode(lane.Group, d.GroupRadices, st.groupCoords)
		decode(lane.Rank, d.UnitRadices, st.unitCoords)
		st.run(k.stmts, 0, 0)
	}, reducers...)
}

// laneState is the private iteration state of one lane: its own copy of the segments (where tiles
// are substituted), the current indices and the lane's coordinates on each axis.
type laneState[P backends.Policy, I segments.Integer] struct {
	lane     forall.Lane[P]
	segs     []segments.Segment[I]
	idx      []I
	mapUnits bool

	groupCoords, unitCoords []int
	groupBound, unitBound   []bool
}

func newLaneState[P backends.Policy, I segments.Integer](lane forall.Lane[P], segs []segments.Segment[I], d *LaunchDims, mapUnits bool) *laneState[P, I] {
	st := &laneState[P, I]{
		lane:        lane,
		segs:        slices.Clone(segs),
		idx:         make([]I, len(segs)),
		mapUnits:    mapUnits,
		groupCoords: make([]int, len(d.GroupRadices)),
		groupBound:  make([]bool, len(d.GroupRadices)),
	}
	if mapUnits {
		st.unitCoords = make([]int, len(d.UnitRadices))
		st.unitBound = make([]bool, len(d.UnitRadices))
	}
	return st
}

func (st *laneState[P, I]) run(stmts []Statement[P, I], groupAxis, unitAxis int) {
	for _, stmt := range stmts {
		stmt.run(st, groupAxis, unitAxis)
	}
}

// mapped runs fn(pos) for the lane's positions among extent positions, according to mapping.
// fn receives the axes to use for the inner statements.
func (st *laneState[P, I]) mapped(mapping Mapping, extent, groupAxis, unitAxis int, fn func(pos, groupAxis, unitAxis int)) {
	if mapping == MapUnits && !st.mapUnits {
		mapping = MapSeq
	}
	switch mapping {
	case MapSeq:
		for pos := range extent {
			fn(pos, groupAxis, unitAxis)
		}
	case MapGroups:
		pos := st.groupCoords[groupAxis]
		if pos >= extent {
			return
		}
		st.groupBound[groupAxis] = true
		fn(pos, groupAxis+1, unitAxis)
		st.groupBound[groupAxis] = false
	case MapUnits:
		pos := st.unitCoords[unitAxis]
		if pos >= extent {
			return
		}
		st.unitBound[unitAxis] = true
		fn(pos, groupAxis, unitAxis+1)
		st.unitBound[unitAxis] = false
	default:
		exceptions.Panicf("tiling: unknown mapping %s", mapping)
	}
}

func (s *forStmt[P, I]) run(st *laneState[P, I], groupAxis, unitAxis int) {
	seg := st.segs[s.dim]
	st.mapped(s.mapping, seg.Len(), groupAxis, unitAxis, func(pos, groupAxis, unitAxis int) {
		st.idx[s.dim] = seg.At(pos)
		st.run(s.body, groupAxis, unitAxis)
	})
}

func (s *tileStmt[P, I]) run(st *laneState[P, I], groupAxis, unitAxis int) {
	seg := st.segs[s.dim]
	st.mapped(s.mapping, NumTiles(seg.Len(), s.chunk), groupAxis, unitAxis, func(tile, groupAxis, unitAxis int) {
		st.segs[s.dim] = seg.Slice(tile*s.chunk, s.chunk)
		st.run(s.body, groupAxis, unitAxis)
	})
	st.segs[s.dim] = seg
}

// run calls the lambda only if the lane is at coordinate 0 of every axis not mapped by an enclosing
// statement, so it runs once per combination of the enclosing loops' positions.
func (s *lambdaStmt[P, I]) run(st *laneState[P, I], _, _ int) {
	for axis, c := range st.groupCoords {
		if c != 0 && !st.groupBound[axis] {
			return
		}
	}
	for axis, c := range st.unitCoords {
		if c != 0 && !st.unitBound[axis] {
			return
		}
	}
	s.fn(st.lane, st.idx)
}
