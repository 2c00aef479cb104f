package forall

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/pkg/core/segments"
	"github.com/pkg/errors"
)

// SegmentOrder is how the segments of an IndexSet are dispatched relative to each other.
type SegmentOrder int

const (
	// SeqSegments dispatches the segments one after the other, in insertion order. Each segment is
	// dispatched with its own inner policy (if it has one) or the policy given to ForallIndexSet,
	// so iterations within a segment may run in parallel.
	SeqSegments SegmentOrder = iota

	// ParallelSegments dispatches the segments concurrently, over the lanes of a host policy.
	// Each segment is iterated sequentially, in order, by the lane that runs it.
	ParallelSegments
)

//go:generate go tool enumer -type=SegmentOrder -output=gen_segmentorder_enumer.go indexset.go

// ForallIndexSet invokes body once for each index of every segment in iset.
//
// It panics on errors, see ForallIndexSetOrError.
func ForallIndexSet[P backends.Policy, I segments.Integer](p P, order SegmentOrder, iset *segments.IndexSet[I],
	body func(lane Lane[P], idx I), reducers ...Reducer[P]) {
	if err := ForallIndexSetOrError(p, order, iset, body, reducers...); err != nil {
		panic(err)
	}
}

// ForallIndexSetOrError is like ForallIndexSet, but returns resource errors instead of panicking.
//
// Segments with an inner policy must have one of type P. With ParallelSegments the policy must run on a
// host (sequential or host-parallel) executor, and inner policies, if given, must be sequential:
// device policies only nest through the tiling package.
func ForallIndexSetOrError[P backends.Policy, I segments.Integer](p P, order SegmentOrder, iset *segments.IndexSet[I],
	body func(lane Lane[P], idx I), reducers ...Reducer[P]) error {
	switch order {
	case SeqSegments:
		for i := range iset.NumSegments() {
			segPolicy := innerPolicy(p, iset, i)
			if err := ForallOrError(segPolicy, iset.Segment(i), body, reducers...); err != nil {
				return errors.WithMessagef(err, "forall: segment #%d of %d", i, iset.NumSegments())
			}
		}
		return nil

	case ParallelSegments:
		exec := executorOf(p)
		if exec.Kind() == backends.Device {
			exceptions.Panicf("forall: ParallelSegments requires a host policy, got %s", exec.Name())
		}
		for i := range iset.NumSegments() {
			if iset.Policy(i) == nil {
				continue
			}
			if ip := innerPolicy(p, iset, i); ip.Executor().Kind() != backends.Sequential {
				exceptions.Panicf("forall: ParallelSegments with a %s inner policy on segment #%d, only sequential ones are supported",
					ip.Executor().Name(), i)
			}
		}
		g := exec.Plan(iset.NumSegments(), p.LaunchConfig())
		for i := range iset.NumSegments() {
			checkResidency(iset.Segment(i), g)
		}
		return launch(exec, g, func(lane Lane[P], pos int) {
			seg := iset.Segment(pos)
			n := seg.Len()
			for segPos := range n {
				body(lane, seg.At(segPos))
			}
		}, reducers)

	default:
		exceptions.Panicf("forall: unknown segment order %d", order)
	}
	return nil
}

// innerPolicy returns the inner policy of the i-th segment of iset, or p if it has none.
func innerPolicy[P backends.Policy, I segments.Integer](p P, iset *segments.IndexSet[I], i int) P {
	ip := iset.Policy(i)
	if ip == nil {
		return p
	}
	typed, ok := ip.(P)
	if !ok {
		exceptions.Panicf("forall: segment #%d has inner policy %T, incompatible with the loop policy %T", i, ip, p)
	}
	return typed
}
