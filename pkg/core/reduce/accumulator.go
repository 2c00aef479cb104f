package reduce

import (
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/pkg/core/resources"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// accumulator holds the partial values of one launch.
type accumulator[T Number] interface {
	add(lane backends.Lane, e entry[T])
	groupDone(group int)

	// final combines all partial values. The boolean is false if nothing was contributed.
	final() (entry[T], bool)

	release()
}

// cell is a partial value that may be empty.
type cell[T Number] struct {
	e  entry[T]
	ok bool
}

func (c *cell[T]) merge(combine combineFn[T], e entry[T]) {
	if c.ok {
		c.e = combine(c.e, e)
		return
	}
	c.e, c.ok = e, true
}

// foldCells combines cells pairwise with strides halving from the largest power of 2 below len(cells),
// leaving the result in cells[0].
func foldCells[T Number](combine combineFn[T], cells []cell[T]) {
	n := len(cells)
	if n <= 1 {
		return
	}
	for stride := 1 << (bits.Len(uint(n-1)) - 1); stride > 0; stride >>= 1 {
		for i := 0; i < stride && i+stride < n; i++ {
			if src := cells[i+stride]; src.ok {
				cells[i].merge(combine, src.e)
			}
		}
	}
}

func newAccumulator[T Number](name string, strategy backends.ReduceStrategy, combine combineFn[T], g backends.Geometry) (accumulator[T], error) {
	switch strategy {
	case backends.ReduceSlots:
		return &slotsAccumulator[T]{combine: combine, slots: make([]cell[T], g.Slots)}, nil
	case backends.ReduceAtomic:
		alloc, err := reserve(name, g.Memory, int64(unsafe.Sizeof(entry[T]{})))
		if err != nil {
			return nil, err
		}
		return &atomicAccumulator[T]{combine: combine, alloc: alloc}, nil
	case backends.ReduceTree:
		alloc, err := reserve(name, g.Memory, int64(g.Groups)*int64(unsafe.Sizeof(cell[T]{})))
		if err != nil {
			return nil, err
		}
		return &treeAccumulator[T]{
			combine:   combine,
			groupSize: g.GroupSize,
			shared:    make([]cell[T], g.Slots),
			scratch:   make([]cell[T], g.Groups),
			alloc:     alloc,
		}, nil
	default:
		return nil, errors.Errorf("%s: unknown reduce strategy %s", name, strategy)
	}
}

// reserve allocates scratch bytes in mem, if it is set.
func reserve(name string, mem resources.Resource, bytes int64) (*resources.Allocation, error) {
	if mem == nil {
		return nil, nil
	}
	alloc, err := mem.Allocate(bytes)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: failed to allocate reduction scratch", name)
	}
	if klog.V(2).Enabled() {
		klog.Infof("%s: allocated %s of %s scratch", name, humanize.IBytes(uint64(bytes)), mem.Space())
	}
	return alloc, nil
}

// slotsAccumulator keeps one partial value per lane slot. Lanes never share a slot, so no locking is needed.
type slotsAccumulator[T Number] struct {
	combine combineFn[T]
	slots   []cell[T]
}

func (a *slotsAccumulator[T]) add(lane backends.Lane, e entry[T]) {
	a.slots[lane.Slot].merge(a.combine, e)
}

func (a *slotsAccumulator[T]) groupDone(int) {}

func (a *slotsAccumulator[T]) final() (entry[T], bool) {
	var result cell[T]
	for _, c := range a.slots {
		if c.ok {
			result.merge(a.combine, c.e)
		}
	}
	return result.e, result.ok
}

func (a *slotsAccumulator[T]) release() { a.slots = nil }

// atomicAccumulator combines every contribution into a single boxed value with a compare-and-swap loop.
// Value and location are swapped together.
type atomicAccumulator[T Number] struct {
	combine combineFn[T]
	value   atomic.Pointer[entry[T]]
	alloc   *resources.Allocation
}

func (a *atomicAccumulator[T]) add(_ backends.Lane, e entry[T]) {
	for {
		current := a.value.Load()
		next := e
		if current != nil {
			next = a.combine(*current, e)
			if next == *current {
				return
			}
		}
		if a.value.CompareAndSwap(current, &next) {
			return
		}
	}
}

func (a *atomicAccumulator[T]) groupDone(int) {}

func (a *atomicAccumulator[T]) final() (entry[T], bool) {
	current := a.value.Load()
	if current == nil {
		return entry[T]{}, false
	}
	return *current, true
}

func (a *atomicAccumulator[T]) release() { a.alloc.Release() }

// treeAccumulator keeps one shared slot per unit. When a group finishes its slots are combined
// by pairwise halving into the group's scratch partial, and at the end of the launch the partials
// of all groups are combined the same way.
type treeAccumulator[T Number] struct {
	combine   combineFn[T]
	groupSize int
	shared    []cell[T]
	scratch   []cell[T]
	alloc     *resources.Allocation
}

func (a *treeAccumulator[T]) add(lane backends.Lane, e entry[T]) {
	a.shared[lane.Slot].merge(a.combine, e)
}

func (a *treeAccumulator[T]) groupDone(group int) {
	start := group * a.groupSize
	end := min(start+a.groupSize, len(a.shared))
	if start >= end {
		return
	}
	units := a.shared[start:end]
	foldCells(a.combine, units)
	a.scratch[group] = units[0]
}

func (a *treeAccumulator[T]) final() (entry[T], bool) {
	if len(a.scratch) == 0 {
		return entry[T]{}, false
	}
	foldCells(a.combine, a.scratch)
	return a.scratch[0].e, a.scratch[0].ok
}

func (a *treeAccumulator[T]) release() {
	a.shared, a.scratch = nil, nil
	a.alloc.Release()
}
