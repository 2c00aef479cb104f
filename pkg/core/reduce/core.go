package reduce

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/pkg/core/forall"
)

// core is the state shared by all reduction types: the running total and the accumulator of the
// launch the reduction is currently bound to.
type core[P backends.Policy, T Number] struct {
	kind     Kind
	policy   P
	exec     backends.Executor
	strategy backends.ReduceStrategy
	combine  combineFn[T]

	acc atomic.Pointer[accumulator[T]]

	mu    sync.Mutex
	total entry[T]
}

func newCore[P backends.Policy, T Number](kind Kind, p P, init entry[T]) *core[P, T] {
	if any(p) == nil {
		exceptions.Panicf("reduce: %s created with a nil policy", kind)
	}
	c := &core[P, T]{
		kind:     kind,
		policy:   p,
		exec:     p.Executor(),
		strategy: p.ReduceStrategy(),
		combine:  combineFor[T](kind),
		total:    init,
	}
	if !c.exec.Capabilities().ReduceStrategies[c.strategy] {
		exceptions.Panicf("reduce: executor %s doesn't support the %s reduce strategy", c.exec.Name(), c.strategy)
	}
	return c
}

// String implements fmt.Stringer.
func (c *core[P, T]) String() string {
	return fmt.Sprintf("reduce.%s[%T](%v, %s)", c.kind, c.total.value, c.policy, c.strategy)
}

// Policy returns the policy the reduction was created for. It implements forall.Reducer.
func (c *core[P, T]) Policy() P { return c.policy }

// Begin implements backends.Participant: it binds the reduction to a new launch.
// A reduction can only be bound to one launch at a time, and only to launches of its own executor.
func (c *core[P, T]) Begin(g backends.Geometry) error {
	if g.Executor != c.exec {
		exceptions.Panicf("%s: bound to a launch on %v, but it was created for %s", c, g.Executor, c.exec.Name())
	}
	acc, err := newAccumulator(c.String(), c.strategy, c.combine, g)
	if err != nil {
		return err
	}
	if !c.acc.CompareAndSwap(nil, &acc) {
		acc.release()
		exceptions.Panicf("%s: already bound to another launch running concurrently", c)
	}
	return nil
}

// GroupDone implements backends.Participant.
func (c *core[P, T]) GroupDone(group int) {
	(*c.accumulator()).groupDone(group)
}

// End implements backends.Participant: it merges the launch's partial values into the total.
func (c *core[P, T]) End() {
	accPtr := c.acc.Swap(nil)
	if accPtr == nil {
		return
	}
	acc := *accPtr
	if e, ok := acc.final(); ok {
		c.mu.Lock()
		c.total = c.combine(c.total, e)
		c.mu.Unlock()
	}
	acc.release()
}

func (c *core[P, T]) accumulator() *accumulator[T] {
	acc := c.acc.Load()
	if acc == nil {
		exceptions.Panicf("%s: not bound to the running loop, it must be passed to the dispatch call", c)
	}
	return acc
}

func (c *core[P, T]) add(lane forall.Lane[P], e entry[T]) {
	(*c.accumulator()).add(lane.Lane, e)
}

// get waits for pending launches of the executor and returns the total.
func (c *core[P, T]) get() entry[T] {
	c.exec.Synchronize()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *core[P, T]) reset(init entry[T]) {
	c.exec.Synchronize()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = init
}

// Sum reduction: it adds all contributions to the initial value.
type Sum[P backends.Policy, T Number] struct {
	*core[P, T]
}

// NewSum creates a Sum reduction for loops with policy p.
func NewSum[P backends.Policy, T Number](p P, init T) *Sum[P, T] {
	return &Sum[P, T]{newCore(KindSum, p, entry[T]{value: init})}
}

// Add contributes v to the sum.
func (r *Sum[P, T]) Add(lane forall.Lane[P], v T) { r.add(lane, entry[T]{value: v}) }

// Get returns the sum, after waiting for pending launches.
func (r *Sum[P, T]) Get() T { return r.get().value }

// Reset sets the value of the reduction to init.
func (r *Sum[P, T]) Reset(init T) { r.reset(entry[T]{value: init}) }

// Min reduction: the minimum of the initial value and all contributions.
type Min[P backends.Policy, T Number] struct {
	*core[P, T]
}

// NewMin creates a Min reduction for loops with policy p.
func NewMin[P backends.Policy, T Number](p P, init T) *Min[P, T] {
	return &Min[P, T]{newCore(KindMin, p, entry[T]{value: init})}
}

// Combine contributes v.
func (r *Min[P, T]) Combine(lane forall.Lane[P], v T) { r.add(lane, entry[T]{value: v}) }

// Get returns the minimum, after waiting for pending launches.
func (r *Min[P, T]) Get() T { return r.get().value }

// Reset sets the value of the reduction to init.
func (r *Min[P, T]) Reset(init T) { r.reset(entry[T]{value: init}) }

// Max reduction: the maximum of the initial value and all contributions.
type Max[P backends.Policy, T Number] struct {
	*core[P, T]
}

// NewMax creates a Max reduction for loops with policy p.
func NewMax[P backends.Policy, T Number](p P, init T) *Max[P, T] {
	return &Max[P, T]{newCore(KindMax, p, entry[T]{value: init})}
}

// Combine contributes v.
func (r *Max[P, T]) Combine(lane forall.Lane[P], v T) { r.add(lane, entry[T]{value: v}) }

// Get returns the maximum, after waiting for pending launches.
func (r *Max[P, T]) Get() T { return r.get().value }

// Reset sets the value of the reduction to init.
func (r *Max[P, T]) Reset(init T) { r.reset(entry[T]{value: init}) }

// MinLoc reduction: the minimum value and its location.
//
// If the minimum is reached at more than one location, the lowest location is kept, for every policy.
type MinLoc[P backends.Policy, T Number] struct {
	*core[P, T]
}

// NewMinLoc creates a MinLoc reduction for loops with policy p, with initial value init at location loc.
func NewMinLoc[P backends.Policy, T Number](p P, init T, loc int) *MinLoc[P, T] {
	return &MinLoc[P, T]{newCore(KindMinLoc, p, entry[T]{value: init, loc: loc})}
}

// CombineLoc contributes value v found at location loc.
func (r *MinLoc[P, T]) CombineLoc(lane forall.Lane[P], v T, loc int) {
	r.add(lane, entry[T]{value: v, loc: loc})
}

// Get returns the minimum value, after waiting for pending launches.
func (r *MinLoc[P, T]) Get() T { return r.get().value }

// GetLoc returns the minimum value and its location, after waiting for pending launches.
func (r *MinLoc[P, T]) GetLoc() (T, int) {
	e := r.get()
	return e.value, e.loc
}

// Reset sets the value of the reduction to init at location loc.
func (r *MinLoc[P, T]) Reset(init T, loc int) { r.reset(entry[T]{value: init, loc: loc}) }

// MaxLoc reduction: the maximum value and its location.
//
// If the maximum is reached at more than one location, the lowest location is kept, for every policy.
type MaxLoc[P backends.Policy, T Number] struct {
	*core[P, T]
}

// NewMaxLoc creates a MaxLoc reduction for loops with policy p, with initial value init at location loc.
func NewMaxLoc[P backends.Policy, T Number](p P, init T, loc int) *MaxLoc[P, T] {
	return &MaxLoc[P, T]{newCore(KindMaxLoc, p, entry[T]{value: init, loc: loc})}
}

// CombineLoc contributes value v found at location loc.
func (r *MaxLoc[P, T]) CombineLoc(lane forall.Lane[P], v T, loc int) {
	r.add(lane, entry[T]{value: v, loc: loc})
}

// Get returns the maximum value, after waiting for pending launches.
func (r *MaxLoc[P, T]) Get() T { return r.get().value }

// GetLoc returns the maximum value and its location, after waiting for pending launches.
func (r *MaxLoc[P, T]) GetLoc() (T, int) {
	e := r.get()
	return e.value, e.loc
}

// Reset sets the value of the reduction to init at location loc.
func (r *MaxLoc[P, T]) Reset(init T, loc int) { r.reset(entry[T]{value: init, loc: loc}) }

var (
	_ forall.Reducer[backends.Policy] = (*Sum[backends.Policy, float64])(nil)
	_ forall.Reducer[backends.Policy] = (*MinLoc[backends.Policy, int])(nil)
)
