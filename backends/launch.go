package backends

import (
	"fmt"

	"github.com/gomlx/forall/pkg/core/resources"
)

// Kind of executor.
type Kind int

const (
	// Sequential executors run every position on the calling goroutine, in ascending order.
	Sequential Kind = iota

	// HostParallel executors fork the positions over host workers and join before returning.
	HostParallel

	// Device executors run the positions on an accelerator, as a grid of groups of units.
	Device
)

//go:generate go tool enumer -type=Kind -output=gen_kind_enumer.go launch.go

// ReduceStrategy is how reductions bound to a policy accumulate partial values.
type ReduceStrategy int

const (
	// ReduceSlots keeps one partial value per lane slot, combined when the launch ends. No locking.
	ReduceSlots ReduceStrategy = iota

	// ReduceAtomic combines every contribution directly into one shared value with compare-and-swap.
	ReduceAtomic

	// ReduceTree combines per-unit partial values within each group (pairwise halving), keeps one
	// partial per group in scratch memory, and combines those in a second pass when the launch ends.
	ReduceTree
)

//go:generate go tool enumer -type=ReduceStrategy -trimprefix=Reduce -output=gen_reducestrategy_enumer.go launch.go

// LaunchConfig holds the per-policy launch parameters.
type LaunchConfig struct {
	// GroupSize is the number of execution units per group (e.g. threads per block).
	// 0 means the executor's default.
	GroupSize int

	// Async launches may return before completion.
	Async bool
}

// Geometry is the launch descriptor of one loop: ephemeral, created per dispatch call.
type Geometry struct {
	// N is the number of logical positions to run.
	N int

	// Groups is the number of groups of execution units.
	Groups int

	// GroupSize is the number of execution units per group.
	GroupSize int

	// Slots is the number of lane slots: each Lane.Slot is in [0, Slots), and no two concurrently
	// executing lanes share a slot.
	Slots int

	// Async is set if Launch may return before completion.
	Async bool

	// Memory is where per-launch scratch buffers are allocated.
	Memory resources.Resource

	// Executor that planned this geometry.
	Executor Executor
}

// String implements fmt.Stringer.
func (g Geometry) String() string {
	return fmt.Sprintf("Geometry{N=%d, Groups=%d, GroupSize=%d, Slots=%d, Async=%v}",
		g.N, g.Groups, g.GroupSize, g.Slots, g.Async)
}

// Lane identifies the execution unit running one iteration.
type Lane struct {
	// Group of the unit, in [0, Geometry.Groups).
	Group int

	// Rank of the unit within its group, in [0, Geometry.GroupSize).
	Rank int

	// Slot private to this lane for the duration of the launch, in [0, Geometry.Slots).
	Slot int
}

// Participant is notified by an executor around a launch. Reductions are participants.
type Participant interface {
	// Begin is called before any position runs. It may allocate per-launch scratch in g.Memory.
	Begin(g Geometry) error

	// GroupDone is called once every unit of the group finished, before End.
	// Different groups may call it concurrently.
	GroupDone(group int)

	// End is called once after the whole launch finished.
	End()
}

// BeginAll calls Begin on each participant. If one fails, with an error or a panic, End is called on
// the ones that already began, and the error (or panic) is propagated.
func BeginAll(g Geometry, parts []Participant) error {
	began := 0
	defer func() {
		if began < len(parts) {
			EndAll(parts[:began])
		}
	}()
	for _, part := range parts {
		if err := part.Begin(g); err != nil {
			return err
		}
		began++
	}
	return nil
}

// GroupDoneAll calls GroupDone(group) on each participant.
func GroupDoneAll(group int, parts []Participant) {
	for _, part := range parts {
		part.GroupDone(group)
	}
}

// EndAll calls End on each participant.
func EndAll(parts []Participant) {
	for _, part := range parts {
		part.End()
	}
}

// FirstIndex returns the first of n items assigned to worker pid when they are evenly partitioned
// over p workers. Worker pid gets [FirstIndex(n, p, pid), FirstIndex(n, p, pid+1)).
func FirstIndex(n, p, pid int) int {
	return int(int64(n) * int64(pid) / int64(p))
}
