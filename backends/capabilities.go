package backends

import "maps"

// Capabilities holds what is supported by an executor.
type Capabilities struct {
	// MaxGroupSize is the largest number of execution units per group (e.g. threads per block).
	MaxGroupSize int

	// Async is true if launches can return before completion.
	Async bool

	// NestedLaunch is true if a loop body may itself dispatch loops on the same executor.
	// Accelerators only nest through the tiling layer.
	NestedLaunch bool

	// ReduceStrategies supported by the executor.
	// If not listed, it's assumed to be false, hence not supported.
	ReduceStrategies map[ReduceStrategy]bool
}

// Clone makes a deep copy of the Capabilities.
func (c Capabilities) Clone() Capabilities {
	c2 := c
	c2.ReduceStrategies = make(map[ReduceStrategy]bool, len(c.ReduceStrategies))
	maps.Copy(c2.ReduceStrategies, c.ReduceStrategies)
	return c2
}
