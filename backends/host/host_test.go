package host

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gomlx/forall/backends"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	e := NewExecutor(4)
	g := e.Plan(1000, backends.LaunchConfig{GroupSize: 8})
	assert.Equal(t, 8, g.Groups)
	assert.Equal(t, 8, g.Slots)
	assert.Equal(t, 1, g.GroupSize)

	// Never more partitions than positions.
	g = e.Plan(3, backends.LaunchConfig{GroupSize: 8})
	assert.Equal(t, 3, g.Groups)
	g = e.Plan(0, backends.LaunchConfig{GroupSize: 8})
	assert.Equal(t, 1, g.Groups)
}

// groupCounter checks every group finishes once.
type groupCounter struct {
	mu     sync.Mutex
	groups map[int]int
	begun  bool
	ended  bool
}

func (c *groupCounter) Begin(backends.Geometry) error {
	c.begun = true
	c.groups = make(map[int]int)
	return nil
}

func (c *groupCounter) GroupDone(group int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[group]++
}

func (c *groupCounter) End() { c.ended = true }

func TestLaunch(t *testing.T) {
	for _, workers := range []int{1, 3, 8, 64} {
		p := Policy{Host: NewExecutor(4), Workers: workers}
		exec := p.Executor()
		const n = 1001
		g := exec.Plan(n, p.LaunchConfig())
		counts := make([]atomic.Int32, n)
		slotOfPos := make([]int, n)
		parts := &groupCounter{}
		require.NoError(t, exec.Launch(g, func(lane backends.Lane, pos int) {
			counts[pos].Add(1)
			slotOfPos[pos] = lane.Slot
		}, parts))
		for pos := range counts {
			require.Equal(t, int32(1), counts[pos].Load(), "workers=%d, pos=%d", workers, pos)
		}
		// Each partition is contiguous and run by one slot.
		for pos := 1; pos < n; pos++ {
			require.GreaterOrEqual(t, slotOfPos[pos], slotOfPos[pos-1])
		}
		assert.True(t, parts.begun)
		assert.True(t, parts.ended)
		assert.Len(t, parts.groups, g.Groups)
	}
}

func TestNestedLaunch(t *testing.T) {
	p := Policy{Host: NewExecutor(2), Workers: 4}
	exec := p.Executor()
	var total atomic.Int64
	outer := exec.Plan(8, p.LaunchConfig())
	require.NoError(t, exec.Launch(outer, func(_ backends.Lane, i int) {
		inner := exec.Plan(100, p.LaunchConfig())
		assert.NoError(t, exec.Launch(inner, func(_ backends.Lane, j int) {
			total.Add(int64(j))
		}))
	}))
	assert.Equal(t, int64(8*4950), total.Load())
}

func TestNewWithOptions(t *testing.T) {
	p, err := NewWithOptions("workers=6")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Workers)
	assert.Same(t, Default(), p.Executor())
	assert.Equal(t, 6, p.LaunchConfig().GroupSize)
	assert.Equal(t, backends.ReduceSlots, p.ReduceStrategy())

	p, err = NewWithOptions("atomic,workers=2")
	require.NoError(t, err)
	assert.True(t, p.Atomic)
	assert.Equal(t, backends.ReduceAtomic, p.ReduceStrategy())
	assert.Equal(t, "host(workers=2,atomic)", p.String())
	assert.True(t, p.Executor().Capabilities().ReduceStrategies[p.ReduceStrategy()])

	p, err = NewWithOptions("parallelism=0")
	require.NoError(t, err)
	assert.NotSame(t, Default(), p.Executor())

	_, err = NewWithOptions("workers=-1")
	require.Error(t, err)
	_, err = NewWithOptions("group=4")
	require.Error(t, err)
}
