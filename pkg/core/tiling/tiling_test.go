package tiling_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/gomlx/forall/backends"
	"github.com/gomlx/forall/backends/device"
	"github.com/gomlx/forall/backends/host"
	"github.com/gomlx/forall/backends/seq"
	"github.com/gomlx/forall/pkg/core/forall"
	"github.com/gomlx/forall/pkg/core/reduce"
	"github.com/gomlx/forall/pkg/core/segments"
	"github.com/gomlx/forall/pkg/core/tiling"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTilesExactness(t *testing.T) {
	list, err := segments.NewList([]int{4, 8, 15, 16, 23, 42, 7}, nil)
	require.NoError(t, err)
	defer list.Release()
	for _, seg := range []segments.Segment[int]{
		segments.NewRange(0, 1),
		segments.NewRange(3, 20),
		segments.NewRange(0, 1000),
		segments.NewStrided(100, 0, -3),
		list,
	} {
		length := seg.Len()
		for _, chunk := range []int{1, 2, max(length/2, 1), length, length + 1} {
			tiles := tiling.Tiles(seg, chunk)
			require.Len(t, tiles, (length+chunk-1)/chunk, "%v, chunk=%d", seg, chunk)
			assert.Equal(t, len(tiles), tiling.NumTiles(length, chunk))
			var concat []int
			for i, tile := range tiles {
				assert.Equal(t, seg.Kind(), tile.Kind())
				assert.LessOrEqual(t, tile.Len(), chunk)
				if i < len(tiles)-1 {
					assert.Equal(t, chunk, tile.Len())
				}
				concat = append(concat, segments.Collect(tile)...)
			}
			assert.Equal(t, segments.Collect(seg), concat, "%v, chunk=%d", seg, chunk)
			if chunk >= length {
				assert.Len(t, tiles, 1)
			}
		}
	}
}

func TestInvalidChunk(t *testing.T) {
	for _, fn := range []func(){
		func() { tiling.NumTiles(10, 0) },
		func() { tiling.NumTiles(-1, 4) },
		func() { tiling.Tiles[int](segments.NewRange(0, 10), -2) },
		func() { tiling.Tile[seq.Policy, int](0, 0, tiling.MapSeq) },
	} {
		err := catchError(fn)
		require.Error(t, err)
		assert.True(t, errors.Is(err, tiling.ErrInvalidChunk), "got %v", err)
	}
	assert.Equal(t, 0, tiling.NumTiles(0, 8))
}

func catchError(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	fn()
	return nil
}

func TestLaunchDims(t *testing.T) {
	type P = device.Policy
	noop := tiling.Lambda(func(forall.Lane[P], []int) {})
	segs := []segments.Segment[int]{segments.NewRange(0, 100), segments.NewRange(0, 30)}

	// Rows tiled in blocks of 16 rows, one thread per row of the tile and per column.
	k := tiling.NewKernel(
		tiling.Tile[P, int](0, 16, tiling.MapGroups,
			tiling.For[P, int](0, tiling.MapUnits,
				tiling.For[P, int](1, tiling.MapUnits, noop))))
	assert.Equal(t, 2, k.NumDims())
	d := k.LaunchDims(segs, 1024)
	assert.Equal(t, 7, d.Groups)
	assert.Equal(t, 16*30, d.GroupSize)
	assert.Equal(t, []int{7}, d.GroupRadices)
	assert.Equal(t, []int{16, 30}, d.UnitRadices)
	assert.Panics(t, func() { k.LaunchDims(segs, 256) })

	// Siblings share their axis.
	k = tiling.NewKernel(
		tiling.For[P, int](0, tiling.MapGroups, noop),
		tiling.For[P, int](1, tiling.MapGroups, tiling.For[P, int](0, tiling.MapSeq, noop)))
	d = k.LaunchDims(segs, 0)
	assert.Equal(t, 100, d.Groups)
	assert.Equal(t, 1, d.GroupSize)

	// Segments are not modified by the dimensions pass.
	assert.Equal(t, 100, segs[0].Len())

	// Missing segments.
	assert.Panics(t, func() { k.LaunchDims(segs[:1], 0) })
}

// matrixKernels returns kernels that visit every (row, col) of a matrix, with different mappings.
func matrixKernels[P backends.Policy](body func(lane forall.Lane[P], idx []int)) map[string]*tiling.Kernel[P, int] {
	lambda := tiling.Lambda(body)
	return map[string]*tiling.Kernel[P, int]{
		"seq": tiling.NewKernel(
			tiling.For[P, int](0, tiling.MapSeq, tiling.For[P, int](1, tiling.MapSeq, lambda))),
		"groups-units": tiling.NewKernel(
			tiling.For[P, int](0, tiling.MapGroups, tiling.For[P, int](1, tiling.MapUnits, lambda))),
		"tile-groups": tiling.NewKernel(
			tiling.Tile[P, int](1, 8, tiling.MapGroups,
				tiling.For[P, int](0, tiling.MapGroups,
					tiling.For[P, int](1, tiling.MapUnits, lambda)))),
		"tile-units": tiling.NewKernel(
			tiling.Tile[P, int](0, 5, tiling.MapGroups,
				tiling.Tile[P, int](1, 4, tiling.MapUnits,
					tiling.For[P, int](0, tiling.MapUnits,
						tiling.For[P, int](1, tiling.MapSeq, lambda))))),
		"tile-seq": tiling.NewKernel(
			tiling.Tile[P, int](0, 3, tiling.MapSeq,
				tiling.For[P, int](0, tiling.MapGroups,
					tiling.For[P, int](1, tiling.MapUnits, lambda)))),
	}
}

// checkMatrixCoverage runs every kernel of matrixKernels and checks each (row, col) is visited exactly
// once, and that a sum reduction over the kernel matches.
func checkMatrixCoverage[P backends.Policy](t *testing.T, p P) {
	const rows, cols = 23, 37
	segs := []segments.Segment[int]{segments.NewRange(0, rows), segments.NewStrided(cols-1, -1, -1)}
	var counts [rows * cols]atomic.Int32
	var sum *reduce.Sum[P, int]
	kernels := matrixKernels(func(lane forall.Lane[P], idx []int) {
		counts[idx[0]*cols+idx[1]].Add(1)
		sum.Add(lane, idx[0]*cols+idx[1])
	})
	for name, k := range kernels {
		for i := range counts {
			counts[i].Store(0)
		}
		sum = reduce.NewSum(p, 0)
		tiling.Run(p, k, segs, sum)
		assert.Equal(t, (rows*cols-1)*rows*cols/2, sum.Get(), "%v, kernel %s", p, name)
		for i := range counts {
			require.Equal(t, int32(1), counts[i].Load(), "%v, kernel %s, position (%d, %d)", p, name, i/cols, i%cols)
		}
	}
}

func TestKernelCoverage(t *testing.T) {
	checkMatrixCoverage(t, seq.Policy{})
	checkMatrixCoverage(t, host.Policy{Workers: 4})
	checkMatrixCoverage(t, device.Policy{})
	checkMatrixCoverage(t, device.Policy{Atomic: true})
	checkMatrixCoverage(t, device.Policy{Async: true})
}

func TestKernelSequentialOrder(t *testing.T) {
	type P = seq.Policy
	var visited []string
	k := tiling.NewKernel(
		tiling.Tile[P, int](0, 2, tiling.MapSeq,
			tiling.For[P, int](0, tiling.MapSeq,
				tiling.Lambda(func(_ forall.Lane[P], idx []int) {
					visited = append(visited, fmt.Sprint(idx[0]))
				}))),
		tiling.Lambda(func(_ forall.Lane[P], _ []int) { visited = append(visited, "end") }))
	tiling.Run(P{}, k, []segments.Segment[int]{segments.NewRange(10, 15)})
	assert.Equal(t, []string{"10", "11", "12", "13", "14", "end"}, visited)
}

// TestTileSubstitution checks inner statements see the tile as an ordinary segment, and the parent
// segment is restored afterwards.
func TestTileSubstitution(t *testing.T) {
	type P = seq.Policy
	seg := segments.NewRange(0, 10)
	var inTiles int
	var after []int
	k := tiling.NewKernel(
		tiling.Tile[P, int](0, 4, tiling.MapSeq,
			tiling.For[P, int](0, tiling.MapSeq,
				tiling.Lambda(func(_ forall.Lane[P], idx []int) { inTiles++ }))),
		tiling.For[P, int](0, tiling.MapSeq,
			tiling.Lambda(func(_ forall.Lane[P], idx []int) { after = append(after, idx[0]) })))
	tiling.Run(P{}, k, []segments.Segment[int]{seg})
	assert.Equal(t, 10, inTiles)
	assert.Equal(t, segments.Collect[int](seg), after)
}

func TestKernelEmpty(t *testing.T) {
	type P = device.Policy
	var called atomic.Bool
	k := tiling.NewKernel(tiling.Tile[P, int](0, 32, tiling.MapGroups,
		tiling.For[P, int](0, tiling.MapUnits, tiling.Lambda(func(forall.Lane[P], []int) { called.Store(true) }))))
	sum := reduce.NewSum(P{}, 5)
	tiling.Run(P{}, k, []segments.Segment[int]{segments.NewRange(0, 0)}, sum)
	assert.False(t, called.Load())
	assert.Equal(t, 5, sum.Get())
}

func TestKernelGroupSizeLimit(t *testing.T) {
	dev := device.NewDevice(device.Config{Parallelism: 2, MaxGroupSize: 64})
	defer dev.Finalize()
	type P = device.Policy
	k := tiling.NewKernel(tiling.For[P, int](0, tiling.MapUnits, tiling.Lambda(func(forall.Lane[P], []int) {})))
	segs := []segments.Segment[int]{segments.NewRange(0, 100)}
	assert.Panics(t, func() { tiling.Run(P{Device: dev}, k, segs) })

	// Tiling brings it within the limit.
	var count atomic.Int32
	k = tiling.NewKernel(tiling.Tile[P, int](0, 64, tiling.MapGroups,
		tiling.For[P, int](0, tiling.MapUnits, tiling.Lambda(func(forall.Lane[P], []int) { count.Add(1) }))))
	require.NoError(t, tiling.RunOrError(P{Device: dev}, k, segs))
	assert.Equal(t, int32(100), count.Load())
}

func TestKernelListResidency(t *testing.T) {
	dev := device.NewDevice(device.DefaultDeviceConfig())
	defer dev.Finalize()
	hostList, err := segments.NewList([]int{5, 1, 3}, nil)
	require.NoError(t, err)
	defer hostList.Release()
	devList, err := segments.NewList([]int{5, 1, 3}, dev)
	require.NoError(t, err)
	defer devList.Release()

	var visited atomic.Int32
	k := tiling.NewKernel(tiling.For[device.Policy, int](0, tiling.MapUnits,
		tiling.Lambda(func(forall.Lane[device.Policy], []int) { visited.Add(1) })))
	p := device.Policy{Device: dev, GroupSize: 32}
	assert.Panics(t, func() { tiling.Run(p, k, []segments.Segment[int]{hostList}) })
	tiling.Run(p, k, []segments.Segment[int]{devList})
	dev.Synchronize()
	assert.Equal(t, int32(3), visited.Load())
}
