package backends

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions("test", "group=128, async ,memory=1KiB")
	require.NoError(t, err)

	group, err := opts.Int("group", 256)
	require.NoError(t, err)
	assert.Equal(t, 128, group)

	workers, err := opts.Int("workers", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, workers)

	async, err := opts.Bool("async")
	require.NoError(t, err)
	assert.True(t, async)

	mem, err := opts.Bytes("memory", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), mem)
	require.NoError(t, opts.CheckAllUsed())

	opts, err = ParseOptions("test", "group=abc,foo")
	require.NoError(t, err)
	_, err = opts.Int("group", 0)
	require.Error(t, err)
	require.Error(t, opts.CheckAllUsed())

	_, err = ParseOptions("test", "a=1,a=2")
	require.Error(t, err)
}

func TestFirstIndex(t *testing.T) {
	// Partitions are contiguous, cover everything and differ in size by at most 1.
	for _, n := range []int{0, 1, 7, 100, 1001} {
		for _, p := range []int{1, 2, 3, 8} {
			assert.Equal(t, 0, FirstIndex(n, p, 0))
			assert.Equal(t, n, FirstIndex(n, p, p))
			for pid := range p {
				size := FirstIndex(n, p, pid+1) - FirstIndex(n, p, pid)
				assert.GreaterOrEqual(t, size, n/p)
				assert.LessOrEqual(t, size, n/p+1)
			}
		}
	}
}
