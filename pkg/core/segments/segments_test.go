package segments

import (
	"math"
	"slices"
	"testing"

	"github.com/gomlx/forall/backends/seq"
	"github.com/gomlx/forall/pkg/core/resources"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	r := NewRange(3, 8)
	assert.Equal(t, KindRange, r.Kind())
	assert.Equal(t, 5, r.Len())
	assert.Equal(t, []int{3, 4, 5, 6, 7}, Collect[int](r))
	assert.Equal(t, "Range[3, 8)", r.String())

	// Empty ranges.
	assert.Equal(t, 0, NewRange(5, 5).Len())
	assert.Equal(t, 0, NewRange(8, 3).Len())
	assert.Empty(t, Collect[int](NewRange(8, 3)))

	// Other integer types.
	r8 := NewRange[uint8](250, 255)
	assert.Equal(t, []uint8{250, 251, 252, 253, 254}, Collect[uint8](r8))
	r64 := NewRange[int64](-2, 1)
	assert.Equal(t, []int64{-2, -1, 0}, Collect[int64](r64))
}

// TestNarrowIndexTypes checks lengths don't overflow when the span exceeds the index type range.
func TestNarrowIndexTypes(t *testing.T) {
	r8 := NewRange[int8](-100, 100)
	require.Equal(t, 200, r8.Len())
	got8 := Collect[int8](r8)
	require.Len(t, got8, 200)
	assert.Equal(t, int8(-100), got8[0])
	assert.Equal(t, int8(99), got8[199])
	assert.Equal(t, int8(50), r8.At(150))
	assert.Equal(t, 256, NewRange[int8](-128, 127).Len()+1)

	assert.Equal(t, 40000, NewRange[int16](-20000, 20000).Len())
	assert.Equal(t, 255, NewRange[uint8](0, 255).Len())
	assert.Equal(t, 10, NewRange[uint64](math.MaxUint64-10, math.MaxUint64).Len())

	s8 := NewStrided[int8](-100, 100, 50)
	assert.Equal(t, []int8{-100, -50, 0, 50}, Collect[int8](s8))
	s8 = NewStrided[int8](120, -120, -60)
	assert.Equal(t, []int8{120, 60, 0, -60}, Collect[int8](s8))
	assert.Equal(t, 4, NewStrided[uint8](0, 255, 64).Len())
	su := NewStrided[uint64](math.MaxUint64-9, math.MaxUint64, 3)
	assert.Equal(t, []uint64{math.MaxUint64 - 9, math.MaxUint64 - 6, math.MaxUint64 - 3}, Collect[uint64](su))

	iset := NewIndexSet[int8](NewRange[int8](-100, 100), NewStrided[int8](-128, 127, 100))
	assert.Equal(t, 203, iset.Len())
	assert.Equal(t, int8(72), iset.At(202))
}

func TestStrided(t *testing.T) {
	s := NewStrided(0, 10, 3)
	assert.Equal(t, KindStrided, s.Kind())
	assert.Equal(t, []int{0, 3, 6, 9}, Collect[int](s))

	s = NewStrided(1, 10, 3)
	assert.Equal(t, []int{1, 4, 7}, Collect[int](s))

	// Descending.
	s = NewStrided(10, 0, -3)
	assert.Equal(t, []int{10, 7, 4, 1}, Collect[int](s))
	s = NewStrided(5, -1, -1)
	assert.Equal(t, []int{5, 4, 3, 2, 1, 0}, Collect[int](s))

	// Empty: wrong direction.
	assert.Equal(t, 0, NewStrided(0, 10, -1).Len())
	assert.Equal(t, 0, NewStrided(10, 0, 2).Len())

	// Zero stride is a configuration error.
	assert.Panics(t, func() { NewStrided(0, 10, 0) })
}

func TestSlice(t *testing.T) {
	r := NewRange(10, 20)
	assert.Equal(t, []int{12, 13, 14}, Collect(r.Slice(2, 3)))
	assert.Equal(t, []int{18, 19}, Collect(r.Slice(8, 5)), "count is clamped")
	assert.Empty(t, Collect(r.Slice(15, 5)), "offset is clamped")
	assert.Equal(t, KindRange, r.Slice(0, 1).Kind())
	assert.Panics(t, func() { r.Slice(-1, 2) })

	s := NewStrided(20, 0, -2)
	sub := s.Slice(1, 3)
	assert.Equal(t, KindStrided, sub.Kind())
	assert.Equal(t, []int{18, 16, 14}, Collect(sub))
	assert.Equal(t, []int{4, 2}, Collect(s.Slice(8, 100)))
}

func TestList(t *testing.T) {
	indices := []int{7, 3, 11, 0, 5}
	l, err := NewList(indices, nil)
	require.NoError(t, err)
	assert.Equal(t, KindList, l.Kind())
	assert.Equal(t, resources.HostSpace, l.Resource().Space())
	assert.Equal(t, indices, Collect[int](l))

	// Indices are copied on creation.
	indices[0] = 1000
	assert.Equal(t, 7, l.At(0))

	sub := l.Slice(1, 3)
	assert.Equal(t, KindList, sub.Kind())
	assert.Equal(t, []int{3, 11, 0}, Collect(sub))
	l.Release()
}

func TestListResidency(t *testing.T) {
	mem := resources.NewPool("test-device", resources.DeviceSpace, 64)
	l, err := NewList([]int32{1, 2, 3, 4}, mem)
	require.NoError(t, err)
	assert.Equal(t, resources.DeviceSpace, l.Resource().Space())
	assert.Equal(t, int64(16), mem.InUse())

	// Doesn't fit: 16 int64 take 128 bytes.
	_, err = NewList(make([]int64, 16), mem)
	require.Error(t, err)
	assert.True(t, errors.Is(err, resources.ErrOutOfMemory))

	l.Release()
	assert.Equal(t, int64(0), mem.InUse())
	l2, err := NewList(make([]int64, 8), mem)
	require.NoError(t, err)
	l2.Release()
}

func TestIndexSet(t *testing.T) {
	list, err := NewList([]int{100, 50, 75}, nil)
	require.NoError(t, err)
	iset := NewIndexSet[int](NewRange(0, 4), NewRange(10, 10))
	iset.PushBack(NewStrided(20, 10, -5))
	iset.PushBackWithPolicy(list, seq.Policy{})

	assert.Equal(t, 4, iset.NumSegments())
	assert.Equal(t, 4+0+2+3, iset.Len())
	want := []int{0, 1, 2, 3, 20, 15, 100, 50, 75}
	got := slices.Collect(iset.All())
	assert.Equal(t, want, got)
	for pos, idx := range want {
		assert.Equal(t, idx, iset.At(pos), "At(%d)", pos)
	}
	assert.Equal(t, 0, iset.Offset(0))
	assert.Equal(t, 4, iset.Offset(1))
	assert.Equal(t, 4, iset.Offset(2))
	assert.Equal(t, 6, iset.Offset(3))
	assert.Nil(t, iset.Policy(0))
	assert.Equal(t, seq.Policy{}, iset.Policy(3))
	assert.Panics(t, func() { iset.At(len(want)) })
}

// TestIndexSetTotality checks that an index set of disjoint segments visits each index exactly once.
func TestIndexSetTotality(t *testing.T) {
	iset := NewIndexSet[int]()
	iset.PushBack(NewRange(1, 1230))
	iset.PushBack(NewRange(1237, 3385))
	iset.PushBack(NewRange(4860, 10110))
	iset.PushBack(NewRange(20490, 32003))
	counts := make(map[int]int, iset.Len())
	for idx := range iset.All() {
		counts[idx]++
	}
	assert.Len(t, counts, iset.Len())
	for idx, c := range counts {
		require.Equal(t, 1, c, "index %d", idx)
	}
}
