package roaringbool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/buffer"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/encoding/roaringbool"
	"github.com/thomascherickal/vortex/stats"
)

func boolArray(vals []bool) *array.Bool {
	return array.NewBoolFromGo(dtype.Bool(false), vals, nil).(*array.Bool)
}

func TestEncodeCanonicalizeRoundTrip(t *testing.T) {
	vals := []bool{true, false, true, true, false, false, true}
	enc := roaringbool.Encode(boolArray(vals))
	require.Equal(t, len(vals), enc.Len())

	canon, err := enc.Canonicalize()
	require.NoError(t, err)
	for i, want := range vals {
		s, err := canon.ScalarAt(i)
		require.NoError(t, err)
		assert.Equal(t, want, s.Value.(bool))
	}
}

func TestScalarAt(t *testing.T) {
	vals := []bool{false, true, false, true}
	enc := roaringbool.Encode(boolArray(vals))
	for i, want := range vals {
		s, err := enc.ScalarAt(i)
		require.NoError(t, err)
		assert.Equal(t, want, s.Value.(bool))
	}
}

func TestSliceIntersectsAndShifts(t *testing.T) {
	vals := []bool{true, false, true, true, false, true}
	enc := roaringbool.Encode(boolArray(vals))

	sliced, err := enc.Slice(2, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, sliced.Len())

	want := vals[2:5]
	for i, w := range want {
		s, err := sliced.ScalarAt(i)
		require.NoError(t, err)
		assert.Equal(t, w, s.Value.(bool))
	}
}

func TestTakeGathersSetBits(t *testing.T) {
	vals := []bool{true, false, true, false, true}
	enc := roaringbool.Encode(boolArray(vals))
	idx := array.NewPrimitive(dtype.Int(64, false, false), 3,
		buffer.FromSlice([]int64{0, 1, 4}), nil)

	taken, err := enc.Take(idx)
	require.NoError(t, err)
	require.Equal(t, 3, taken.Len())

	s0, _ := taken.ScalarAt(0)
	s1, _ := taken.ScalarAt(1)
	s2, _ := taken.ScalarAt(2)
	assert.True(t, s0.Value.(bool))
	assert.False(t, s1.Value.(bool))
	assert.True(t, s2.Value.(bool))
}

func TestStats(t *testing.T) {
	vals := []bool{true, true, false, true}
	enc := roaringbool.Encode(boolArray(vals))

	tc, ok := enc.Stats().Get(stats.TrueCount)
	require.True(t, ok)
	assert.Equal(t, int64(3), tc.Value)

	constAll := roaringbool.Encode(boolArray([]bool{true, true, true}))
	isc, ok := constAll.Stats().Get(stats.IsConstant)
	require.True(t, ok)
	assert.True(t, isc.Value.(bool))

	mixed, ok := enc.Stats().Get(stats.IsConstant)
	require.True(t, ok)
	assert.False(t, mixed.Value.(bool))
}
