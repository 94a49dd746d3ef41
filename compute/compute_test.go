package compute_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/buffer"
	"github.com/thomascherickal/vortex/compute"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/encoding/roaringbool"
	"github.com/thomascherickal/vortex/scalar"
)

func intPrimitive(vals []int64) *array.Primitive {
	return array.NewPrimitive(dtype.Int(64, true, false), len(vals), buffer.FromSlice(vals), nil)
}

func boolArray(vals []bool) *array.Bool {
	return array.NewBoolFromGo(dtype.Bool(false), vals, nil).(*array.Bool)
}

func TestSlice(t *testing.T) {
	p := intPrimitive([]int64{1, 2, 3, 4, 5})
	s, err := compute.Slice(p, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestTake(t *testing.T) {
	p := intPrimitive([]int64{10, 20, 30, 40})
	idx := intPrimitive([]int64{3, 1})
	taken, err := compute.Take(p, idx)
	require.NoError(t, err)
	v0, _ := taken.ScalarAt(0)
	v1, _ := taken.ScalarAt(1)
	assert.Equal(t, int64(40), v0.Value)
	assert.Equal(t, int64(20), v1.Value)
}

func TestFilterCanonicalArray(t *testing.T) {
	p := intPrimitive([]int64{1, 2, 3, 4})
	mask := boolArray([]bool{true, false, true, false})
	out, err := compute.Filter(p, mask)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	v, _ := out.ScalarAt(1)
	assert.Equal(t, int64(3), v.Value)
}

func TestFilterRoaringBoolTakesEncodingPath(t *testing.T) {
	vals := []bool{true, true, false, true, false}
	enc := roaringbool.Encode(boolArray(vals))
	mask := boolArray([]bool{true, false, true, true, false})

	out, err := compute.Filter(enc, mask)
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())
	v0, _ := out.ScalarAt(0)
	v1, _ := out.ScalarAt(1)
	v2, _ := out.ScalarAt(2)
	assert.True(t, v0.Value.(bool))
	assert.False(t, v1.Value.(bool))
	assert.True(t, v2.Value.(bool))
}

func TestFilterMismatchedLengthErrors(t *testing.T) {
	p := intPrimitive([]int64{1, 2, 3})
	mask := boolArray([]bool{true, false})
	_, err := compute.Filter(p, mask)
	assert.Error(t, err)
}

func TestScalarAt(t *testing.T) {
	p := intPrimitive([]int64{7, 8, 9})
	s, err := compute.ScalarAt(p, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(8), s.Value)
}

func TestSearchSortedLowerBound(t *testing.T) {
	p := intPrimitive([]int64{1, 3, 3, 5, 9})
	target := scalar.Of(dtype.Int(64, true, false), int64(3))
	pos, err := compute.SearchSorted(p, target)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
}

func TestSubtractScalarPrimitive(t *testing.T) {
	p := intPrimitive([]int64{10, 20, 30})
	sub := scalar.Of(dtype.Int(64, true, false), int64(5))
	out, err := compute.SubtractScalar(p, sub)
	require.NoError(t, err)
	v0, _ := out.ScalarAt(0)
	v2, _ := out.ScalarAt(2)
	assert.Equal(t, int64(5), v0.Value)
	assert.Equal(t, int64(25), v2.Value)
}

func TestSubtractScalarRejectsNullSubtrahend(t *testing.T) {
	p := intPrimitive([]int64{1, 2})
	null := scalar.Null(dtype.Int(64, true, true))
	_, err := compute.SubtractScalar(p, null)
	assert.Error(t, err)
}

func TestAndCanonicalizesNonBoolOperand(t *testing.T) {
	a := boolArray([]bool{true, true, false, false})
	b := roaringbool.Encode(boolArray([]bool{true, false, true, false}))
	out, err := compute.And(a, b)
	require.NoError(t, err)
	v0, _ := out.ScalarAt(0)
	v1, _ := out.ScalarAt(1)
	v2, _ := out.ScalarAt(2)
	v3, _ := out.ScalarAt(3)
	assert.True(t, v0.Value.(bool))
	assert.False(t, v1.Value.(bool))
	assert.False(t, v2.Value.(bool))
	assert.False(t, v3.Value.(bool))
}
