package array_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/buffer"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

func intPrimitive(t *testing.T, vals []int64) *array.Primitive {
	t.Helper()
	dt := dtype.Int(64, true, false)
	buf := buffer.FromSlice(vals)
	return array.NewPrimitive(dt, len(vals), buf, nil)
}

func TestPrimitiveScalarAtAndSlice(t *testing.T) {
	p := intPrimitive(t, []int64{10, 20, 30, 40, 50})

	s, err := p.ScalarAt(2)
	require.NoError(t, err)
	assert.Equal(t, int64(30), s.Value)

	sliced, err := p.Slice(1, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, sliced.Len())
	v, err := sliced.ScalarAt(0)
	require.NoError(t, err)
	assert.Equal(t, int64(20), v.Value)
}

func TestPrimitiveOutOfBounds(t *testing.T) {
	p := intPrimitive(t, []int64{1, 2, 3})
	_, err := p.ScalarAt(3)
	assert.Error(t, err)
}

func TestPrimitiveStatsMinMaxSorted(t *testing.T) {
	p := intPrimitive(t, []int64{1, 2, 2, 5})
	min, ok := p.Stats().Get(stats.Min)
	require.True(t, ok)
	assert.Equal(t, int64(1), min.Value)

	max, ok := p.Stats().Get(stats.Max)
	require.True(t, ok)
	assert.Equal(t, int64(5), max.Value)

	sorted, ok := p.Stats().Get(stats.IsSorted)
	require.True(t, ok)
	assert.True(t, sorted.Value.(bool))
}

func TestBoolPackingRoundTrip(t *testing.T) {
	vals := []bool{true, false, true, true, false, false, true}
	b := array.NewBoolFromGo(dtype.Bool(false), vals, nil)
	for i, want := range vals {
		s, err := b.ScalarAt(i)
		require.NoError(t, err)
		assert.Equal(t, want, s.Value.(bool))
	}
}

func TestNullablePrimitiveValidity(t *testing.T) {
	dt := dtype.Int(64, true, true)
	data := buffer.FromSlice([]int64{7, 0, 9})
	validity := array.NewBool(3, packWords([]bool{true, false, true}))
	p := array.NewPrimitive(dt, 3, data, validity)

	s, err := p.ScalarAt(1)
	require.NoError(t, err)
	assert.True(t, s.IsNull())

	s, err = p.ScalarAt(2)
	require.NoError(t, err)
	assert.Equal(t, int64(9), s.Value)
}

func packWords(vals []bool) []uint64 {
	words := make([]uint64, (len(vals)+63)/64)
	for i, v := range vals {
		if v {
			words[i/64] |= 1 << uint(i%64)
		}
	}
	return words
}

func TestStructFieldAccess(t *testing.T) {
	ids := intPrimitive(t, []int64{1, 2, 3})
	names := array.NewVarBin(dtype.Utf8(false), [][]byte{[]byte("a"), []byte("b"), []byte("c")}, nil)
	dt := dtype.Struct([]string{"id", "name"}, []dtype.DType{ids.DType(), names.DType()}, false)
	s := array.NewStruct(dt, []array.Array{ids, names})

	assert.Equal(t, 3, s.Len())
	v, err := s.Field(1).ScalarAt(2)
	require.NoError(t, err)
	assert.Equal(t, "c", v.Value)
}

func TestChunkedLenAndScalarAt(t *testing.T) {
	c1 := intPrimitive(t, []int64{1, 2, 3})
	c2 := intPrimitive(t, []int64{4, 5})
	ch := array.NewChunked(c1.DType(), []array.Array{c1, c2})
	assert.Equal(t, 5, ch.Len())

	v, err := ch.ScalarAt(4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Value)
}

func TestConstantScalarAt(t *testing.T) {
	c := array.NewConstant(scalar.Of(dtype.Int(64, true, false), int64(42)), 10)
	assert.Equal(t, 10, c.Len())
	v, err := c.ScalarAt(5)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Value)
}

func TestSparseScalarAt(t *testing.T) {
	idx := intPrimitive(t, []int64{2, 5})
	vals := intPrimitive(t, []int64{100, 200})
	fill := scalar.Of(dtype.Int(64, true, false), int64(0))
	sp := array.NewSparse(idx, vals, 7, fill)

	v, err := sp.ScalarAt(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Value)

	v, err = sp.ScalarAt(2)
	require.NoError(t, err)
	assert.Equal(t, int64(100), v.Value)

	v, err = sp.ScalarAt(5)
	require.NoError(t, err)
	assert.Equal(t, int64(200), v.Value)
}

func TestFilterGatherFallback(t *testing.T) {
	p := intPrimitive(t, []int64{1, 2, 3, 4, 5})
	mask := array.NewBoolFromGo(dtype.Bool(false), []bool{true, false, true, false, true}, nil)
	filtered, err := array.Filter(p, mask)
	require.NoError(t, err)
	require.Equal(t, 3, filtered.Len())
	v, err := filtered.ScalarAt(1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Value)
}
