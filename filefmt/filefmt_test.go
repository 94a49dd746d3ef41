package filefmt_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/buffer"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/filefmt"
	"github.com/thomascherickal/vortex/planner"
	"github.com/thomascherickal/vortex/scalar"
)

type memReadAt struct {
	data []byte
}

func (m *memReadAt) Size() (int64, error) { return int64(len(m.data)), nil }

func (m *memReadAt) ReadAtInto(offset int64, buf []byte) error {
	n := copy(buf, m.data[offset:])
	return filefmt.RequireExact(n, len(buf), nil)
}

func intPrimitive(vals []int64) *array.Primitive {
	return array.NewPrimitive(dtype.Int(64, true, false), len(vals), buffer.FromSlice(vals), nil)
}

func writeTable(t *testing.T, tbl filefmt.Table) *memReadAt {
	t.Helper()
	var buf bytes.Buffer
	err := filefmt.Write(&buf, tbl, planner.DefaultConfig())
	require.NoError(t, err)
	return &memReadAt{data: buf.Bytes()}
}

func TestWriteOpenRoundTripSingleChunk(t *testing.T) {
	ids := intPrimitive([]int64{1, 2, 3})
	vals := intPrimitive([]int64{10, 20, 30})
	tbl := filefmt.Table{Names: []string{"id", "val"}, Columns: []array.Array{ids, vals}}

	ra := writeTable(t, tbl)
	r, err := filefmt.Open(ra)
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumChunks())
	assert.NotEmpty(t, r.FileID())

	batch, err := r.NextBatch(filefmt.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Len())

	idVal, err := batch.Field(0).ScalarAt(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), idVal.Value)

	_, err = r.NextBatch(filefmt.ReadOptions{})
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadAcrossMultipleChunks(t *testing.T) {
	c1 := intPrimitive([]int64{1, 2})
	c2 := intPrimitive([]int64{3, 4, 5})
	chunked := array.NewChunked(c1.DType(), []array.Array{c1, c2})
	tbl := filefmt.Table{Names: []string{"n"}, Columns: []array.Array{chunked}}

	ra := writeTable(t, tbl)
	r, err := filefmt.Open(ra)
	require.NoError(t, err)
	require.Equal(t, 2, r.NumChunks())

	b1, err := r.NextBatch(filefmt.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, b1.Len())

	b2, err := r.NextBatch(filefmt.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, b2.Len())
	v, err := b2.Field(0).ScalarAt(2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Value)
}

func TestProjectionPushdown(t *testing.T) {
	ids := intPrimitive([]int64{1, 2})
	vals := intPrimitive([]int64{100, 200})
	tbl := filefmt.Table{Names: []string{"id", "val"}, Columns: []array.Array{ids, vals}}

	ra := writeTable(t, tbl)
	r, err := filefmt.Open(ra)
	require.NoError(t, err)

	batch, err := r.NextBatch(filefmt.ReadOptions{Projection: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"val"}, batch.DType().FieldNames())
	v, err := batch.Field(0).ScalarAt(0)
	require.NoError(t, err)
	assert.Equal(t, int64(100), v.Value)
}

func TestTakePushdown(t *testing.T) {
	ids := intPrimitive([]int64{10, 20, 30, 40})
	tbl := filefmt.Table{Names: []string{"id"}, Columns: []array.Array{ids}}

	ra := writeTable(t, tbl)
	r, err := filefmt.Open(ra)
	require.NoError(t, err)

	idx := intPrimitive([]int64{3, 0})
	batch, err := r.NextBatch(filefmt.ReadOptions{Take: idx})
	require.NoError(t, err)
	require.Equal(t, 2, batch.Len())
	v0, _ := batch.Field(0).ScalarAt(0)
	v1, _ := batch.Field(0).ScalarAt(1)
	assert.Equal(t, int64(40), v0.Value)
	assert.Equal(t, int64(10), v1.Value)
}

func TestRowFilterPushdown(t *testing.T) {
	ids := intPrimitive([]int64{1, 2, 3, 4, 5})
	tbl := filefmt.Table{Names: []string{"id"}, Columns: []array.Array{ids}}

	ra := writeTable(t, tbl)
	r, err := filefmt.Open(ra)
	require.NoError(t, err)

	threshold := scalar.Of(dtype.Int(64, true, false), int64(3))
	pred := func(b *array.Struct) (array.Array, error) {
		n := b.Field(0).Len()
		vals := make([]bool, n)
		for i := 0; i < n; i++ {
			s, err := b.Field(0).ScalarAt(i)
			if err != nil {
				return nil, err
			}
			vals[i] = scalar.Compare(s, threshold) > 0
		}
		return array.NewBoolFromGo(dtype.Bool(false), vals, nil), nil
	}

	batch, err := r.NextBatch(filefmt.ReadOptions{RowFilter: []filefmt.Predicate{pred}})
	require.NoError(t, err)
	require.Equal(t, 2, batch.Len())
	v0, _ := batch.Field(0).ScalarAt(0)
	v1, _ := batch.Field(0).ScalarAt(1)
	assert.Equal(t, int64(4), v0.Value)
	assert.Equal(t, int64(5), v1.Value)
}
