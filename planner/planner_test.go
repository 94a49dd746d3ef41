package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/buffer"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/encoding/roaringbool"
	"github.com/thomascherickal/vortex/planner"
)

func skewedBool(n int) *array.Bool {
	vals := make([]bool, n)
	for i := range vals {
		vals[i] = true
	}
	return array.NewBoolFromGo(dtype.Bool(false), vals, nil).(*array.Bool)
}

func TestCompressPicksRoaringBoolForSkewedMask(t *testing.T) {
	b := skewedBool(4096)
	cfg := planner.DefaultConfig()

	out := planner.Compress(b, cfg)
	_, isRoaring := out.(*roaringbool.Array)
	assert.True(t, isRoaring, "expected skewed mask to be compressed to roaring.bool, got %T", out)
}

func TestCompressLeavesIrreducibleArrayAlone(t *testing.T) {
	dt := dtype.Int(8, true, false)
	p := array.NewPrimitive(dt, 3, buffer.FromSlice([]int8{1, 2, 3}), nil)
	cfg := planner.DefaultConfig()

	out := planner.Compress(p, cfg)
	assert.Same(t, array.Array(p), out)
}

func TestCompressDisabledEncodingFallsBackToIdentity(t *testing.T) {
	b := skewedBool(4096)
	cfg := planner.NewConfig(planner.WithDisabledEncodings(roaringbool.EncID))

	out := planner.Compress(b, cfg)
	_, isRoaring := out.(*roaringbool.Array)
	assert.False(t, isRoaring)
	assert.Same(t, array.Array(b), out)
}

func TestCompressChunkedReusesLikeSample(t *testing.T) {
	c1 := skewedBool(1024)
	c2 := skewedBool(512)
	ch := array.NewChunked(dtype.Bool(false), []array.Array{c1, c2})

	cache := planner.NewCache(8)
	cfg := planner.DefaultConfig()
	out := planner.CompressChunked(ch, cfg, cache, "col:0")

	require.Equal(t, 2, out.NumChunks())
	_, chunk0IsRoaring := out.Chunk(0).(*roaringbool.Array)
	_, chunk1IsRoaring := out.Chunk(1).(*roaringbool.Array)
	assert.True(t, chunk0IsRoaring)
	assert.True(t, chunk1IsRoaring)
}

func TestCacheGetPutRoundTrip(t *testing.T) {
	cache := planner.NewCache(4)
	c1 := skewedBool(64)
	ch := array.NewChunked(dtype.Bool(false), []array.Array{c1})
	cfg := planner.DefaultConfig()

	out := planner.CompressChunked(ch, cfg, cache, "col:x")
	require.Equal(t, 1, out.NumChunks())

	// Running again with the same key/cache reuses the cached like-sample
	// instead of re-planning the first chunk from scratch.
	out2 := planner.CompressChunked(ch, cfg, cache, "col:x")
	require.Equal(t, 1, out2.NumChunks())
}
