package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

func TestZigZagRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 42, -42, 1 << 40, -(1 << 40)} {
		got := stats.ZigZagDecode(stats.ZigZagEncode(v))
		assert.Equal(t, v, got)
	}
}

func TestEstimateBitWidthGrowsWithMagnitude(t *testing.T) {
	assert.Less(t, stats.EstimateBitWidth(1), stats.EstimateBitWidth(1000))
	// zigzag maps -1 to 1 and 1 to 2, so neither costs more than two bits.
	assert.Equal(t, 1, stats.EstimateBitWidth(-1))
	assert.Equal(t, 2, stats.EstimateBitWidth(1))
}

func TestSetCachesComputedValue(t *testing.T) {
	calls := 0
	set := stats.NewSet(func(k stats.Kind) (scalar.Scalar, bool) {
		calls++
		return scalar.Of(dtype.Int(64, false, false), int64(7)), true
	})
	v1, ok := set.Get(stats.Min)
	require.True(t, ok)
	v2, ok := set.Get(stats.Min)
	require.True(t, ok)
	assert.Equal(t, v1.Value, v2.Value)
	assert.Equal(t, 1, calls)
}

func TestSetPrepopulate(t *testing.T) {
	set := stats.NewSet(func(k stats.Kind) (scalar.Scalar, bool) { return scalar.Scalar{}, false })
	set.Set(stats.TrueCount, scalar.Of(dtype.Int(64, false, false), int64(3)))
	v, ok := set.Get(stats.TrueCount)
	require.True(t, ok)
	assert.Equal(t, int64(3), v.Value)
}
