package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/buffer"
)

func TestFromSliceViewRoundTrip(t *testing.T) {
	vals := []int64{1, 2, 3, 4}
	buf := buffer.FromSlice(vals)
	view := buffer.View[int64](buf)
	require.Equal(t, len(vals), len(view))
	for i, v := range vals {
		assert.Equal(t, v, view[i])
	}
}

func TestSliceIsZeroCopyWindow(t *testing.T) {
	vals := []int32{10, 20, 30, 40}
	buf := buffer.FromSlice(vals)
	sub := buf.Slice(4, 12)
	view := buffer.View[int32](sub)
	assert.Equal(t, []int32{20, 30}, view)
}

func TestViewPanicsOnMisalignedLength(t *testing.T) {
	buf := buffer.FromBytes([]byte{1, 2, 3})
	assert.Panics(t, func() { buffer.View[int64](buf) })
}
