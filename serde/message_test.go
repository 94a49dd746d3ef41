package serde_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/buffer"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/serde"
)

func TestEncodeDecodeArrayMessageRoundTrip(t *testing.T) {
	p := intPrimitive([]int64{1, 2, 3, 4, 5})
	msg := serde.EncodeArrayMessage(p)

	out, err := serde.DecodeArrayMessage(msg.Frame, msg.Body, p.DType())
	require.NoError(t, err)
	for i, want := range []int64{1, 2, 3, 4, 5} {
		s, err := out.ScalarAt(i)
		require.NoError(t, err)
		assert.Equal(t, want, s.Value)
	}
}

func TestDecodeArrayMessageDetectsCorruption(t *testing.T) {
	p := intPrimitive([]int64{10, 20, 30})
	msg := serde.EncodeArrayMessage(p)

	corrupted := append([]byte(nil), msg.Body...)
	corrupted[0] ^= 0xFF

	_, err := serde.DecodeArrayMessage(msg.Frame, corrupted, p.DType())
	assert.Error(t, err)
}

func TestDecodeArrayMessageDetectsTruncation(t *testing.T) {
	dt := dtype.Int(64, true, false)
	p := array.NewPrimitive(dt, 3, buffer.FromSlice([]int64{1, 2, 3}), nil)
	msg := serde.EncodeArrayMessage(p)

	truncated := msg.Body[:len(msg.Body)-8]
	_, err := serde.DecodeArrayMessage(msg.Frame, truncated, p.DType())
	assert.Error(t, err)
}
