package alp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/buffer"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/encoding/alp"
)

func float64Primitive(vals []float64) *array.Primitive {
	dt := dtype.Float(64, false)
	return array.NewPrimitive(dt, len(vals), buffer.FromSlice(vals), nil)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	vals := []float64{1.23, 4.56, 7.89, 1.23, 0.0, -9.87}
	p := float64Primitive(vals)

	enc, err := alp.Encode(p)
	require.NoError(t, err)
	require.Equal(t, len(vals), enc.Len())

	for i, want := range vals {
		s, err := enc.ScalarAt(i)
		require.NoError(t, err)
		assert.InDelta(t, want, s.Value.(float64), 1e-9)
	}
}

func TestEncodeLikeReusesExponents(t *testing.T) {
	sample := float64Primitive([]float64{1.1, 2.2, 3.3})
	enc, err := alp.Encode(sample)
	require.NoError(t, err)
	e, f := enc.Exponents()

	next := float64Primitive([]float64{4.4, 5.5})
	like, err := alp.EncodeLike(next, e, f)
	require.NoError(t, err)
	gotE, gotF := like.Exponents()
	assert.Equal(t, e, gotE)
	assert.Equal(t, f, gotF)

	v, err := like.ScalarAt(0)
	require.NoError(t, err)
	assert.InDelta(t, 4.4, v.Value.(float64), 1e-9)
}

func TestExceptionValueBecomesPatch(t *testing.T) {
	vals := []float64{1.0, 2.0, 3.0, 0.1234567891234}
	p := float64Primitive(vals)
	enc, err := alp.Encode(p)
	require.NoError(t, err)
	require.NotNil(t, enc.Patches())
	assert.Equal(t, 1, enc.Patches().Index().Len())

	for i, want := range vals {
		s, err := enc.ScalarAt(i)
		require.NoError(t, err)
		assert.InDelta(t, want, s.Value.(float64), 1e-12)
	}
}

func TestCanonicalizeMatchesScalarAt(t *testing.T) {
	vals := []float64{10.5, -3.25, 0.0, 6.75}
	p := float64Primitive(vals)
	enc, err := alp.Encode(p)
	require.NoError(t, err)

	canon, err := enc.Canonicalize()
	require.NoError(t, err)
	require.Equal(t, enc.Len(), canon.Len())
	for i := range vals {
		want, err := enc.ScalarAt(i)
		require.NoError(t, err)
		got, err := canon.ScalarAt(i)
		require.NoError(t, err)
		assert.Equal(t, want.Value, got.Value)
	}
}
