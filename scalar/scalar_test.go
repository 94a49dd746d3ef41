package scalar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/scalar"
)

func TestNullScalar(t *testing.T) {
	dt := dtype.Int(64, true, true)
	n := scalar.Null(dt)
	assert.True(t, n.IsNull())
	assert.False(t, n.Valid)
}

func TestEqual(t *testing.T) {
	a := scalar.Of(dtype.Int(64, true, false), int64(5))
	b := scalar.Of(dtype.Int(64, true, false), int64(5))
	c := scalar.Of(dtype.Int(64, true, false), int64(6))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestCompareOrdering(t *testing.T) {
	a := scalar.Of(dtype.Int(64, true, false), int64(1))
	b := scalar.Of(dtype.Int(64, true, false), int64(2))
	assert.Equal(t, -1, scalar.Compare(a, b))
	assert.Equal(t, 1, scalar.Compare(b, a))
	assert.Equal(t, 0, scalar.Compare(a, a))
}

func TestComparePanicsOnNull(t *testing.T) {
	n := scalar.Null(dtype.Int(64, true, true))
	v := scalar.Of(dtype.Int(64, true, true), int64(1))
	assert.Panics(t, func() { scalar.Compare(n, v) })
}
