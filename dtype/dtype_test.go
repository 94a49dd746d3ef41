package dtype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thomascherickal/vortex/dtype"
)

func TestIntEquality(t *testing.T) {
	a := dtype.Int(64, true, false)
	b := dtype.Int(64, true, false)
	c := dtype.Int(32, true, false)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestNullableIsOrthogonalToKind(t *testing.T) {
	n := dtype.Int(64, true, true)
	assert.True(t, n.Nullable())
	assert.Equal(t, dtype.KindInt, n.Kind())
}

func TestStructFieldLookup(t *testing.T) {
	dt := dtype.Struct([]string{"a", "b"}, []dtype.DType{dtype.Int(64, true, false), dtype.Utf8(false)}, false)
	name, ft := dt.Field(1)
	assert.Equal(t, "b", name)
	assert.Equal(t, dtype.KindUtf8, ft.Kind())
	assert.Equal(t, 2, dt.NumFields())
}

func TestListElem(t *testing.T) {
	dt := dtype.List(dtype.Int(32, false, false), false)
	assert.Equal(t, dtype.KindInt, dt.Elem().Kind())
}

func TestWithNullable(t *testing.T) {
	dt := dtype.Int(64, true, false)
	n := dt.WithNullable(true)
	assert.False(t, dt.Nullable())
	assert.True(t, n.Nullable())
}
