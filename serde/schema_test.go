package serde_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/serde"
)

func TestSchemaRoundTripPrimitive(t *testing.T) {
	dt := dtype.Int(64, true, true)
	buf := serde.EncodeSchema(dt)
	got := serde.DecodeSchema(buf)
	assert.True(t, dt.Equal(got))
}

func TestSchemaRoundTripStruct(t *testing.T) {
	dt := dtype.Struct(
		[]string{"id", "name"},
		[]dtype.DType{dtype.Int(64, true, false), dtype.Utf8(true)},
		false,
	)
	buf := serde.EncodeSchema(dt)
	got := serde.DecodeSchema(buf)
	assert.True(t, dt.Equal(got))
	name, ft := got.Field(1)
	assert.Equal(t, "name", name)
	assert.Equal(t, dtype.KindUtf8, ft.Kind())
}
