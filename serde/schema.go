package serde

import (
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/serde/fb"
)

// EncodeSchema serializes dt as a standalone Schema flatbuffer.
func EncodeSchema(dt dtype.DType) []byte { return fb.BuildSchema(dt) }

// DecodeSchema parses a Schema flatbuffer back into a DType.
func DecodeSchema(buf []byte) dtype.DType { return fb.ReadSchema(buf) }
