package roaringbool

import (
	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/registry"
)

func init() {
	registry.Register(encodingSingleton{})
}

type encodingSingleton struct{}

func (encodingSingleton) ID() string { return EncID }

// Compressor only fires on non-nullable Bool arrays — RoaringBool has no
// validity representation, matching spec.md §4.3's "ignores the
// canonical array's validity because the DType is NonNullable": a
// nullable source must canonicalize its nulls away first (the planner
// never hands this encoding a nullable array since DType mismatch would
// make the round-trip lossy).
func (encodingSingleton) Compressor(a array.Array, opts registry.CompressOptions) (registry.Compressor, bool) {
	b, ok := a.(*array.Bool)
	if !ok || b.DType().Nullable() {
		return nil, false
	}
	return &compressor{b: b}, true
}

type compressor struct {
	b     *array.Bool
	built *Array
}

func (c *compressor) ensure() {
	if c.built == nil {
		c.built = Encode(c.b)
	}
}

func (c *compressor) EstimatedBytes() int64 {
	c.ensure()
	return c.built.NBytes()
}

func (c *compressor) Apply() (array.Array, error) {
	c.ensure()
	return c.built, nil
}
