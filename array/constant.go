package array

import (
	"fmt"

	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// EncConstant is the persisted encoding-id of the Constant canonical
// array.
const EncConstant = "vortex.constant"

// Constant represents a run of length n all equal to the same scalar
// (including an all-null run). It costs O(1) space regardless of
// length.
type Constant struct {
	length int
	value  scalar.Scalar
	st     *stats.Set
}

// NewConstant builds a Constant array of length n, every element equal
// to value.
func NewConstant(value scalar.Scalar, length int) *Constant {
	c := &Constant{length: length, value: value}
	c.st = stats.NewSet(c.computeStat)
	return c
}

func (c *Constant) Len() int           { return c.length }
func (c *Constant) DType() dtype.DType { return c.value.DType }
func (c *Constant) IsEmpty() bool      { return c.length == 0 }
func (c *Constant) NBytes() int64      { return 32 } // O(1): one boxed scalar regardless of length
func (c *Constant) EncodingID() string { return EncConstant }
func (c *Constant) Kind() Kind         { return KindConstant }
func (c *Constant) Stats() *stats.Set  { return c.st }
func (c *Constant) Children() []Array  { return nil }

// Value returns the repeated scalar.
func (c *Constant) Value() scalar.Scalar { return c.value }

func (c *Constant) Canonicalize() (Array, error) {
	b := NewBuilder(c.DType())
	for i := 0; i < c.length; i++ {
		b.Append(c.value)
	}
	return b.Finish(), nil
}

func (c *Constant) ScalarAt(i int) (scalar.Scalar, error) {
	if err := CheckBounds("Constant.ScalarAt", i, c.length); err != nil {
		return scalar.Scalar{}, err
	}
	return c.value, nil
}

func (c *Constant) Slice(a, b int) (Array, error) {
	if err := CheckSliceBounds("Constant.Slice", a, b, c.length); err != nil {
		return nil, err
	}
	return NewConstant(c.value, b-a), nil
}

func (c *Constant) Take(idx Array) (Array, error) {
	for i := 0; i < idx.Len(); i++ {
		s, err := idx.ScalarAt(i)
		if err != nil {
			return nil, err
		}
		var pos int
		switch v := s.Value.(type) {
		case int64:
			pos = int(v)
		case uint64:
			pos = int(v)
		default:
			return nil, fmt.Errorf("Constant.Take: index value has type %T, want integer", s.Value)
		}
		if err := CheckBounds("Constant.Take", pos, c.length); err != nil {
			return nil, err
		}
	}
	return NewConstant(c.value, idx.Len()), nil
}

func (c *Constant) computeStat(kind stats.Kind) (scalar.Scalar, bool) {
	switch kind {
	case stats.Min, stats.Max:
		return c.value, true
	case stats.IsSorted, stats.IsConstant:
		return scalar.Of(dtype.Bool(false), true), true
	case stats.RunCount:
		if c.length == 0 {
			return scalar.Of(dtype.Int(64, false, false), int64(0)), true
		}
		return scalar.Of(dtype.Int(64, false, false), int64(1)), true
	case stats.NullCount:
		n := int64(0)
		if c.value.IsNull() {
			n = int64(c.length)
		}
		return scalar.Of(dtype.Int(64, false, false), n), true
	default:
		return scalar.Scalar{}, false
	}
}
