// Package compute implements the vectorized kernels that operate over
// any Array without the caller needing to know its encoding: each
// kernel tries an encoding-specific fast path first and falls back to
// canonicalizing the input and retrying, the same "canonicalize and
// retry" default policy the array package's own Take/Filter fallbacks
// use internally.
package compute

import (
	"fmt"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/encoding/roaringbool"
	"github.com/thomascherickal/vortex/internal/derr"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// Slice returns a[start:stop). Every encoding implements Slice
// natively (it never needs the canonicalize fallback), so this is a
// thin pass-through kept for symmetry with the other kernels and as
// the one place a future cross-encoding slice optimization would live.
func Slice(a array.Array, start, stop int) (array.Array, error) {
	return a.Slice(start, stop)
}

// Take gathers a at the positions named by idx, which must be an integer
// array: any other dtype, or a nullable idx holding nulls, fails with
// InvalidDType; a nullable idx with no nulls is canonicalized first.
// Every encoding provides its own Take (canonical ones via the generic
// straight-gather, specialized ones either natively or via
// Canonicalize), so after that check this dispatches to it.
func Take(a array.Array, idx array.Array) (array.Array, error) {
	dt := idx.DType()
	if dt.Kind() != dtype.KindInt {
		return nil, derr.New(derr.InvalidDType, "compute.Take", "indices must be integer, got %s", dt)
	}
	if dt.Nullable() {
		nc, ok := idx.Stats().Get(stats.NullCount)
		if !ok || nc.Value != int64(0) {
			return nil, derr.New(derr.InvalidDType, "compute.Take", "indices must not contain nulls")
		}
		canon, err := idx.Canonicalize()
		if err != nil {
			return nil, err
		}
		idx = canon
	}
	return a.Take(idx)
}

// Filter gathers a at the positions where mask is true. mask must be a
// non-nullable Bool array of the same length as a.
func Filter(a array.Array, mask array.Array) (array.Array, error) {
	if mask.Len() != a.Len() {
		return nil, derr.New(derr.InvalidSerde, "compute.Filter", "mask length %d != array length %d", mask.Len(), a.Len())
	}
	if b, ok := mask.(*array.Bool); ok && b.DType().Nullable() {
		return nil, derr.New(derr.InvalidDType, "compute.Filter", "mask must be non-nullable")
	}
	switch src := a.(type) {
	case *roaringbool.Array:
		return filterRoaring(src, mask)
	default:
		return array.Filter(a, mask)
	}
}

func filterRoaring(a *roaringbool.Array, mask array.Array) (array.Array, error) {
	canon, err := a.Canonicalize()
	if err != nil {
		return nil, err
	}
	return array.Filter(canon, mask)
}

// ScalarAt reads the single logical value at i.
func ScalarAt(a array.Array, i int) (scalar.Scalar, error) {
	return a.ScalarAt(i)
}

// SearchSorted returns the position of the first element >= target (the
// standard lower-bound binary search), assuming a is already sorted
// ascending (per its IsSorted stat, which the caller is expected to
// have checked — this kernel does not re-verify order). Works over any
// Array via repeated ScalarAt since the comparison itself is the
// expensive part, not indexing.
func SearchSorted(a array.Array, target scalar.Scalar) (int, error) {
	lo, hi := 0, a.Len()
	var firstErr error
	for lo < hi {
		mid := (lo + hi) / 2
		s, err := a.ScalarAt(mid)
		if err != nil {
			firstErr = err
			break
		}
		if s.IsNull() || scalar.Compare(s, target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return lo, nil
}

// SubtractScalar computes a[i] - s for every element of a numeric array
// a, preserving a's dtype and nulls. Used by delta-style transforms
// where a column is rebased against a running offset before further
// compression.
func SubtractScalar(a array.Array, s scalar.Scalar) (array.Array, error) {
	if !a.DType().IsNumeric() {
		return nil, derr.New(derr.InvalidDType, "compute.SubtractScalar", "dtype %s is not numeric", a.DType())
	}
	if s.IsNull() {
		return nil, derr.New(derr.InvalidDType, "compute.SubtractScalar", "subtrahend must not be null")
	}
	if p, ok := a.(*array.Primitive); ok {
		return subtractScalarPrimitive(p, s)
	}
	canon, err := a.Canonicalize()
	if err != nil {
		return nil, err
	}
	p, ok := canon.(*array.Primitive)
	if !ok {
		return nil, derr.New(derr.InvalidDType, "compute.SubtractScalar", "canonicalized numeric array has unexpected type %T", canon)
	}
	return subtractScalarPrimitive(p, s)
}

func subtractScalarPrimitive(p *array.Primitive, s scalar.Scalar) (array.Array, error) {
	dt := p.DType()
	b := array.NewBuilder(dt)
	isFloat := dt.Kind() == dtype.KindFloat
	for i := 0; i < p.Len(); i++ {
		if !p.IsValid(i) {
			b.Append(scalar.Null(dt))
			continue
		}
		if isFloat {
			sub, err := subtractFloat(s)
			if err != nil {
				return nil, err
			}
			b.Append(scalar.Of(dt, p.AsFloat64(i)-sub))
			continue
		}
		sub, err := subtractInt(s)
		if err != nil {
			return nil, err
		}
		b.Append(scalar.Of(dt, p.AsInt64(i)-sub))
	}
	return b.Finish(), nil
}

func subtractFloat(s scalar.Scalar) (float64, error) {
	switch v := s.Value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("compute: SubtractScalar: unsupported subtrahend type %T", v)
	}
}

func subtractInt(s scalar.Scalar) (int64, error) {
	switch v := s.Value.(type) {
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("compute: SubtractScalar: unsupported subtrahend type %T", v)
	}
}

// And computes the element-wise logical AND of two equal-length,
// non-nullable boolean arrays, canonicalizing either side to *array.Bool
// first if needed.
func And(a, b array.Array) (array.Array, error) {
	ab, err := asBool(a)
	if err != nil {
		return nil, err
	}
	bb, err := asBool(b)
	if err != nil {
		return nil, err
	}
	return array.And(ab, bb)
}

func asBool(a array.Array) (*array.Bool, error) {
	if b, ok := a.(*array.Bool); ok {
		return b, nil
	}
	canon, err := a.Canonicalize()
	if err != nil {
		return nil, err
	}
	b, ok := canon.(*array.Bool)
	if !ok {
		return nil, derr.New(derr.InvalidDType, "compute.And", "canonicalized array has unexpected type %T", canon)
	}
	return b, nil
}
