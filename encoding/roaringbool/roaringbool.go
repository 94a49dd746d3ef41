// Package roaringbool implements RoaringBool: a compact boolean array
// backed by a roaring bitmap of set-bit positions.
//
// Grounded in the original source's enc-roaring/src/boolean/mod.rs and
// vortex-roaring/src/boolean/mod.rs. The slice semantics (intersect with
// [a,b) then shift by -a) are carried verbatim from
// vortex-roaring's slice: "Bitmap::from_range(start..stop);
// bitmap.and(slice).add_offset(-start)".
package roaringbool

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// EncID is the persisted encoding-id of the RoaringBool array.
const EncID = "roaring.bool"

// Array is a RoaringBool-encoded boolean array. Its dtype is always
// Bool(NonNullable) — only set-bit positions < length are tracked, so
// there is no separate validity representation.
type Array struct {
	bitmap *roaring.Bitmap
	length int
	st     *stats.Set
}

// New builds a RoaringBool array from a bitmap whose set bits are all
// < length.
func New(bitmap *roaring.Bitmap, length int) *Array {
	a := &Array{bitmap: bitmap, length: length}
	a.st = stats.NewSet(a.computeStat)
	return a
}

// Encode builds a RoaringBool array from a canonical Bool array,
// ignoring the source's validity (the resulting dtype is always
// non-nullable).
func Encode(b *array.Bool) *Array {
	bm := roaring.New()
	for i := 0; i < b.Len(); i++ {
		if b.Value(i) {
			bm.Add(uint32(i))
		}
	}
	bm.RunOptimize()
	return New(bm, b.Len())
}

func (a *Array) Len() int           { return a.length }
func (a *Array) DType() dtype.DType { return dtype.Bool(false) }
func (a *Array) IsEmpty() bool      { return a.length == 0 }

// NBytes returns the bitmap's native serialized size, per spec.md §4.3.
func (a *Array) NBytes() int64 { return int64(a.bitmap.GetSerializedSizeInBytes()) }

func (a *Array) EncodingID() string      { return EncID }
func (a *Array) Kind() array.Kind        { return array.KindRoaringBool }
func (a *Array) Stats() *stats.Set       { return a.st }
func (a *Array) Children() []array.Array { return nil }

// Bitmap returns the underlying roaring bitmap of set positions.
func (a *Array) Bitmap() *roaring.Bitmap { return a.bitmap }

func (a *Array) ScalarAt(i int) (scalar.Scalar, error) {
	if err := array.CheckBounds("roaringbool.ScalarAt", i, a.length); err != nil {
		return scalar.Scalar{}, err
	}
	return scalar.Of(a.DType(), a.bitmap.Contains(uint32(i))), nil
}

// Slice intersects the bitmap with [start, stop) and shifts the result
// down by start: the intersection is computed with roaring.And against a
// range bitmap, then each surviving position minus start is added to a
// new bitmap.
func (a *Array) Slice(start, stop int) (array.Array, error) {
	if err := array.CheckSliceBounds("roaringbool.Slice", start, stop, a.length); err != nil {
		return nil, err
	}
	window := roaring.New()
	window.AddRange(uint64(start), uint64(stop))
	sliced := roaring.And(a.bitmap, window)
	shifted := roaring.New()
	it := sliced.Iterator()
	for it.HasNext() {
		shifted.Add(it.Next() - uint32(start))
	}
	return New(shifted, stop-start), nil
}

func (a *Array) Take(idx array.Array) (array.Array, error) {
	n := idx.Len()
	bm := roaring.New()
	for i := 0; i < n; i++ {
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
			return nil, fmt.Errorf("roaringbool.Take: index value has type %T, want integer", s.Value)
		}
		if err := array.CheckBounds("roaringbool.Take", pos, a.length); err != nil {
			return nil, err
		}
		if a.bitmap.Contains(uint32(pos)) {
			bm.Add(uint32(i))
		}
	}
	return New(bm, n), nil
}

func (a *Array) Canonicalize() (array.Array, error) {
	vals := make([]bool, a.length)
	it := a.bitmap.Iterator()
	for it.HasNext() {
		vals[it.Next()] = true
	}
	return array.NewBoolFromGo(dtype.Bool(false), vals, nil), nil
}

func (a *Array) computeStat(kind stats.Kind) (scalar.Scalar, bool) {
	switch kind {
	case stats.TrueCount:
		return scalar.Of(dtype.Int(64, false, false), int64(a.bitmap.GetCardinality())), true
	case stats.NullCount:
		return scalar.Of(dtype.Int(64, false, false), int64(0)), true
	case stats.IsConstant:
		card := a.bitmap.GetCardinality()
		return scalar.Of(dtype.Bool(false), card == 0 || int(card) == a.length), true
	case stats.Min:
		anyFalse := int(a.bitmap.GetCardinality()) < a.length
		return scalar.Of(dtype.Bool(false), !anyFalse), true
	case stats.Max:
		return scalar.Of(dtype.Bool(false), a.bitmap.GetCardinality() > 0), true
	default:
		return scalar.Scalar{}, false
	}
}
