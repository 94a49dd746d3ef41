// Package alp implements ALP (adaptive lossless floating-point
// compression with exception patches): find, per-array, an integer
// scaling exponent pair (e, f) such that round(value * 10^e / 10^f) fits
// in a native integer for the vast majority of values; values that
// don't round-trip exactly are stored as patches.
//
// Grounded in the original source's enc-alp/src/alp.rs (array shape:
// encoded + exponents + optional patches) and enc-alp/src/compress.rs
// (the encode/encode-like split and the f32/f64-only precondition).
package alp

import (
	"math"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/internal/derr"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// EncID is the persisted encoding-id of the ALP array.
const EncID = "vortex.alp"

// Array is the ALP-encoded float array.
type Array struct {
	dt       dtype.DType
	encoded  *array.Primitive // Int(32|64, signed)
	e, f     uint8
	patches  *array.Sparse // optional, dtype Float matching dt
	st       *stats.Set
}

// New validates and constructs an ALP array from already-encoded parts.
// encoded's dtype must be signed Int(32|64); its length is the array's
// length. patches, if present, must be a Sparse array of the resulting
// float dtype.
func New(encoded *array.Primitive, e, f uint8, patches *array.Sparse) (*Array, error) {
	var width int
	switch encoded.DType().Width() {
	case 32:
		width = 32
	case 64:
		width = 64
	default:
		return nil, derr.New(derr.InvalidDType, "alp.New", "encoded child must be Int(32|64), got width %d", encoded.DType().Width())
	}
	if !encoded.DType().Signed() {
		return nil, derr.New(derr.InvalidDType, "alp.New", "encoded child must be signed")
	}
	dt := dtype.Float(width, encoded.DType().Nullable())
	if patches != nil {
		if !patches.DType().Equal(dt) {
			return nil, derr.New(derr.InvalidDType, "alp.New", "patches dtype %s != %s", patches.DType(), dt)
		}
		if patches.Len() != encoded.Len() {
			return nil, derr.New(derr.InvalidSerde, "alp.New", "patches length %d != encoded length %d", patches.Len(), encoded.Len())
		}
	}
	a := &Array{dt: dt, encoded: encoded, e: e, f: f, patches: patches}
	a.st = stats.NewSet(a.computeStat)
	return a, nil
}

func (a *Array) Len() int           { return a.encoded.Len() }
func (a *Array) DType() dtype.DType { return a.dt }
func (a *Array) IsEmpty() bool      { return a.Len() == 0 }
func (a *Array) NBytes() int64 {
	n := a.encoded.NBytes()
	if a.patches != nil {
		n += a.patches.NBytes()
	}
	return n
}
func (a *Array) EncodingID() string { return EncID }
func (a *Array) Kind() array.Kind   { return array.KindALP }
func (a *Array) Stats() *stats.Set  { return a.st }

func (a *Array) Children() []array.Array {
	if a.patches == nil {
		return []array.Array{a.encoded}
	}
	return []array.Array{a.encoded, a.patches}
}

// Exponents returns the (e, f) scaling pair.
func (a *Array) Exponents() (e, f uint8) { return a.e, a.f }

// Encoded returns the underlying integer child.
func (a *Array) Encoded() *array.Primitive { return a.encoded }

// Patches returns the exception patches child, or nil if there were
// none.
func (a *Array) Patches() *array.Sparse { return a.patches }

func pow10(n int) float64 { return math.Pow(10, float64(n)) }

func (a *Array) decodeAt(i int) (float64, bool) {
	if !a.encoded.IsValid(i) {
		return 0, false
	}
	if a.patches != nil {
		if pos := sparsePosition(a.patches, i); pos >= 0 {
			v, _ := a.patches.Values().ScalarAt(pos)
			return v.Value.(float64), true
		}
	}
	raw := a.encoded.AsInt64(i)
	return float64(raw) * pow10(int(a.f)) / pow10(int(a.e)), true
}

// sparsePosition finds the position within a Sparse's value child holding
// logical index i, or -1. Sparse's index is strictly increasing, so a
// binary search locates it directly.
func sparsePosition(s *array.Sparse, i int) int {
	idx := s.Index()
	lo, hi := 0, idx.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		if idx.AsInt64(mid) < int64(i) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < idx.Len() && idx.AsInt64(lo) == int64(i) {
		return lo
	}
	return -1
}

func (a *Array) ScalarAt(i int) (scalar.Scalar, error) {
	if err := array.CheckBounds("alp.ScalarAt", i, a.Len()); err != nil {
		return scalar.Scalar{}, err
	}
	v, valid := a.decodeAt(i)
	if !valid {
		return scalar.Null(a.dt), nil
	}
	return scalar.Of(a.dt, v), nil
}

func (a *Array) Slice(start, stop int) (array.Array, error) {
	if err := array.CheckSliceBounds("alp.Slice", start, stop, a.Len()); err != nil {
		return nil, err
	}
	encSlice, err := a.encoded.Slice(start, stop)
	if err != nil {
		return nil, err
	}
	var patchSlice *array.Sparse
	if a.patches != nil {
		ps, err := a.patches.Slice(start, stop)
		if err != nil {
			return nil, err
		}
		patchSlice = ps.(*array.Sparse)
	}
	return New(encSlice.(*array.Primitive), a.e, a.f, patchSlice)
}

func (a *Array) Take(idx array.Array) (array.Array, error) {
	out, err := a.Canonicalize()
	if err != nil {
		return nil, err
	}
	return out.Take(idx)
}

func (a *Array) Canonicalize() (array.Array, error) {
	b := array.NewBuilder(a.dt)
	for i := 0; i < a.Len(); i++ {
		s, err := a.ScalarAt(i)
		if err != nil {
			return nil, err
		}
		b.Append(s)
	}
	return b.Finish(), nil
}

func (a *Array) computeStat(kind stats.Kind) (scalar.Scalar, bool) {
	switch kind {
	case stats.NullCount:
		return a.encoded.Stats().Get(stats.NullCount)
	default:
		return scalar.Scalar{}, false
	}
}
