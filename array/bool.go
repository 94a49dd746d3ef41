package array

import (
	"fmt"

	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/internal/derr"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// EncBool is the persisted encoding-id of the Bool canonical array.
const EncBool = "vortex.bool"

// Bool is the canonical ground representation of boolean arrays: a
// packed bitset of values plus an optional packed bitset validity
// child.
type Bool struct {
	dt       dtype.DType
	length   int
	values   []uint64 // packed, LSB-first
	validity []uint64 // nil (len 0) when dt is non-nullable
	st       *stats.Set
}

func packedWords(n int) int { return (n + 63) / 64 }

func packBools(vals []bool) []uint64 {
	w := make([]uint64, packedWords(len(vals)))
	for i, v := range vals {
		if v {
			w[i/64] |= 1 << uint(i%64)
		}
	}
	return w
}

func bitAt(words []uint64, i int) bool {
	return words[i/64]&(1<<uint(i%64)) != 0
}

// NewBoolFromGo builds a Bool array from plain Go slices: vals holds the
// boolean values (ignored where valid[i] is false), valid holds
// per-element validity (pass nil/allTrue for non-nullable dt).
func NewBoolFromGo(dt dtype.DType, vals []bool, valid []bool) Array {
	if dt.Kind() != dtype.KindBool {
		dt = dtype.Bool(dt.Nullable())
	}
	b := &Bool{dt: dt, length: len(vals), values: packBools(vals)}
	if dt.Nullable() {
		if valid == nil {
			valid = allTrue(len(vals))
		}
		b.validity = packBools(valid)
	}
	b.st = stats.NewSet(b.computeStat)
	return b
}

// NewBool builds a non-nullable Bool array directly from packed words,
// as produced by a decoder. length is the logical bit count; words must
// have packedWords(length) entries.
func NewBool(length int, words []uint64) *Bool {
	if len(words) != packedWords(length) {
		panic(fmt.Sprintf("array: NewBool: %d words, want %d for length %d", len(words), packedWords(length), length))
	}
	b := &Bool{dt: dtype.Bool(false), length: length, values: words}
	b.st = stats.NewSet(b.computeStat)
	return b
}

func (b *Bool) Len() int           { return b.length }
func (b *Bool) DType() dtype.DType { return b.dt }
func (b *Bool) IsEmpty() bool      { return b.length == 0 }
func (b *Bool) NBytes() int64 {
	return int64(len(b.values)*8 + len(b.validity)*8)
}
func (b *Bool) EncodingID() string        { return EncBool }
func (b *Bool) Kind() Kind                { return KindBool }
func (b *Bool) Stats() *stats.Set         { return b.st }
func (b *Bool) Children() []Array         { return nil }
func (b *Bool) Canonicalize() (Array, error) { return b, nil }

// Value returns the i'th boolean value, ignoring validity.
func (b *Bool) Value(i int) bool { return bitAt(b.values, i) }

// IsValid reports whether element i is non-null.
func (b *Bool) IsValid(i int) bool {
	if b.validity == nil {
		return true
	}
	return bitAt(b.validity, i)
}

func (b *Bool) ScalarAt(i int) (scalar.Scalar, error) {
	if err := CheckBounds("Bool.ScalarAt", i, b.length); err != nil {
		return scalar.Scalar{}, err
	}
	if !b.IsValid(i) {
		return scalar.Null(b.dt), nil
	}
	return scalar.Of(b.dt, b.Value(i)), nil
}

func (b *Bool) Slice(a, c int) (Array, error) {
	if err := CheckSliceBounds("Bool.Slice", a, c, b.length); err != nil {
		return nil, err
	}
	n := c - a
	vals := make([]bool, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		vals[i] = b.Value(a + i)
		valid[i] = b.IsValid(a + i)
	}
	return NewBoolFromGo(b.dt, vals, valid), nil
}

func (b *Bool) Take(idx Array) (Array, error) {
	return takeGeneric(b, idx)
}

func (b *Bool) computeStat(kind stats.Kind) (scalar.Scalar, bool) {
	switch kind {
	case stats.NullCount:
		n := int64(0)
		for i := 0; i < b.length; i++ {
			if !b.IsValid(i) {
				n++
			}
		}
		return scalar.Of(dtype.Int(64, false, false), n), true
	case stats.TrueCount:
		n := int64(0)
		for i := 0; i < b.length; i++ {
			if b.IsValid(i) && b.Value(i) {
				n++
			}
		}
		return scalar.Of(dtype.Int(64, false, false), n), true
	case stats.IsConstant:
		if b.length == 0 {
			return scalar.Scalar{}, false
		}
		first := b.IsValid(0) && b.Value(0)
		for i := 1; i < b.length; i++ {
			if (b.IsValid(i) && b.Value(i)) != first {
				return scalar.Of(dtype.Bool(false), false), true
			}
		}
		return scalar.Of(dtype.Bool(false), true), true
	default:
		return computeOrderStats(b, kind)
	}
}

// And computes element-wise logical AND of two equal-length,
// non-nullable bool arrays.
func And(a, bArr *Bool) (*Bool, error) {
	if a.length != bArr.length {
		return nil, fmt.Errorf("array: And: length mismatch %d != %d", a.length, bArr.length)
	}
	derr.PanicIfFalse(!a.dt.Nullable() && !bArr.dt.Nullable(), "array: And: operands must be non-nullable")
	words := make([]uint64, packedWords(a.length))
	for i := range words {
		av, bv := uint64(0), uint64(0)
		if i < len(a.values) {
			av = a.values[i]
		}
		if i < len(bArr.values) {
			bv = bArr.values[i]
		}
		words[i] = av & bv
	}
	return NewBool(a.length, words), nil
}
