// Package array implements the polymorphic, recursive array hierarchy:
// every encoding — canonical or compressed — satisfies the Array
// contract and can serve as the child of another encoding. Canonical
// ("ground") encodings live in this package; specialized encodings live
// in sibling encoding/* packages and depend back on this one.
package array

import (
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/internal/derr"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// Array is the capability trait every encoding satisfies. Operations
// without a specialized implementation fall back to Canonicalize +
// retry; see the Default helpers below.
type Array interface {
	Len() int
	DType() dtype.DType
	IsEmpty() bool

	// NBytes returns the array's serialized byte count (not counting
	// shared/interned children more than once; see serde for the
	// authoritative on-disk accounting).
	NBytes() int64

	ScalarAt(i int) (scalar.Scalar, error)
	Slice(a, b int) (Array, error)

	// Take gathers by index; idx must be a non-nullable integer array.
	Take(idx Array) (Array, error)

	Stats() *stats.Set

	// EncodingID is the stable, persisted string identity of this
	// array's encoding (e.g. "vortex.primitive", "vortex.alp").
	EncodingID() string

	// Kind is the closed discriminant used for fast dispatch.
	Kind() Kind

	// Children returns the array's child arrays in on-disk order (empty
	// for leaves).
	Children() []Array

	// Canonicalize flattens the array into one of the ground
	// representations (Primitive, Bool, VarBin, Struct). Canonical
	// encodings return themselves. The only way this fails is
	// out-of-memory, which in Go surfaces as a panic rather than an
	// error; Canonicalize itself never returns a non-nil error in this
	// implementation but keeps the signature for encodings that embed
	// fallible decode steps (e.g. ALP patch application).
	Canonicalize() (Array, error)
}

// CheckBounds validates 0 <= i < n, returning an OutOfBounds error
// otherwise. Every encoding's ScalarAt should call this first.
func CheckBounds(op string, i, n int) error {
	if i < 0 || i >= n {
		return derr.New(derr.OutOfBounds, op, "index %d out of bounds for length %d", i, n)
	}
	return nil
}

// CheckSliceBounds validates 0 <= a <= b <= n.
func CheckSliceBounds(op string, a, b, n int) error {
	if a < 0 || b < a || b > n {
		return derr.New(derr.OutOfBounds, op, "slice [%d:%d] out of bounds for length %d", a, b, n)
	}
	return nil
}

// Equal reports deep, element-wise equality of two arrays of the same
// length via repeated ScalarAt — used by tests and format round-trip
// checks rather than by any hot path.
func Equal(a, b Array) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		sa, err := a.ScalarAt(i)
		if err != nil {
			return false
		}
		sb, err := b.ScalarAt(i)
		if err != nil {
			return false
		}
		if !sa.Equal(sb) {
			return false
		}
	}
	return true
}
