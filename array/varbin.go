package array

import (
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// EncVarBin is the persisted encoding-id of the VarBin canonical array.
const EncVarBin = "vortex.varbin"

// VarBin is the canonical ground representation of Utf8/Binary arrays:
// offsets + concatenated byte data, plus an optional validity child.
type VarBin struct {
	dt       dtype.DType
	offsets  []int32 // length+1 entries
	data     []byte
	validity *Bool
	st       *stats.Set
}

// NewVarBin builds a VarBin array from a slice of values (nil and
// length-0 entries are both stored as empty; which entries are null is
// decided by validity alone). validity may be nil for a non-nullable
// dtype.
func NewVarBin(dt dtype.DType, vals [][]byte, validity *Bool) *VarBin {
	offsets := make([]int32, len(vals)+1)
	var data []byte
	for i, v := range vals {
		data = append(data, v...)
		offsets[i+1] = int32(len(data))
	}
	v := &VarBin{dt: dt, offsets: offsets, data: data, validity: validity}
	v.st = stats.NewSet(v.computeStat)
	return v
}

func (v *VarBin) Len() int           { return len(v.offsets) - 1 }
func (v *VarBin) DType() dtype.DType { return v.dt }
func (v *VarBin) IsEmpty() bool      { return v.Len() == 0 }
func (v *VarBin) NBytes() int64 {
	n := int64(len(v.data) + len(v.offsets)*4)
	if v.validity != nil {
		n += v.validity.NBytes()
	}
	return n
}
func (v *VarBin) EncodingID() string        { return EncVarBin }
func (v *VarBin) Kind() Kind                { return KindVarBin }
func (v *VarBin) Stats() *stats.Set         { return v.st }
func (v *VarBin) Canonicalize() (Array, error) { return v, nil }

func (v *VarBin) Children() []Array {
	if v.validity == nil {
		return nil
	}
	return []Array{v.validity}
}

// Bytes returns the raw bytes of element i.
func (v *VarBin) Bytes(i int) []byte {
	return v.data[v.offsets[i]:v.offsets[i+1]]
}

// IsValid reports whether element i is non-null.
func (v *VarBin) IsValid(i int) bool {
	if v.validity == nil {
		return true
	}
	return v.validity.IsValid(i) && v.validity.Value(i)
}

func (v *VarBin) ScalarAt(i int) (scalar.Scalar, error) {
	if err := CheckBounds("VarBin.ScalarAt", i, v.Len()); err != nil {
		return scalar.Scalar{}, err
	}
	if !v.IsValid(i) {
		return scalar.Null(v.dt), nil
	}
	b := v.Bytes(i)
	if v.dt.Kind() == dtype.KindUtf8 {
		return scalar.Of(v.dt, string(b)), nil
	}
	return scalar.Of(v.dt, append([]byte(nil), b...)), nil
}

func (v *VarBin) Slice(a, c int) (Array, error) {
	if err := CheckSliceBounds("VarBin.Slice", a, c, v.Len()); err != nil {
		return nil, err
	}
	n := c - a
	vals := make([][]byte, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		valid[i] = v.IsValid(a + i)
		if valid[i] {
			vals[i] = v.Bytes(a + i)
		}
	}
	var validity *Bool
	if v.dt.Nullable() {
		validity = NewBoolFromGo(dtype.Bool(false), valid, allTrue(n)).(*Bool)
	}
	return NewVarBin(v.dt, vals, validity), nil
}

func (v *VarBin) Take(idx Array) (Array, error) {
	return takeGeneric(v, idx)
}

func (v *VarBin) computeStat(kind stats.Kind) (scalar.Scalar, bool) {
	switch kind {
	case stats.NullCount:
		n := int64(0)
		for i := 0; i < v.Len(); i++ {
			if !v.IsValid(i) {
				n++
			}
		}
		return scalar.Of(dtype.Int(64, false, false), n), true
	default:
		return computeOrderStats(v, kind)
	}
}
