package array

import (
	"fmt"
	"math"

	"github.com/thomascherickal/vortex/buffer"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/internal/derr"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// EncPrimitive is the persisted encoding-id of the Primitive canonical
// array.
const EncPrimitive = "vortex.primitive"

// Primitive is the canonical ground representation of Int/Float arrays:
// a contiguous native buffer plus an optional validity child.
type Primitive struct {
	dt       dtype.DType
	length   int
	data     buffer.Buffer
	validity *Bool // nil when dt is non-nullable
	st       *stats.Set
}

// NewPrimitive builds a Primitive array from raw little-endian element
// bytes. data.Len() must equal length * elemBytes(dt). validity may be
// nil only if dt is non-nullable; otherwise its length must equal
// length.
func NewPrimitive(dt dtype.DType, length int, data buffer.Buffer, validity *Bool) *Primitive {
	if !dt.IsNumeric() {
		panic(fmt.Sprintf("array: NewPrimitive: dtype %s is not numeric", dt))
	}
	want := length * elemBytes(dt)
	if data.Len() != want {
		panic(fmt.Sprintf("array: NewPrimitive: data has %d bytes, want %d for length %d", data.Len(), want, length))
	}
	if dt.Nullable() {
		derr.PanicIfFalse(validity != nil && validity.Len() == length, "array: NewPrimitive: nullable dtype requires validity of matching length")
	} else {
		derr.PanicIfFalse(validity == nil, "array: NewPrimitive: non-nullable dtype must not carry validity")
	}
	p := &Primitive{dt: dt, length: length, data: data, validity: validity}
	p.st = stats.NewSet(p.computeStat)
	return p
}

func elemBytes(dt dtype.DType) int {
	switch dt.Width() {
	case 8:
		return 1
	case 16:
		return 2
	case 32:
		return 4
	case 64:
		return 8
	default:
		panic(fmt.Sprintf("array: unsupported element width %d", dt.Width()))
	}
}

func (p *Primitive) Len() int          { return p.length }
func (p *Primitive) DType() dtype.DType { return p.dt }
func (p *Primitive) IsEmpty() bool     { return p.length == 0 }
func (p *Primitive) NBytes() int64 {
	n := int64(p.data.Len())
	if p.validity != nil {
		n += p.validity.NBytes()
	}
	return n
}
func (p *Primitive) EncodingID() string { return EncPrimitive }
func (p *Primitive) Kind() Kind         { return KindPrimitive }
func (p *Primitive) Stats() *stats.Set  { return p.st }
func (p *Primitive) Canonicalize() (Array, error) { return p, nil }

func (p *Primitive) Children() []Array {
	if p.validity == nil {
		return nil
	}
	return []Array{p.validity}
}

// Data returns the raw element buffer (read-only).
func (p *Primitive) Data() buffer.Buffer { return p.data }

// Validity returns the validity child, or nil if non-nullable.
func (p *Primitive) Validity() *Bool { return p.validity }

// IsValid reports whether element i is non-null.
func (p *Primitive) IsValid(i int) bool {
	if p.validity == nil {
		return true
	}
	v, _ := p.validity.ScalarAt(i)
	return v.Valid && v.Value.(bool)
}

// AsInt64 decodes the element at i as int64, regardless of stored width,
// for use by compute kernels and stats. Caller must ensure the dtype is
// an integer type.
func (p *Primitive) AsInt64(i int) int64 {
	switch p.dt.Width() {
	case 8:
		v := buffer.View[int8](p.data)[i]
		if !p.dt.Signed() {
			return int64(uint8(v))
		}
		return int64(v)
	case 16:
		v := buffer.View[int16](p.data)[i]
		if !p.dt.Signed() {
			return int64(uint16(v))
		}
		return int64(v)
	case 32:
		v := buffer.View[int32](p.data)[i]
		if !p.dt.Signed() {
			return int64(uint32(v))
		}
		return int64(v)
	default:
		v := buffer.View[int64](p.data)[i]
		if !p.dt.Signed() {
			return int64(uint64(v))
		}
		return v
	}
}

// AsFloat64 decodes the element at i as float64. Caller must ensure the
// dtype is a float type.
func (p *Primitive) AsFloat64(i int) float64 {
	switch p.dt.Width() {
	case 16:
		bits := buffer.View[uint16](p.data)[i]
		return float64(half2float32(bits))
	case 32:
		return float64(buffer.View[float32](p.data)[i])
	default:
		return buffer.View[float64](p.data)[i]
	}
}

func half2float32(h uint16) float32 {
	sign := uint32(h>>15) & 1
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff
	var bits uint32
	switch exp {
	case 0:
		if frac == 0 {
			bits = sign << 31
		} else {
			for frac&0x400 == 0 {
				frac <<= 1
				exp--
			}
			exp++
			frac &= 0x3ff
			bits = (sign << 31) | ((exp + 112) << 23) | (frac << 13)
		}
	case 0x1f:
		bits = (sign << 31) | (0xff << 23) | (frac << 13)
	default:
		bits = (sign << 31) | ((exp + 112) << 23) | (frac << 13)
	}
	return math.Float32frombits(bits)
}

func (p *Primitive) ScalarAt(i int) (scalar.Scalar, error) {
	if err := CheckBounds("Primitive.ScalarAt", i, p.length); err != nil {
		return scalar.Scalar{}, err
	}
	if !p.IsValid(i) {
		return scalar.Null(p.dt), nil
	}
	if p.dt.Kind() == dtype.KindInt {
		if p.dt.Signed() {
			return scalar.Of(p.dt, p.AsInt64(i)), nil
		}
		return scalar.Of(p.dt, uint64(p.AsInt64(i))), nil
	}
	return scalar.Of(p.dt, p.AsFloat64(i)), nil
}

func (p *Primitive) Slice(a, b int) (Array, error) {
	if err := CheckSliceBounds("Primitive.Slice", a, b, p.length); err != nil {
		return nil, err
	}
	size := elemBytes(p.dt)
	data := p.data.Slice(a*size, b*size)
	var validity *Bool
	if p.validity != nil {
		v, err := p.validity.Slice(a, b)
		if err != nil {
			return nil, err
		}
		validity = v.(*Bool)
	}
	return NewPrimitive(p.dt, b-a, data, validity), nil
}

func (p *Primitive) Take(idx Array) (Array, error) {
	return takeGeneric(p, idx)
}

func (p *Primitive) computeStat(kind stats.Kind) (scalar.Scalar, bool) {
	switch kind {
	case stats.NullCount:
		if p.validity == nil {
			return scalar.Of(dtype.Int(64, false, false), int64(0)), true
		}
		n := int64(0)
		for i := 0; i < p.length; i++ {
			if !p.IsValid(i) {
				n++
			}
		}
		return scalar.Of(dtype.Int(64, false, false), n), true
	case stats.Min, stats.Max, stats.IsSorted, stats.IsConstant, stats.BitWidth, stats.RunCount:
		return computeOrderStats(p, kind)
	default:
		return scalar.Scalar{}, false
	}
}

// computeOrderStats scans the array once for min/max/is-sorted/is-
// constant/run-count/bit-width, shared by any array whose ScalarAt walk
// is cheap enough to not warrant a specialized kernel.
func computeOrderStats(a Array, kind stats.Kind) (scalar.Scalar, bool) {
	n := a.Len()
	if n == 0 {
		return scalar.Scalar{}, false
	}
	var min, max scalar.Scalar
	sorted := true
	constant := true
	runCount := int64(1)
	maxBits := 0
	first := true
	var prev scalar.Scalar
	for i := 0; i < n; i++ {
		s, err := a.ScalarAt(i)
		if err != nil {
			return scalar.Scalar{}, false
		}
		if s.IsNull() {
			continue
		}
		if first {
			min, max, prev = s, s, s
			first = false
		} else {
			if scalar.Compare(s, min) < 0 {
				min = s
			}
			if scalar.Compare(s, max) > 0 {
				max = s
			}
			if scalar.Compare(s, prev) < 0 {
				sorted = false
			}
			if !s.Equal(prev) {
				constant = false
				runCount++
			}
			prev = s
		}
		if iv, ok := s.Value.(int64); ok {
			if w := stats.EstimateBitWidth(iv); w > maxBits {
				maxBits = w
			}
		}
	}
	if first {
		return scalar.Scalar{}, false
	}
	switch kind {
	case stats.Min:
		return min, true
	case stats.Max:
		return max, true
	case stats.IsSorted:
		return scalar.Of(dtype.Bool(false), sorted), true
	case stats.IsConstant:
		return scalar.Of(dtype.Bool(false), constant), true
	case stats.RunCount:
		return scalar.Of(dtype.Int(64, false, false), runCount), true
	case stats.BitWidth:
		return scalar.Of(dtype.Int(64, false, false), int64(maxBits)), true
	default:
		return scalar.Scalar{}, false
	}
}
