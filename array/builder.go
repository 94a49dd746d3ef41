package array

import (
	"fmt"

	"github.com/thomascherickal/vortex/buffer"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/scalar"
)

// Builder accumulates scalars and produces a canonical array. It backs
// every canonical fallback kernel (take, filter, scalar-coercion) the
// way a straight gather needs to build its result.
type Builder interface {
	Append(s scalar.Scalar)
	Finish() Array
}

// NewBuilder returns a Builder appropriate for dt's kind.
func NewBuilder(dt dtype.DType) Builder {
	switch dt.Kind() {
	case dtype.KindBool:
		return &boolBuilder{dt: dt}
	case dtype.KindInt, dtype.KindFloat:
		return &primBuilder{dt: dt}
	case dtype.KindUtf8, dtype.KindBinary:
		return &varBinBuilder{dt: dt}
	case dtype.KindStruct:
		names := dt.FieldNames()
		fields := dt.FieldTypes()
		subs := make([]Builder, len(fields))
		for i, f := range fields {
			subs[i] = NewBuilder(f)
		}
		return &structBuilder{dt: dt, names: names, subs: subs}
	default:
		panic(fmt.Sprintf("array: NewBuilder: unsupported dtype kind %s", dt.Kind()))
	}
}

// --- bool ---

type boolBuilder struct {
	dt   dtype.DType
	vals []bool
	val  []bool
}

func (b *boolBuilder) Append(s scalar.Scalar) {
	if s.IsNull() {
		b.vals = append(b.vals, false)
		b.val = append(b.val, false)
		return
	}
	b.vals = append(b.vals, s.Value.(bool))
	b.val = append(b.val, true)
}

func (b *boolBuilder) Finish() Array {
	return NewBoolFromGo(b.dt, b.vals, b.val)
}

// --- primitive (int/float) ---

type primBuilder struct {
	dt   dtype.DType
	ints []int64
	flts []float64
	val  []bool
}

func (p *primBuilder) Append(s scalar.Scalar) {
	valid := s.Valid
	p.val = append(p.val, valid)
	if p.dt.Kind() == dtype.KindInt {
		if !valid {
			p.ints = append(p.ints, 0)
			return
		}
		switch v := s.Value.(type) {
		case int64:
			p.ints = append(p.ints, v)
		case uint64:
			p.ints = append(p.ints, int64(v))
		default:
			panic(fmt.Sprintf("array: primBuilder: unexpected int value type %T", v))
		}
		return
	}
	if !valid {
		p.flts = append(p.flts, 0)
		return
	}
	p.flts = append(p.flts, s.Value.(float64))
}

func (p *primBuilder) Finish() Array {
	n := len(p.val)
	var validity *Bool
	if p.dt.Nullable() {
		validity = NewBoolFromGo(dtype.Bool(false), p.val, allTrue(n)).(*Bool)
	}
	if p.dt.Kind() == dtype.KindInt {
		return buildIntPrimitive(p.dt, p.ints, validity)
	}
	return buildFloatPrimitive(p.dt, p.flts, validity)
}

func allTrue(n int) []bool {
	v := make([]bool, n)
	for i := range v {
		v[i] = true
	}
	return v
}

func buildIntPrimitive(dt dtype.DType, vals []int64, validity *Bool) *Primitive {
	n := len(vals)
	switch dt.Width() {
	case 8:
		raw := make([]int8, n)
		for i, v := range vals {
			raw[i] = int8(v)
		}
		return NewPrimitive(dt, n, buffer.FromSlice(raw), validity)
	case 16:
		raw := make([]int16, n)
		for i, v := range vals {
			raw[i] = int16(v)
		}
		return NewPrimitive(dt, n, buffer.FromSlice(raw), validity)
	case 32:
		raw := make([]int32, n)
		for i, v := range vals {
			raw[i] = int32(v)
		}
		return NewPrimitive(dt, n, buffer.FromSlice(raw), validity)
	default:
		return NewPrimitive(dt, n, buffer.FromSlice(vals), validity)
	}
}

func buildFloatPrimitive(dt dtype.DType, vals []float64, validity *Bool) *Primitive {
	n := len(vals)
	switch dt.Width() {
	case 32:
		raw := make([]float32, n)
		for i, v := range vals {
			raw[i] = float32(v)
		}
		return NewPrimitive(dt, n, buffer.FromSlice(raw), validity)
	case 16:
		panic("array: building float16 primitives from scalars is not supported")
	default:
		return NewPrimitive(dt, n, buffer.FromSlice(vals), validity)
	}
}

// --- varbin (utf8/binary) ---

type varBinBuilder struct {
	dt   dtype.DType
	vals [][]byte
	val  []bool
}

func (v *varBinBuilder) Append(s scalar.Scalar) {
	if s.IsNull() {
		v.vals = append(v.vals, nil)
		v.val = append(v.val, false)
		return
	}
	switch x := s.Value.(type) {
	case string:
		v.vals = append(v.vals, []byte(x))
	case []byte:
		v.vals = append(v.vals, x)
	default:
		panic(fmt.Sprintf("array: varBinBuilder: unexpected value type %T", x))
	}
	v.val = append(v.val, true)
}

func (v *varBinBuilder) Finish() Array {
	var validity *Bool
	if v.dt.Nullable() {
		validity = NewBoolFromGo(dtype.Bool(false), v.val, allTrue(len(v.val))).(*Bool)
	}
	return NewVarBin(v.dt, v.vals, validity)
}

// --- struct ---

type structBuilder struct {
	dt    dtype.DType
	names []string
	subs  []Builder
}

func (s *structBuilder) Append(sc scalar.Scalar) {
	row, ok := sc.Value.(map[string]scalar.Scalar)
	if !ok {
		// Null struct row: push null into every field.
		for i, b := range s.subs {
			_, ft := s.dt.Field(i)
			b.Append(scalar.Null(ft))
		}
		return
	}
	for i, name := range s.names {
		b := s.subs[i]
		b.Append(row[name])
	}
}

func (s *structBuilder) Finish() Array {
	children := make([]Array, len(s.subs))
	for i, b := range s.subs {
		children[i] = b.Finish()
	}
	return NewStruct(s.dt, children)
}

// takeGeneric is the canonical "straight gather" fallback for Take: for
// each requested index, read the source scalar and append it to a fresh
// builder of the same dtype.
func takeGeneric(a Array, idx Array) (Array, error) {
	n := idx.Len()
	b := NewBuilder(a.DType())
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
			return nil, fmt.Errorf("take: index value has type %T, want integer", s.Value)
		}
		if err := CheckBounds("take", pos, a.Len()); err != nil {
			return nil, err
		}
		sv, err := a.ScalarAt(pos)
		if err != nil {
			return nil, err
		}
		b.Append(sv)
	}
	return b.Finish(), nil
}

// Filter gathers the positions of a where mask is true, via the
// canonical straight-gather fallback. Specialized encodings that can
// filter more cheaply are expected to canonicalize themselves first;
// see the compute package's dispatch policy.
func Filter(a Array, mask Array) (Array, error) {
	return filterGeneric(a, mask)
}

// filterGeneric is the canonical fallback for Filter: gather the
// positions where mask is true.
func filterGeneric(a Array, mask Array) (Array, error) {
	if mask.Len() != a.Len() {
		return nil, fmt.Errorf("array: filter: mask length %d != array length %d", mask.Len(), a.Len())
	}
	b := NewBuilder(a.DType())
	for i := 0; i < a.Len(); i++ {
		m, err := mask.ScalarAt(i)
		if err != nil {
			return nil, err
		}
		if m.IsNull() || !m.Value.(bool) {
			continue
		}
		sv, err := a.ScalarAt(i)
		if err != nil {
			return nil, err
		}
		b.Append(sv)
	}
	return b.Finish(), nil
}
