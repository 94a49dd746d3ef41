package array

import (
	"fmt"

	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/internal/derr"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// EncStruct is the persisted encoding-id of the Struct canonical array.
const EncStruct = "vortex.struct"

// Struct is the canonical ground representation of Struct arrays: one
// child array per field, each of equal length to the struct itself.
type Struct struct {
	dt       dtype.DType
	length   int
	children []Array
	st       *stats.Set
}

// NewStruct builds a Struct array. Every child's length must equal the
// struct's own length (spec.md §3 invariant: "All children of a Struct
// have equal length = the struct's length.").
func NewStruct(dt dtype.DType, children []Array) *Struct {
	derr.PanicIfFalse(dt.Kind() == dtype.KindStruct, "array: NewStruct: dtype must be Struct")
	derr.PanicIfFalse(len(children) == dt.NumFields(), "array: NewStruct: %d children, want %d fields", len(children), dt.NumFields())
	length := 0
	if len(children) > 0 {
		length = children[0].Len()
	}
	for i, c := range children {
		if c.Len() != length {
			panic(fmt.Sprintf("array: NewStruct: child %d has length %d, want %d", i, c.Len(), length))
		}
	}
	s := &Struct{dt: dt, length: length, children: children}
	s.st = stats.NewSet(s.computeStat)
	return s
}

func (s *Struct) Len() int           { return s.length }
func (s *Struct) DType() dtype.DType { return s.dt }
func (s *Struct) IsEmpty() bool      { return s.length == 0 }
func (s *Struct) NBytes() int64 {
	var n int64
	for _, c := range s.children {
		n += c.NBytes()
	}
	return n
}
func (s *Struct) EncodingID() string        { return EncStruct }
func (s *Struct) Kind() Kind                { return KindStruct }
func (s *Struct) Stats() *stats.Set         { return s.st }
func (s *Struct) Children() []Array         { return s.children }
func (s *Struct) Canonicalize() (Array, error) { return s, nil }

// Field returns the child array for field index i.
func (s *Struct) Field(i int) Array { return s.children[i] }

// FieldByName returns the child array for the named field, or nil.
func (s *Struct) FieldByName(name string) Array {
	for i, n := range s.dt.FieldNames() {
		if n == name {
			return s.children[i]
		}
	}
	return nil
}

func (s *Struct) ScalarAt(i int) (scalar.Scalar, error) {
	if err := CheckBounds("Struct.ScalarAt", i, s.length); err != nil {
		return scalar.Scalar{}, err
	}
	row := make(map[string]scalar.Scalar, len(s.children))
	names := s.dt.FieldNames()
	for fi, c := range s.children {
		v, err := c.ScalarAt(i)
		if err != nil {
			return scalar.Scalar{}, err
		}
		row[names[fi]] = v
	}
	return scalar.Of(s.dt, row), nil
}

func (s *Struct) Slice(a, b int) (Array, error) {
	if err := CheckSliceBounds("Struct.Slice", a, b, s.length); err != nil {
		return nil, err
	}
	children := make([]Array, len(s.children))
	for i, c := range s.children {
		sc, err := c.Slice(a, b)
		if err != nil {
			return nil, err
		}
		children[i] = sc
	}
	return NewStruct(s.dt, children), nil
}

func (s *Struct) Take(idx Array) (Array, error) {
	children := make([]Array, len(s.children))
	for i, c := range s.children {
		tc, err := c.Take(idx)
		if err != nil {
			return nil, err
		}
		children[i] = tc
	}
	return NewStruct(s.dt, children), nil
}

func (s *Struct) computeStat(kind stats.Kind) (scalar.Scalar, bool) {
	if kind == stats.NullCount {
		return scalar.Of(dtype.Int(64, false, false), int64(0)), true
	}
	return scalar.Scalar{}, false
}
