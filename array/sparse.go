package array

import (
	"fmt"
	"sort"

	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/internal/derr"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// EncSparse is the persisted encoding-id of the Sparse canonical array.
const EncSparse = "vortex.sparse"

// Sparse represents an array of length n where most positions equal
// fillValue and a minority (given by index child I and value child V)
// hold an explicit value. It is used both standalone and as the patches
// child of ALPArray.
//
// Invariant (spec.md §3): I strictly increasing, 0 <= I[i] < n,
// |I| = |V|.
type Sparse struct {
	length    int
	index     *Primitive // non-nullable, Int
	values    Array      // length == index.Len()
	fillValue scalar.Scalar
	st        *stats.Set
}

// NewSparse builds a Sparse array. index must be non-nullable, strictly
// increasing, with every entry in [0, length); values must have the same
// length as index.
func NewSparse(index *Primitive, values Array, length int, fillValue scalar.Scalar) *Sparse {
	derr.PanicIfFalse(!index.DType().Nullable(), "array: NewSparse: index must be non-nullable")
	derr.PanicIfFalse(index.Len() == values.Len(), "array: NewSparse: index/values length mismatch: %d != %d", index.Len(), values.Len())
	prev := int64(-1)
	for i := 0; i < index.Len(); i++ {
		v := index.AsInt64(i)
		if v <= prev {
			panic(fmt.Sprintf("array: NewSparse: index not strictly increasing at %d: %d <= %d", i, v, prev))
		}
		if v < 0 || v >= int64(length) {
			panic(fmt.Sprintf("array: NewSparse: index %d out of range [0,%d)", v, length))
		}
		prev = v
	}
	s := &Sparse{length: length, index: index, values: values, fillValue: fillValue}
	s.st = stats.NewSet(s.computeStat)
	return s
}

func (s *Sparse) Len() int           { return s.length }
func (s *Sparse) DType() dtype.DType { return s.values.DType() }
func (s *Sparse) IsEmpty() bool      { return s.length == 0 }
func (s *Sparse) NBytes() int64      { return s.index.NBytes() + s.values.NBytes() }
func (s *Sparse) EncodingID() string { return EncSparse }
func (s *Sparse) Kind() Kind         { return KindSparse }
func (s *Sparse) Stats() *stats.Set  { return s.st }
func (s *Sparse) Children() []Array  { return []Array{s.index, s.values} }

// Index returns the sparse position index.
func (s *Sparse) Index() *Primitive { return s.index }

// Values returns the dense values aligned with Index.
func (s *Sparse) Values() Array { return s.values }

// FillValue returns the implicit value at positions absent from Index.
func (s *Sparse) FillValue() scalar.Scalar { return s.fillValue }

func (s *Sparse) Canonicalize() (Array, error) {
	b := NewBuilder(s.DType())
	for i := 0; i < s.length; i++ {
		v, err := s.ScalarAt(i)
		if err != nil {
			return nil, err
		}
		b.Append(v)
	}
	return b.Finish(), nil
}

// position returns the index into s.values holding logical position i,
// or -1 if i is not present (implying fillValue).
func (s *Sparse) position(i int) int {
	n := s.index.Len()
	j := sort.Search(n, func(k int) bool { return s.index.AsInt64(k) >= int64(i) })
	if j < n && s.index.AsInt64(j) == int64(i) {
		return j
	}
	return -1
}

func (s *Sparse) ScalarAt(i int) (scalar.Scalar, error) {
	if err := CheckBounds("Sparse.ScalarAt", i, s.length); err != nil {
		return scalar.Scalar{}, err
	}
	if p := s.position(i); p >= 0 {
		return s.values.ScalarAt(p)
	}
	return s.fillValue, nil
}

func (s *Sparse) Slice(a, b int) (Array, error) {
	if err := CheckSliceBounds("Sparse.Slice", a, b, s.length); err != nil {
		return nil, err
	}
	lo := sort.Search(s.index.Len(), func(k int) bool { return s.index.AsInt64(k) >= int64(a) })
	hi := sort.Search(s.index.Len(), func(k int) bool { return s.index.AsInt64(k) >= int64(b) })

	newIdxVals := make([]int64, hi-lo)
	for i := lo; i < hi; i++ {
		newIdxVals[i-lo] = s.index.AsInt64(i) - int64(a)
	}
	newIdx := buildIntPrimitive(dtype.Int(64, true, false), newIdxVals, nil)
	newVals, err := s.values.Slice(lo, hi)
	if err != nil {
		return nil, err
	}
	return NewSparse(newIdx, newVals, b-a, s.fillValue), nil
}

func (s *Sparse) Take(idx Array) (Array, error) {
	return takeGeneric(s, idx)
}

func (s *Sparse) computeStat(kind stats.Kind) (scalar.Scalar, bool) {
	switch kind {
	case stats.NullCount:
		if s.fillValue.IsNull() {
			vnc, ok := s.values.Stats().Get(stats.NullCount)
			if !ok {
				return scalar.Scalar{}, false
			}
			return scalar.Of(dtype.Int(64, false, false), int64(s.length-s.index.Len())+vnc.Value.(int64)), true
		}
		return s.values.Stats().Get(stats.NullCount)
	default:
		return scalar.Scalar{}, false
	}
}
