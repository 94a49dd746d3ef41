// Package scalar implements a DType-tagged boxed value used for point
// reads and comparisons.
//
// Following the original Rust source's enc/src/scalar/nullable.rs, a
// Scalar wraps nullness as a flag alongside the dtype rather than using a
// separate Null variant per dtype: Null(dtype) is Scalar{DType: dtype,
// Valid: false}.
package scalar

import (
	"fmt"

	"github.com/thomascherickal/vortex/dtype"
)

// Scalar is a boxed, DType-tagged single value.
type Scalar struct {
	DType dtype.DType
	Valid bool
	Value interface{}
}

// Null returns the distinct null scalar of the given dtype.
func Null(dt dtype.DType) Scalar {
	return Scalar{DType: dt, Valid: false}
}

// Of returns a valid scalar carrying value at the given dtype.
func Of(dt dtype.DType, value interface{}) Scalar {
	return Scalar{DType: dt, Valid: true, Value: value}
}

// IsNull reports whether the scalar is the null value.
func (s Scalar) IsNull() bool { return !s.Valid }

func (s Scalar) String() string {
	if !s.Valid {
		return fmt.Sprintf("null(%s)", s.DType)
	}
	return fmt.Sprintf("%v", s.Value)
}

// Equal compares two scalars by dtype, validity and value.
func (s Scalar) Equal(o Scalar) bool {
	if !s.DType.Equal(o.DType) || s.Valid != o.Valid {
		return false
	}
	if !s.Valid {
		return true
	}
	return s.Value == o.Value
}

// Compare orders two non-null scalars of comparable numeric/string value.
// It panics if either scalar is null; callers must check IsNull first.
func Compare(a, b Scalar) int {
	if a.IsNull() || b.IsNull() {
		panic("scalar: Compare called with a null scalar")
	}
	switch av := a.Value.(type) {
	case int64:
		bv := b.Value.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case uint64:
		bv := b.Value.(uint64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case float64:
		bv := b.Value.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case bool:
		bv := b.Value.(bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	case string:
		bv := b.Value.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	default:
		panic(fmt.Sprintf("scalar: Compare: unsupported value type %T", av))
	}
}
