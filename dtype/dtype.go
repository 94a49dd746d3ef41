// Package dtype implements the logical type system shared by every array
// encoding: a closed sum of {Bool, Int, Float, Utf8, Binary, Struct, List,
// Null}, with nullability carried as a separate axis from the shape of
// the type itself.
package dtype

import "fmt"

// Kind discriminates the logical type families. It mirrors the closed
// Kind enum the teacher uses for its value hierarchy (types.NomsKind),
// but scoped to this library's logical types rather than a full value
// model.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindUtf8
	KindBinary
	KindStruct
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindUtf8:
		return "utf8"
	case KindBinary:
		return "binary"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// DType is an immutable logical type. Construct one with the package
// constructors (Bool, Int, Float, Utf8, Binary, Struct, List, Null) —
// never with a struct literal, so the invariants below always hold.
type DType struct {
	kind     Kind
	nullable bool

	// Int/Float
	width int

	// Int
	signed bool

	// Struct
	fieldNames []string
	fieldTypes []DType

	// List
	elem *DType
}

// Null is the degenerate type of the Null scalar; it carries no
// nullability axis of its own (it is always "null").
func Null() DType { return DType{kind: KindNull} }

// Bool returns the Bool(nullable) type.
func Bool(nullable bool) DType { return DType{kind: KindBool, nullable: nullable} }

// Int returns the Int(width, signed, nullable) type. width must be one of
// 8, 16, 32, 64.
func Int(width int, signed, nullable bool) DType {
	mustWidth(width, 8, 16, 32, 64)
	return DType{kind: KindInt, width: width, signed: signed, nullable: nullable}
}

// Float returns the Float(width, nullable) type. width must be one of
// 16, 32, 64.
func Float(width int, nullable bool) DType {
	mustWidth(width, 16, 32, 64)
	return DType{kind: KindFloat, width: width, nullable: nullable}
}

// Utf8 returns the Utf8(nullable) type.
func Utf8(nullable bool) DType { return DType{kind: KindUtf8, nullable: nullable} }

// Binary returns the Binary(nullable) type.
func Binary(nullable bool) DType { return DType{kind: KindBinary, nullable: nullable} }

// Struct returns the Struct(names, dtypes, nullable) type. len(names) must
// equal len(fields).
func Struct(names []string, fields []DType, nullable bool) DType {
	if len(names) != len(fields) {
		panic(fmt.Sprintf("dtype: Struct: %d names but %d fields", len(names), len(fields)))
	}
	n := append([]string(nil), names...)
	f := append([]DType(nil), fields...)
	return DType{kind: KindStruct, fieldNames: n, fieldTypes: f, nullable: nullable}
}

// List returns the List(elem, nullable) type.
func List(elem DType, nullable bool) DType {
	e := elem
	return DType{kind: KindList, elem: &e, nullable: nullable}
}

func mustWidth(width int, allowed ...int) {
	for _, a := range allowed {
		if width == a {
			return
		}
	}
	panic(fmt.Sprintf("dtype: invalid width %d, want one of %v", width, allowed))
}

// Kind returns the type's discriminant.
func (d DType) Kind() Kind { return d.kind }

// Nullable reports whether values of this type may be null. Always false
// for Null itself.
func (d DType) Nullable() bool { return d.nullable }

// Width returns the bit width for Int/Float types; 0 otherwise.
func (d DType) Width() int { return d.width }

// Signed reports signedness for Int types; meaningless otherwise.
func (d DType) Signed() bool { return d.signed }

// Elem returns the element type of a List; panics otherwise.
func (d DType) Elem() DType {
	if d.kind != KindList {
		panic("dtype: Elem called on non-List type")
	}
	return *d.elem
}

// FieldNames returns the field names of a Struct; nil otherwise.
func (d DType) FieldNames() []string {
	if d.kind != KindStruct {
		return nil
	}
	return append([]string(nil), d.fieldNames...)
}

// FieldTypes returns the field types of a Struct; nil otherwise.
func (d DType) FieldTypes() []DType {
	if d.kind != KindStruct {
		return nil
	}
	return append([]DType(nil), d.fieldTypes...)
}

// Field returns the i'th field name/type of a Struct.
func (d DType) Field(i int) (string, DType) {
	return d.fieldNames[i], d.fieldTypes[i]
}

// NumFields returns the number of fields of a Struct; 0 otherwise.
func (d DType) NumFields() int { return len(d.fieldTypes) }

// WithNullable returns a copy of d with nullability set to nullable. It
// is invalid to call this on Null.
func (d DType) WithNullable(nullable bool) DType {
	if d.kind == KindNull {
		return d
	}
	d.nullable = nullable
	return d
}

// Equal reports structural equality, ignoring nothing (nullability,
// width, signedness and struct/list shape must all match).
func (d DType) Equal(o DType) bool {
	if d.kind != o.kind || d.nullable != o.nullable {
		return false
	}
	switch d.kind {
	case KindInt:
		return d.width == o.width && d.signed == o.signed
	case KindFloat:
		return d.width == o.width
	case KindStruct:
		if len(d.fieldNames) != len(o.fieldNames) {
			return false
		}
		for i := range d.fieldNames {
			if d.fieldNames[i] != o.fieldNames[i] || !d.fieldTypes[i].Equal(o.fieldTypes[i]) {
				return false
			}
		}
		return true
	case KindList:
		return d.elem.Equal(*o.elem)
	default:
		return true
	}
}

// IsNumeric reports whether the type is Int or Float.
func (d DType) IsNumeric() bool { return d.kind == KindInt || d.kind == KindFloat }

func (d DType) String() string {
	switch d.kind {
	case KindInt:
		sign := "u"
		if d.signed {
			sign = "i"
		}
		return fmt.Sprintf("%s%d%s", sign, d.width, nullSuffix(d.nullable))
	case KindFloat:
		return fmt.Sprintf("f%d%s", d.width, nullSuffix(d.nullable))
	case KindBool:
		return "bool" + nullSuffix(d.nullable)
	case KindUtf8:
		return "utf8" + nullSuffix(d.nullable)
	case KindBinary:
		return "binary" + nullSuffix(d.nullable)
	case KindStruct:
		return fmt.Sprintf("struct%s", nullSuffix(d.nullable))
	case KindList:
		return fmt.Sprintf("list<%s>%s", d.elem.String(), nullSuffix(d.nullable))
	default:
		return "null"
	}
}

func nullSuffix(nullable bool) string {
	if nullable {
		return "?"
	}
	return ""
}
