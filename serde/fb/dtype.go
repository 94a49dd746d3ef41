package fb

import (
	flatbuffers "github.com/dolthub/flatbuffers/v23/go"

	"github.com/thomascherickal/vortex/dtype"
)

// BuildDType writes dt as a DType node table and returns its offset.
// Caller is responsible for eventually finishing the builder with a
// root offset (BuildSchema does this for the top-level case).
func BuildDType(b *flatbuffers.Builder, dt dtype.DType) flatbuffers.UOffsetT {
	var namesVec, fieldsVec, elemOff flatbuffers.UOffsetT
	hasNames, hasFields, hasElem := false, false, false

	switch dt.Kind() {
	case dtype.KindStruct:
		names := dt.FieldNames()
		nameOffs := make([]flatbuffers.UOffsetT, len(names))
		for i, n := range names {
			nameOffs[i] = b.CreateString(n)
		}
		namesVec = buildOffsetVector(b, nameOffs)
		hasNames = true

		fields := dt.FieldTypes()
		fieldOffs := make([]flatbuffers.UOffsetT, len(fields))
		for i, f := range fields {
			fieldOffs[i] = BuildDType(b, f)
		}
		fieldsVec = buildOffsetVector(b, fieldOffs)
		hasFields = true
	case dtype.KindList:
		elemOff = BuildDType(b, dt.Elem())
		hasElem = true
	}

	b.StartObject(dtypeNumFields)
	if hasElem {
		b.PrependUOffsetTSlot(dtypeFieldElem, elemOff, 0)
	}
	if hasFields {
		b.PrependUOffsetTSlot(dtypeFieldFields, fieldsVec, 0)
	}
	if hasNames {
		b.PrependUOffsetTSlot(dtypeFieldNames, namesVec, 0)
	}
	b.PrependBoolSlot(dtypeFieldSigned, dt.Signed(), false)
	b.PrependUint8Slot(dtypeFieldWidth, uint8(dt.Width()), 0)
	b.PrependBoolSlot(dtypeFieldNullable, dt.Nullable(), false)
	b.PrependUint8Slot(dtypeFieldKind, uint8(dt.Kind()), 0)
	return b.EndObject()
}

// ReadDType decodes a DType node rooted at a table positioned at pos in
// buf (pos is the table's own Pos, i.e. already-indirected).
func ReadDType(buf []byte, pos flatbuffers.UOffsetT) dtype.DType {
	t := &flatbuffers.Table{Bytes: buf, Pos: pos}
	kind := dtype.Kind(getUint8(t, dtypeFieldKind, 0))
	nullable := getBool(t, dtypeFieldNullable, false)
	width := int(getUint8(t, dtypeFieldWidth, 0))
	signed := getBool(t, dtypeFieldSigned, false)

	switch kind {
	case dtype.KindNull:
		return dtype.Null()
	case dtype.KindBool:
		return dtype.Bool(nullable)
	case dtype.KindInt:
		return dtype.Int(width, signed, nullable)
	case dtype.KindFloat:
		return dtype.Float(width, nullable)
	case dtype.KindUtf8:
		return dtype.Utf8(nullable)
	case dtype.KindBinary:
		return dtype.Binary(nullable)
	case dtype.KindStruct:
		n := vectorLen(t, dtypeFieldNames)
		names := make([]string, n)
		for i := 0; i < n; i++ {
			names[i] = vectorStringAt(t, dtypeFieldNames, i)
		}
		fn := vectorLen(t, dtypeFieldFields)
		fields := make([]dtype.DType, fn)
		for i := 0; i < fn; i++ {
			fields[i] = ReadDType(buf, vectorTableAt(t, dtypeFieldFields, i))
		}
		return dtype.Struct(names, fields, nullable)
	case dtype.KindList:
		elemPos, ok := getTableOffset(t, dtypeFieldElem)
		if !ok {
			panic("fb: ReadDType: list missing elem field")
		}
		return dtype.List(ReadDType(buf, elemPos), nullable)
	default:
		panic("fb: ReadDType: unknown kind")
	}
}

// BuildSchema produces a finished, standalone flatbuffer holding dt as
// the Schema root table.
func BuildSchema(dt dtype.DType) []byte {
	b := NewBuilder()
	dtOff := BuildDType(b, dt)
	b.StartObject(schemaNumFields)
	b.PrependUOffsetTSlot(schemaFieldDType, dtOff, 0)
	root := b.EndObject()
	b.Finish(root)
	return b.FinishedBytes()
}

// ReadSchema decodes a Schema root table from a standalone flatbuffer
// produced by BuildSchema, or from an embedded region (buf sliced to
// the flatbuffer's own bytes, root-relative).
func ReadSchema(buf []byte) dtype.DType {
	t := rootTable(buf)
	pos, ok := getTableOffset(t, schemaFieldDType)
	if !ok {
		panic("fb: ReadSchema: missing dtype field")
	}
	return ReadDType(buf, pos)
}
