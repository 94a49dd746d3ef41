// Package fb implements the hand-written flatbuffer tables the file
// format uses: no schema compiler is involved, the vtable field layout
// is simply fixed by the constants below and read back with the same
// offsets a flatc-generated accessor would use. Grounded in the
// original source's vortex-flatbuffers-derived Schema/Message/Footer
// root tables (vortex-serde/src/layouts/reader/footer.rs,
// vortex-ipc/src/lib.rs's ALIGNMENT constant) and built on the
// teacher's wire library, github.com/dolthub/flatbuffers/v23, the same
// fork the teacher vendors for go/store/prolly/message and
// go/store/serial.
package fb

import (
	flatbuffers "github.com/dolthub/flatbuffers/v23/go"
)

// Align is the byte alignment every buffer payload is padded to before
// the next message begins.
const Align = 64

// PadTo returns n rounded up to the next multiple of Align.
func PadTo(n int) int {
	rem := n % Align
	if rem == 0 {
		return n
	}
	return n + (Align - rem)
}

// --- DType node ---

const (
	dtypeFieldKind     = 0
	dtypeFieldNullable = 1
	dtypeFieldWidth    = 2
	dtypeFieldSigned   = 3
	dtypeFieldNames    = 4
	dtypeFieldFields   = 5
	dtypeFieldElem     = 6
	dtypeNumFields     = 7
)

// --- Schema root table ---

const (
	schemaFieldDType = 0
	schemaNumFields  = 1
)

// --- TreeNode: shared shape for both the per-message encoding header
// tree and the footer's layout tree. ---

// Tag discriminates what a TreeNode represents.
type Tag uint8

const (
	// Message header tags.
	TagBuffer Tag = iota // leaf: one array with no nested encoded children besides raw buffers
	TagBatch             // composite: an encoding with children that are themselves TreeNodes (e.g. ALP's patches)

	// Footer layout tags.
	TagFlatLayout
	TagChunkedLayout
	TagStructLayout
)

const (
	treeFieldTag        = 0
	treeFieldEncodingID = 1
	treeFieldBegin      = 2
	treeFieldEnd        = 3
	treeFieldChildren   = 4
	treeFieldNames      = 5
	treeFieldBodyLength = 6
	treeFieldLength     = 7
	treeNumFields       = 8
)

// --- Message root table ---

const (
	messageFieldHeader     = 0
	messageFieldBodyLength = 1
	messageFieldChecksum   = 2
	messageNumFields       = 3
)

// --- Footer root table ---

const (
	footerFieldLayout = 0
	footerFieldFileID = 1
	footerNumFields   = 2
)

func vtableOffset(fieldIndex int) flatbuffers.VOffsetT {
	return flatbuffers.VOffsetT(4 + 2*fieldIndex)
}

// NewBuilder returns a fresh flatbuffers builder with a sensible
// starting capacity for the small trees this format builds.
func NewBuilder() *flatbuffers.Builder {
	return flatbuffers.NewBuilder(256)
}

// --- generic table read helpers ---

func fieldOffset(t *flatbuffers.Table, fieldIndex int) (flatbuffers.UOffsetT, bool) {
	o := t.Offset(vtableOffset(fieldIndex))
	if o == 0 {
		return 0, false
	}
	return o, true
}

func getUint8(t *flatbuffers.Table, fieldIndex int, def uint8) uint8 {
	o, ok := fieldOffset(t, fieldIndex)
	if !ok {
		return def
	}
	return t.GetUint8(t.Pos + o)
}

func getBool(t *flatbuffers.Table, fieldIndex int, def bool) bool {
	o, ok := fieldOffset(t, fieldIndex)
	if !ok {
		return def
	}
	return t.GetBool(t.Pos + o)
}

func getUint64(t *flatbuffers.Table, fieldIndex int, def uint64) uint64 {
	o, ok := fieldOffset(t, fieldIndex)
	if !ok {
		return def
	}
	return t.GetUint64(t.Pos + o)
}

func getString(t *flatbuffers.Table, fieldIndex int) (string, bool) {
	o, ok := fieldOffset(t, fieldIndex)
	if !ok {
		return "", false
	}
	return t.String(t.Pos + o), true
}

func getTableOffset(t *flatbuffers.Table, fieldIndex int) (flatbuffers.UOffsetT, bool) {
	o, ok := fieldOffset(t, fieldIndex)
	if !ok {
		return 0, false
	}
	return t.Indirect(t.Pos + o), true
}

// vectorLen returns the element count of a vector field, or 0 if absent.
func vectorLen(t *flatbuffers.Table, fieldIndex int) int {
	o, ok := fieldOffset(t, fieldIndex)
	if !ok {
		return 0
	}
	return t.VectorLen(t.Pos + o)
}

// vectorTableAt returns the i'th element of an offset-vector (vector of
// nested tables/strings) field as an indirected table position.
func vectorTableAt(t *flatbuffers.Table, fieldIndex int, i int) flatbuffers.UOffsetT {
	o, _ := fieldOffset(t, fieldIndex)
	vec := t.Vector(t.Pos + o)
	elemPos := vec + flatbuffers.UOffsetT(i)*4
	return t.Indirect(elemPos)
}

// vectorStringAt returns the i'th element of a vector<string> field.
func vectorStringAt(t *flatbuffers.Table, fieldIndex int, i int) string {
	o, _ := fieldOffset(t, fieldIndex)
	vec := t.Vector(t.Pos + o)
	elemPos := vec + flatbuffers.UOffsetT(i)*4
	return t.String(elemPos)
}

// rootTable builds a *flatbuffers.Table for the root object in buf.
func rootTable(buf []byte) *flatbuffers.Table {
	n := flatbuffers.GetUOffsetT(buf)
	return &flatbuffers.Table{Bytes: buf, Pos: n}
}

// buildOffsetVector writes a vector of already-created offsets (table
// or string) in flatbuffers' required reverse order and returns the
// vector's offset.
func buildOffsetVector(b *flatbuffers.Builder, offs []flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	b.StartVector(4, len(offs), 4)
	for i := len(offs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offs[i])
	}
	return b.EndVector(len(offs))
}
