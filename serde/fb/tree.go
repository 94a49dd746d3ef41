package fb

import (
	flatbuffers "github.com/dolthub/flatbuffers/v23/go"
)

// Tree is the in-memory shape BuildTree/ReadTree convert to and from
// the wire TreeNode table. It serves both the per-message encoding
// header (Tag Buffer/Batch) and the footer's layout tree (Tag
// FlatLayout/ChunkedLayout/StructLayout).
type Tree struct {
	Tag        Tag
	EncodingID string
	Begin      uint64
	End        uint64
	BodyLength uint64
	Length     uint64 // logical element count, when Begin/End byte length alone is ambiguous
	Names      []string // StructLayout / struct message header field names
	Children   []Tree
}

// BuildTree writes n recursively and returns its table offset.
func BuildTree(b *flatbuffers.Builder, n Tree) flatbuffers.UOffsetT {
	childOffs := make([]flatbuffers.UOffsetT, len(n.Children))
	for i, c := range n.Children {
		childOffs[i] = BuildTree(b, c)
	}
	var childrenVec flatbuffers.UOffsetT
	if len(childOffs) > 0 {
		childrenVec = buildOffsetVector(b, childOffs)
	}

	nameOffs := make([]flatbuffers.UOffsetT, len(n.Names))
	for i, nm := range n.Names {
		nameOffs[i] = b.CreateString(nm)
	}
	var namesVec flatbuffers.UOffsetT
	if len(nameOffs) > 0 {
		namesVec = buildOffsetVector(b, nameOffs)
	}

	var idOff flatbuffers.UOffsetT
	if n.EncodingID != "" {
		idOff = b.CreateString(n.EncodingID)
	}

	b.StartObject(treeNumFields)
	b.PrependUint64Slot(treeFieldLength, n.Length, 0)
	if len(n.Children) > 0 {
		b.PrependUOffsetTSlot(treeFieldChildren, childrenVec, 0)
	}
	if len(n.Names) > 0 {
		b.PrependUOffsetTSlot(treeFieldNames, namesVec, 0)
	}
	b.PrependUint64Slot(treeFieldBodyLength, n.BodyLength, 0)
	b.PrependUint64Slot(treeFieldEnd, n.End, 0)
	b.PrependUint64Slot(treeFieldBegin, n.Begin, 0)
	if idOff != 0 {
		b.PrependUOffsetTSlot(treeFieldEncodingID, idOff, 0)
	}
	b.PrependUint8Slot(treeFieldTag, uint8(n.Tag), 0)
	return b.EndObject()
}

// ReadTree decodes a TreeNode rooted at pos in buf.
func ReadTree(buf []byte, pos flatbuffers.UOffsetT) Tree {
	t := &flatbuffers.Table{Bytes: buf, Pos: pos}
	var n Tree
	n.Tag = Tag(getUint8(t, treeFieldTag, 0))
	n.EncodingID, _ = getString(t, treeFieldEncodingID)
	n.Begin = getUint64(t, treeFieldBegin, 0)
	n.End = getUint64(t, treeFieldEnd, 0)
	n.BodyLength = getUint64(t, treeFieldBodyLength, 0)
	n.Length = getUint64(t, treeFieldLength, 0)

	nn := vectorLen(t, treeFieldNames)
	if nn > 0 {
		n.Names = make([]string, nn)
		for i := 0; i < nn; i++ {
			n.Names[i] = vectorStringAt(t, treeFieldNames, i)
		}
	}

	cn := vectorLen(t, treeFieldChildren)
	if cn > 0 {
		n.Children = make([]Tree, cn)
		for i := 0; i < cn; i++ {
			n.Children[i] = ReadTree(buf, vectorTableAt(t, treeFieldChildren, i))
		}
	}
	return n
}

// BuildMessage produces a finished, standalone flatbuffer holding
// header as the Message root table's header field, plus bodyLength and
// the xxhash64 checksum of the body bytes.
func BuildMessage(header Tree, bodyLength uint64, checksum uint64) []byte {
	b := NewBuilder()
	headerOff := BuildTree(b, header)
	b.StartObject(messageNumFields)
	b.PrependUint64Slot(messageFieldChecksum, checksum, 0)
	b.PrependUint64Slot(messageFieldBodyLength, bodyLength, 0)
	b.PrependUOffsetTSlot(messageFieldHeader, headerOff, 0)
	root := b.EndObject()
	b.Finish(root)
	return b.FinishedBytes()
}

// ReadMessage decodes a Message root table.
func ReadMessage(buf []byte) (header Tree, bodyLength uint64, checksum uint64) {
	t := rootTable(buf)
	bodyLength = getUint64(t, messageFieldBodyLength, 0)
	checksum = getUint64(t, messageFieldChecksum, 0)
	pos, ok := getTableOffset(t, messageFieldHeader)
	if !ok {
		panic("fb: ReadMessage: missing header field")
	}
	header = ReadTree(buf, pos)
	return header, bodyLength, checksum
}

// BuildFooter produces a finished, standalone flatbuffer holding layout
// as the Footer root table's layout field, plus fileID (a trace/debug
// correlation id stamped at write time) as its file_id field.
func BuildFooter(layout Tree, fileID string) []byte {
	b := NewBuilder()
	layoutOff := BuildTree(b, layout)
	idOff := b.CreateString(fileID)
	b.StartObject(footerNumFields)
	b.PrependUOffsetTSlot(footerFieldFileID, idOff, 0)
	b.PrependUOffsetTSlot(footerFieldLayout, layoutOff, 0)
	root := b.EndObject()
	b.Finish(root)
	return b.FinishedBytes()
}

// ReadFooter decodes a Footer root table's layout tree and file id.
func ReadFooter(buf []byte) (Tree, string) {
	t := rootTable(buf)
	pos, ok := getTableOffset(t, footerFieldLayout)
	if !ok {
		panic("fb: ReadFooter: missing layout field")
	}
	fileID, _ := getString(t, footerFieldFileID)
	return ReadTree(buf, pos), fileID
}
