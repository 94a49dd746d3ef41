package serde

import (
	"encoding/binary"

	"github.com/thomascherickal/vortex/internal/derr"
)

// Magic is the 4 ASCII bytes every file ends with, per spec.md §6.
const Magic = "VTXF"

// TrailerSize is the fixed trailer length: two u64 offsets plus the
// 4-byte magic.
const TrailerSize = 8 + 8 + 4

// Trailer is the final fixed-size record of a file: the byte offsets
// of the schema and footer flatbuffers, little-endian, followed by the
// magic.
type Trailer struct {
	SchemaOffset uint64
	FooterOffset uint64
}

// Encode writes the 20-byte trailer.
func (t Trailer) Encode() []byte {
	buf := make([]byte, TrailerSize)
	binary.LittleEndian.PutUint64(buf[0:8], t.SchemaOffset)
	binary.LittleEndian.PutUint64(buf[8:16], t.FooterOffset)
	copy(buf[16:20], Magic)
	return buf
}

// DecodeTrailer parses the last TrailerSize bytes of a file, validating
// the magic.
func DecodeTrailer(buf []byte) (Trailer, error) {
	if len(buf) != TrailerSize {
		return Trailer{}, derr.New(derr.InvalidSerde, "serde.DecodeTrailer", "trailer must be %d bytes, got %d", TrailerSize, len(buf))
	}
	if string(buf[16:20]) != Magic {
		return Trailer{}, derr.New(derr.InvalidSerde, "serde.DecodeTrailer", "bad magic %q", buf[16:20])
	}
	return Trailer{
		SchemaOffset: binary.LittleEndian.Uint64(buf[0:8]),
		FooterOffset: binary.LittleEndian.Uint64(buf[8:16]),
	}, nil
}
