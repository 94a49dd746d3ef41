package serde

import (
	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/internal/checksum"
	"github.com/thomascherickal/vortex/internal/derr"
	"github.com/thomascherickal/vortex/serde/fb"
)

// EncodedMessage is one on-disk "data message": a flatbuffer frame
// (EncodeArray's header tree plus the fixed Message wrapper) followed
// immediately by the array's raw, ALIGN-padded body bytes, exactly as
// spec.md §4.6 describes a message: "flatbuffer header || body bytes
// padded to ALIGN".
type EncodedMessage struct {
	// Frame is the finished Message flatbuffer (header tree + body
	// length), suitable to write as-is.
	Frame []byte
	// Body is the array's buffer payloads, already padded internally
	// between buffers by EncodeArray; the whole thing is padded once
	// more to ALIGN before the next message's frame begins.
	Body []byte
}

// EncodeArrayMessage serializes a into one EncodedMessage, stamping the
// body's xxhash64 checksum into the frame so a reader can detect a
// truncated or corrupted read before decoding.
func EncodeArrayMessage(a array.Array) EncodedMessage {
	header, body := EncodeArray(a)
	sum := checksum.Sum64(body)
	frame := fb.BuildMessage(header, uint64(len(body)), sum)
	return EncodedMessage{Frame: frame, Body: body}
}

// DecodeArrayMessage parses a message frame, verifies the body's
// checksum, and decodes the array it describes, given the body bytes
// that followed it in the stream and the column's logical dtype.
func DecodeArrayMessage(frame []byte, body []byte, dt dtype.DType) (array.Array, error) {
	header, bodyLength, sum := fb.ReadMessage(frame)
	if int(bodyLength) > len(body) {
		return nil, derr.New(derr.InvalidSerde, "serde.DecodeArrayMessage", "body too short: have %d bytes, want %d", len(body), bodyLength)
	}
	body = body[:bodyLength]
	if !checksum.Verify(body, sum) {
		return nil, derr.New(derr.InvalidSerde, "serde.DecodeArrayMessage", "body checksum mismatch")
	}
	return DecodeArray(header, dt, body)
}
