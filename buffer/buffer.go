// Package buffer implements the contiguous, aligned byte region every
// canonical array stores its primitive values in, plus zero-copy typed
// views over it.
package buffer

import (
	"fmt"
	"unsafe"
)

// Align is the minimum alignment every Buffer's backing array satisfies,
// matching spec.md's Buffer invariant (alignment >= 64) and the flat
// byte-range padding ALIGN used by the file format.
const Align = 64

// Buffer is an owned, aligned region of bytes. It is immutable once
// constructed; slicing returns a new Buffer sharing the same backing
// array (reference counted via Go's GC, not by hand).
type Buffer struct {
	data  []byte
	alloc []byte // over-allocated backing array, data is the aligned sub-slice
}

// New allocates a zeroed Buffer of n bytes, aligned to Align.
func New(n int) Buffer {
	alloc := make([]byte, n+Align)
	off := alignOffset(alloc)
	return Buffer{data: alloc[off : off+n : off+n], alloc: alloc}
}

// FromBytes copies b into a newly aligned Buffer.
func FromBytes(b []byte) Buffer {
	buf := New(len(b))
	copy(buf.data, b)
	return buf
}

func alignOffset(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	addr := uintptr(unsafe.Pointer(&b[0]))
	rem := addr % Align
	if rem == 0 {
		return 0
	}
	return int(Align - rem)
}

// Len returns the buffer's length in bytes.
func (b Buffer) Len() int { return len(b.data) }

// Bytes returns the raw backing bytes. Callers must not mutate them —
// buffers are immutable once constructed.
func (b Buffer) Bytes() []byte { return b.data }

// Slice returns the byte range [a, b) as a new Buffer header sharing the
// same backing array (zero-copy).
func (b Buffer) Slice(a, c int) Buffer {
	if a < 0 || c < a || c > len(b.data) {
		panic(fmt.Sprintf("buffer: Slice(%d,%d) out of range for len %d", a, c, len(b.data)))
	}
	return Buffer{data: b.data[a:c], alloc: b.alloc}
}

// elemSize reports the byte size of element type T.
func elemSize[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// View reinterprets the buffer as a typed slice of T without copying. It
// panics if the buffer's length is not a multiple of sizeof(T).
func View[T any](b Buffer) []T {
	size := elemSize[T]()
	if size == 0 {
		return nil
	}
	if len(b.data)%size != 0 {
		panic(fmt.Sprintf("buffer: View: length %d not a multiple of element size %d", len(b.data), size))
	}
	n := len(b.data) / size
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b.data[0])), n)
}

// FromSlice builds a Buffer by copying the bytes of a typed slice.
func FromSlice[T any](vals []T) Buffer {
	size := elemSize[T]()
	if len(vals) == 0 {
		return New(0)
	}
	n := len(vals) * size
	buf := New(n)
	src := unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), n)
	copy(buf.data, src)
	return buf
}
