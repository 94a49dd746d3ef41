package array

import (
	"sort"

	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/internal/derr"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

// EncChunked is the persisted encoding-id of the Chunked canonical array.
const EncChunked = "vortex.chunked"

// Chunked is an array whose children are same-typed arrays logically
// concatenated. Its length is the sum of its children's lengths; all
// children share the same DType. Chunked records cumulative offsets so
// scalar_at and the chunk-containing-position lookup are O(log
// numChunks) rather than a linear scan.
type Chunked struct {
	dt       dtype.DType
	chunks   []Array
	offsets  []int // len(chunks)+1, offsets[i] is the logical start of chunks[i]
	st       *stats.Set
}

// NewChunked builds a Chunked array over chunks, all of which must share
// dt.
func NewChunked(dt dtype.DType, chunks []Array) *Chunked {
	offsets := make([]int, len(chunks)+1)
	for i, c := range chunks {
		derr.PanicIfFalse(c.DType().Equal(dt), "array: NewChunked: child %d has dtype %s, want %s", i, c.DType(), dt)
		offsets[i+1] = offsets[i] + c.Len()
	}
	ch := &Chunked{dt: dt, chunks: chunks, offsets: offsets}
	ch.st = stats.NewSet(ch.computeStat)
	return ch
}

func (c *Chunked) Len() int           { return c.offsets[len(c.offsets)-1] }
func (c *Chunked) DType() dtype.DType { return c.dt }
func (c *Chunked) IsEmpty() bool      { return c.Len() == 0 }
func (c *Chunked) NBytes() int64 {
	var n int64
	for _, ch := range c.chunks {
		n += ch.NBytes()
	}
	return n
}
func (c *Chunked) EncodingID() string { return EncChunked }
func (c *Chunked) Kind() Kind         { return KindChunked }
func (c *Chunked) Stats() *stats.Set  { return c.st }
func (c *Chunked) Children() []Array  { return c.chunks }
func (c *Chunked) Canonicalize() (Array, error) {
	b := NewBuilder(c.dt)
	for i := 0; i < c.Len(); i++ {
		s, err := c.ScalarAt(i)
		if err != nil {
			return nil, err
		}
		b.Append(s)
	}
	return b.Finish(), nil
}

// NumChunks returns the number of child chunks.
func (c *Chunked) NumChunks() int { return len(c.chunks) }

// Chunk returns the i'th chunk.
func (c *Chunked) Chunk(i int) Array { return c.chunks[i] }

// locate returns the chunk index containing logical position i and the
// offset within that chunk.
func (c *Chunked) locate(i int) (chunkIdx, offset int) {
	// offsets is sorted ascending; find the last offset <= i.
	idx := sort.Search(len(c.offsets), func(k int) bool { return c.offsets[k] > i }) - 1
	return idx, i - c.offsets[idx]
}

func (c *Chunked) ScalarAt(i int) (scalar.Scalar, error) {
	if err := CheckBounds("Chunked.ScalarAt", i, c.Len()); err != nil {
		return scalar.Scalar{}, err
	}
	ci, off := c.locate(i)
	return c.chunks[ci].ScalarAt(off)
}

func (c *Chunked) Slice(a, b int) (Array, error) {
	if err := CheckSliceBounds("Chunked.Slice", a, b, c.Len()); err != nil {
		return nil, err
	}
	if a == b {
		return NewChunked(c.dt, nil), nil
	}
	startChunk, startOff := c.locate(a)
	endChunk, endOff := c.locate(b - 1)
	endOff++ // exclusive

	var out []Array
	for ci := startChunk; ci <= endChunk; ci++ {
		lo := 0
		hi := c.chunks[ci].Len()
		if ci == startChunk {
			lo = startOff
		}
		if ci == endChunk {
			hi = endOff
		}
		if lo == 0 && hi == c.chunks[ci].Len() {
			out = append(out, c.chunks[ci])
			continue
		}
		s, err := c.chunks[ci].Slice(lo, hi)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return NewChunked(c.dt, out), nil
}

func (c *Chunked) Take(idx Array) (Array, error) {
	return takeGeneric(c, idx)
}

func (c *Chunked) computeStat(kind stats.Kind) (scalar.Scalar, bool) {
	switch kind {
	case stats.NullCount:
		var n int64
		for _, ch := range c.chunks {
			s, ok := ch.Stats().Get(stats.NullCount)
			if !ok {
				return scalar.Scalar{}, false
			}
			n += s.Value.(int64)
		}
		return scalar.Of(dtype.Int(64, false, false), n), true
	default:
		if !c.dt.IsNumeric() && c.dt.Kind() != dtype.KindBool {
			return scalar.Scalar{}, false
		}
		return computeOrderStats(c, kind)
	}
}
