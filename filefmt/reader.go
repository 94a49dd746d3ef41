package filefmt

import (
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/compute"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/internal/derr"
	"github.com/thomascherickal/vortex/serde"
	"github.com/thomascherickal/vortex/serde/fb"
	"github.com/thomascherickal/vortex/stats"
)

// ReadAt is the byte-range read capability the reader consumes. Reads
// must be exact; implementations should treat a short read as an
// error rather than silently returning fewer bytes.
type ReadAt interface {
	Size() (int64, error)
	ReadAtInto(offset int64, buf []byte) error
}

// tailWindow is the largest single read issued to locate the trailer
// and footer, per spec.md §4.6 reader protocol step 2.
const tailWindow = 8 * 1024 * 1024

// maxSchemaBytes bounds the single targeted read used to recover the
// schema flatbuffer when it falls outside the tail window. Spec.md's
// file layout (unlike the original source's end-loaded schema) places
// the schema at the very front of the file, so for any file larger
// than the tail window a second, schema-only read is required; dtype
// trees are small by construction, so this cap comfortably bounds it
// without risking a read of the (potentially huge) data section that
// follows the schema on disk.
const maxSchemaBytes = 1 << 20

// StreamReader provides chunk-at-a-time access to a file written by
// Write. Its only suspension point is the byte-range read issued per
// batch (spec.md §4.6 "Streaming state machine"). NextBatch issues one
// ReadAtInto per column concurrently (via errgroup) and blocks until all
// of them have returned.
type StreamReader struct {
	ra     ReadAt
	dt     dtype.DType
	layout fb.Tree // Tag=StructLayout
	fileID string
	pos    int
}

// Open locates and parses the trailer, footer, and schema, per
// spec.md §4.6 reader protocol steps 1-4.
func Open(ra ReadAt) (*StreamReader, error) {
	size, err := ra.Size()
	if err != nil {
		return nil, derr.Wrap(derr.Io, "filefmt.Open", err)
	}
	if size < int64(serde.TrailerSize) {
		return nil, derr.New(derr.InvalidSerde, "filefmt.Open", "file too small (%d bytes)", size)
	}

	window := int64(tailWindow)
	if window > size {
		window = size
	}
	windowStart := size - window
	tail := make([]byte, window)
	if err := ra.ReadAtInto(windowStart, tail); err != nil {
		return nil, derr.Wrap(derr.Io, "filefmt.Open", err)
	}

	trailerBuf := tail[len(tail)-serde.TrailerSize:]
	trailer, err := serde.DecodeTrailer(trailerBuf)
	if err != nil {
		return nil, err
	}
	trailerStart := size - int64(serde.TrailerSize)

	var footerBytes []byte
	if int64(trailer.FooterOffset) >= windowStart {
		footerBytes = tail[int64(trailer.FooterOffset)-windowStart : trailerStart-windowStart]
	} else {
		footerBytes = make([]byte, trailerStart-int64(trailer.FooterOffset))
		if err := ra.ReadAtInto(int64(trailer.FooterOffset), footerBytes); err != nil {
			return nil, derr.Wrap(derr.Io, "filefmt.Open", err)
		}
	}
	layout, fileID := fb.ReadFooter(footerBytes)

	var schemaBytes []byte
	if int64(trailer.SchemaOffset) >= windowStart {
		schemaBytes = tail[int64(trailer.SchemaOffset)-windowStart:]
	} else {
		n := int64(maxSchemaBytes)
		if remain := size - int64(trailer.SchemaOffset); n > remain {
			n = remain
		}
		schemaBytes = make([]byte, n)
		if err := ra.ReadAtInto(int64(trailer.SchemaOffset), schemaBytes); err != nil {
			return nil, derr.Wrap(derr.Io, "filefmt.Open", err)
		}
	}
	dt := serde.DecodeSchema(schemaBytes)

	return &StreamReader{ra: ra, dt: dt, layout: layout, fileID: fileID}, nil
}

// DType returns the file's top-level (always Struct) logical type.
func (r *StreamReader) DType() dtype.DType { return r.dt }

// FileID returns the trace/debug correlation id stamped into the file
// at write time.
func (r *StreamReader) FileID() string { return r.fileID }

// NumChunks returns the number of row-chunks in the file (columns are
// required to share chunk boundaries).
func (r *StreamReader) NumChunks() int {
	if len(r.layout.Children) == 0 {
		return 0
	}
	return len(r.layout.Children[0].Children)
}

// Predicate is a row-filter term: a closure over one already-decoded
// batch producing a same-length, non-nullable Bool mask.
type Predicate func(*array.Struct) (array.Array, error)

// ReadOptions configures one NextBatch call, applied in the order
// spec.md §4.6 step 6 mandates: take, then row-filter (ANDed), then
// projection.
type ReadOptions struct {
	Take       array.Array // optional, indices local to this batch
	RowFilter  []Predicate
	Projection []int // top-level column indices to keep; nil means all
}

// NextBatch decodes the next chunk across every column, applies opts,
// and returns the resulting batch. It returns io.EOF once every chunk
// has been consumed.
func (r *StreamReader) NextBatch(opts ReadOptions) (*array.Struct, error) {
	if r.pos >= r.NumChunks() {
		return nil, io.EOF
	}
	chunkIdx := r.pos
	r.pos++

	fieldTypes := r.dt.FieldTypes()
	names := r.dt.FieldNames()
	cols := make([]array.Array, len(names))

	// Columns are independent byte ranges; fan their reads out so a
	// wide table issues its per-chunk I/O concurrently instead of
	// serially, the way a single NextBatch call's one conceptual
	// "suspension point" (spec.md §4.6) can still cover many readers.
	var g errgroup.Group
	for ci, colLayout := range r.layout.Children {
		ci, colLayout := ci, colLayout
		g.Go(func() error {
			flat := colLayout.Children[chunkIdx]
			region := make([]byte, flat.End-flat.Begin)
			if err := r.ra.ReadAtInto(int64(flat.Begin), region); err != nil {
				return derr.Wrap(derr.Io, "filefmt.NextBatch", err)
			}
			frame := region[:flat.BodyLength]
			body := region[flat.BodyLength:]
			c, err := serde.DecodeArrayMessage(frame, body, fieldTypes[ci])
			if err != nil {
				return err
			}
			cols[ci] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := array.NewStruct(r.dt, cols)
	return applyBatchOps(batch, opts)
}

func applyBatchOps(batch *array.Struct, opts ReadOptions) (*array.Struct, error) {
	current := array.Array(batch)
	if opts.Take != nil {
		taken, err := compute.Take(current, opts.Take)
		if err != nil {
			return nil, err
		}
		current = taken
	}
	if len(opts.RowFilter) > 0 {
		cur := current.(*array.Struct)
		var mask array.Array
		for _, pred := range opts.RowFilter {
			m, err := pred(cur)
			if err != nil {
				return nil, err
			}
			if mask == nil {
				mask = m
				continue
			}
			anded, err := compute.And(mask, m)
			if err != nil {
				return nil, err
			}
			mask = anded
			if allFalse(mask) {
				break
			}
		}
		filtered, err := compute.Filter(current, mask)
		if err != nil {
			return nil, err
		}
		current = filtered
	}
	s := current.(*array.Struct)
	if opts.Projection == nil {
		return s, nil
	}
	names := s.DType().FieldNames()
	fields := s.DType().FieldTypes()
	projNames := make([]string, len(opts.Projection))
	projTypes := make([]dtype.DType, len(opts.Projection))
	projCols := make([]array.Array, len(opts.Projection))
	for i, ci := range opts.Projection {
		projNames[i] = names[ci]
		projTypes[i] = fields[ci]
		projCols[i] = s.Field(ci)
	}
	projDT := dtype.Struct(projNames, projTypes, s.DType().Nullable())
	return array.NewStruct(projDT, projCols), nil
}

func allFalse(mask array.Array) bool {
	tc, ok := mask.Stats().Get(stats.TrueCount)
	if !ok {
		return false
	}
	return tc.Value.(int64) == 0
}
