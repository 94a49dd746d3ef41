package alp

import (
	"math"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/buffer"
	"github.com/thomascherickal/vortex/dtype"
	"github.com/thomascherickal/vortex/registry"
	"github.com/thomascherickal/vortex/scalar"
	"github.com/thomascherickal/vortex/stats"
)

const (
	minExp = 0
	maxExp = 18
	// patchOverheadBits approximates one patch's on-disk cost: a u32
	// position plus the original value's bits.
	patchOverheadBits32 = 32 + 32
	patchOverheadBits64 = 32 + 64
)

func init() {
	registry.Register(encodingSingleton{})
}

type encodingSingleton struct{}

func (encodingSingleton) ID() string { return EncID }

func (encodingSingleton) Compressor(a array.Array, opts registry.CompressOptions) (registry.Compressor, bool) {
	p, ok := a.(*array.Primitive)
	if !ok {
		return nil, false
	}
	if p.DType().Kind() != dtype.KindFloat {
		return nil, false
	}
	if p.DType().Width() != 32 && p.DType().Width() != 64 {
		return nil, false
	}
	var like *Array
	if opts.Like != nil {
		if l, ok := opts.Like.(*Array); ok {
			like = l
		}
	}
	return &compressor{p: p, opts: opts, like: like}, true
}

type compressor struct {
	p    *array.Primitive
	opts registry.CompressOptions
	like *Array

	built    *Array
	estBytes int64
}

func (c *compressor) EstimatedBytes() int64 {
	c.ensure()
	return c.estBytes
}

func (c *compressor) Apply() (array.Array, error) {
	c.ensure()
	return c.built, nil
}

func (c *compressor) ensure() {
	if c.built != nil {
		return
	}
	var a *Array
	var err error
	if c.like != nil {
		e, f := c.like.Exponents()
		a, err = EncodeLike(c.p, e, f)
	} else {
		a, err = Encode(c.p)
	}
	if err != nil {
		// Fall back to "no compression would help": report input size so
		// the planner skips this candidate.
		c.built = nil
		c.estBytes = c.p.NBytes() + 1
		return
	}
	c.built = a
	c.estBytes = a.NBytes()
}

// Encode runs the full exponent search (spec.md §4.2 Encode steps 1-4)
// over a sample of up to 1024 values, then applies the chosen exponents
// to the whole array.
func Encode(p *array.Primitive) (*Array, error) {
	e, f := search(p)
	return applyExponents(p, e, f)
}

// EncodeLike applies a previously chosen exponent pair directly, without
// searching — spec.md §4.2 "Encode-like".
func EncodeLike(p *array.Primitive, e, f uint8) (*Array, error) {
	return applyExponents(p, e, f)
}

func search(p *array.Primitive) (e, f uint8) {
	n := p.Len()
	sampleN := n
	if sampleN > 1024 {
		sampleN = 1024
	}
	stride := 1
	if n > sampleN && sampleN > 0 {
		stride = n / sampleN
	}

	patchBits := patchOverheadBits64
	if p.DType().Width() == 32 {
		patchBits = patchOverheadBits32
	}

	bestScore := math.MaxFloat64
	bestE, bestF := uint8(0), uint8(0)
	for ei := minExp; ei <= maxExp; ei++ {
		for fi := minExp; fi <= maxExp; fi++ {
			maxBits := 0
			exceptions := 0
			count := 0
			for i := 0; i < stride*sampleN; i += stride {
				if !p.IsValid(i) {
					continue
				}
				count++
				v := p.AsFloat64(i)
				scaled, ok := tryScale(v, ei, fi, p.DType().Width())
				if !ok {
					exceptions++
					continue
				}
				if w := stats.EstimateBitWidth(scaled); w > maxBits {
					maxBits = w
				}
			}
			if count == 0 {
				continue
			}
			score := float64(maxBits)*float64(count-exceptions) + float64(exceptions*patchBits)
			if score < bestScore {
				bestScore = score
				bestE, bestF = uint8(ei), uint8(fi)
			}
		}
	}
	return bestE, bestF
}

// tryScale computes round(v * 10^e / 10^f) and reports whether it fits
// the target integer width and round-trips back to v exactly.
func tryScale(v float64, e, f, width int) (int64, bool) {
	scaled := math.Round(v * pow10(e) / pow10(f))
	if width == 32 {
		if scaled < math.MinInt32 || scaled > math.MaxInt32 {
			return 0, false
		}
	} else {
		if scaled < -9.0e18 || scaled > 9.0e18 {
			return 0, false
		}
	}
	roundTrip := scaled * pow10(f) / pow10(e)
	if roundTrip != v {
		return 0, false
	}
	return int64(scaled), true
}

// applyExponents applies (e, f) to the full array, producing the integer
// child and, for any value that doesn't round-trip exactly or overflows,
// a patch (spec.md §4.2 Encode step 3-4).
func applyExponents(p *array.Primitive, e, f uint8) (*Array, error) {
	n := p.Len()
	width := p.DType().Width()

	var patchIdx []int64
	var patchVal []float64

	encDType := dtype.Int(width, true, p.DType().Nullable())
	var encBuf buffer.Buffer
	if width == 32 {
		raw := make([]int32, n)
		for i := 0; i < n; i++ {
			if !p.IsValid(i) {
				continue
			}
			v := p.AsFloat64(i)
			scaled, ok := tryScale(v, int(e), int(f), width)
			if !ok {
				patchIdx = append(patchIdx, int64(i))
				patchVal = append(patchVal, v)
				continue
			}
			raw[i] = int32(scaled)
		}
		encBuf = buffer.FromSlice(raw)
	} else {
		raw := make([]int64, n)
		for i := 0; i < n; i++ {
			if !p.IsValid(i) {
				continue
			}
			v := p.AsFloat64(i)
			scaled, ok := tryScale(v, int(e), int(f), width)
			if !ok {
				patchIdx = append(patchIdx, int64(i))
				patchVal = append(patchVal, v)
				continue
			}
			raw[i] = scaled
		}
		encBuf = buffer.FromSlice(raw)
	}

	var validity *array.Bool
	if p.DType().Nullable() {
		validity = p.Validity()
	}
	encoded := array.NewPrimitive(encDType, n, encBuf, validity)

	var patches *array.Sparse
	if len(patchIdx) > 0 {
		idxPrim := array.NewPrimitive(dtype.Int(64, true, false), len(patchIdx), buffer.FromSlice(patchIdx), nil)
		patchDType := dtype.Float(width, p.DType().Nullable())
		valBuilder := array.NewBuilder(patchDType)
		for _, v := range patchVal {
			valBuilder.Append(scalar.Of(patchDType, v))
		}
		patches = array.NewSparse(idxPrim, valBuilder.Finish(), n, scalar.Null(patchDType))
	}

	return New(encoded, e, f, patches)
}
