// Package stats implements the lazy, per-array statistics set: a
// reader/writer-locked cache of derived statistics populated on demand
// and never invalidated, since arrays are immutable once constructed.
package stats

import (
	"sync"

	"github.com/thomascherickal/vortex/scalar"
)

// Kind identifies a statistic.
type Kind int

const (
	Min Kind = iota
	Max
	NullCount
	IsSorted
	IsConstant
	RunCount
	BitWidth
	TrueCount
)

func (k Kind) String() string {
	switch k {
	case Min:
		return "min"
	case Max:
		return "max"
	case NullCount:
		return "null_count"
	case IsSorted:
		return "is_sorted"
	case IsConstant:
		return "is_constant"
	case RunCount:
		return "run_count"
	case BitWidth:
		return "bit_width"
	case TrueCount:
		return "true_count"
	default:
		return "unknown"
	}
}

// Compute is supplied by an array to lazily derive a stat it doesn't
// already hold. Only the array itself (or canonicalized fallback) may
// compute a stat.
type Compute func(Kind) (scalar.Scalar, bool)

// Set is a mapping from statistic-kind to scalar value, computed on
// demand and cached under a reader/writer lock. If two goroutines race
// to compute the same entry, either result is acceptable since stats are
// pure functions of the array; the lock only protects the map itself.
type Set struct {
	mu      sync.RWMutex
	cache   map[Kind]scalar.Scalar
	compute Compute
}

// NewSet builds a Set backed by compute for cache misses.
func NewSet(compute Compute) *Set {
	return &Set{cache: make(map[Kind]scalar.Scalar), compute: compute}
}

// Get returns the value for kind, computing and caching it on first
// access. ok is false if the statistic is not defined for this array.
func (s *Set) Get(kind Kind) (scalar.Scalar, bool) {
	s.mu.RLock()
	v, hit := s.cache[kind]
	s.mu.RUnlock()
	if hit {
		return v, true
	}

	v, ok := s.compute(kind)
	if !ok {
		return scalar.Scalar{}, false
	}

	s.mu.Lock()
	s.cache[kind] = v
	s.mu.Unlock()
	return v, true
}

// Set pre-populates kind with v, e.g. when an encoding's constructor
// already knows a stat (RoaringBool knows TrueCount for free from
// cardinality).
func (s *Set) Set(kind Kind, v scalar.Scalar) {
	s.mu.Lock()
	s.cache[kind] = v
	s.mu.Unlock()
}

// ZigZagEncode maps a signed integer to an unsigned one so that small
// magnitude values (positive or negative) map to small unsigned values,
// used by the bit-width statistic so negative values don't inflate the
// estimated-bits computation the planner scores every integer compressor
// against. Grounded in the original source's enc/src/stats/zigzag.rs
// stat, which exists to serve exactly this purpose (there named
// ZigZagArray but never filled in) — this implements the encode/decode
// pair it stubbed out.
func ZigZagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// ZigZagDecode is the inverse of ZigZagEncode.
func ZigZagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// EstimateBitWidth returns the number of bits needed to represent v
// (zigzag encoded first, so -n maps to 2n-1 and n to 2n: a negative value
// needs about as many bits as its magnitude, never all 64).
func EstimateBitWidth(v int64) int {
	u := ZigZagEncode(v)
	width := 0
	for u != 0 {
		width++
		u >>= 1
	}
	return width
}
