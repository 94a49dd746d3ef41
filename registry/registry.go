// Package registry implements the process-wide, append-only mapping
// from stable encoding-ids to their compression vtables. It is built at
// startup by each encoding package's init() and becomes immutable the
// first time anything looks an encoding up — mirroring spec.md §4.4/§9's
// "global registry... append-only before first read/write and immutable
// after", modeled as dolt's process-wide append-only registries (e.g.
// go/store/types' kind tables) but generalized to a Context-free global
// since this module has no natural per-process embedder to thread one
// through.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/thomascherickal/vortex/array"
)

// CompressOptions configures a single compressor probe.
type CompressOptions struct {
	SampleSize int
	IsSample   bool
	// Like, when non-nil, is a previously chosen sibling array of the
	// same encoding from an earlier chunk — the "like-sample" hint an
	// encoding may use to skip its own search (e.g. ALP reusing
	// exponents).
	Like array.Array
}

// Compressor is a planned, not-yet-applied compression choice: an
// encoding's answer to "if you compress this array, how big would the
// result be, and can I have it".
type Compressor interface {
	// EstimatedBytes returns the predicted nbytes() of Apply()'s result,
	// used by the planner's scoring function without having to actually
	// encode.
	EstimatedBytes() int64
	// Apply performs the encoding and returns the resulting array.
	Apply() (array.Array, error)
}

// Encoding is the process-wide singleton every registered encoding
// implements.
type Encoding interface {
	ID() string
	// Compressor returns a Compressor for a, or ok=false if this
	// encoding's preconditions fail for a (wrong dtype, wrong width, too
	// few distinct values, etc).
	Compressor(a array.Array, opts CompressOptions) (c Compressor, ok bool)
}

var (
	mu       sync.Mutex
	byID     = map[string]Encoding{}
	frozen   bool
)

// Register adds enc to the registry. It panics if the registry has
// already been frozen (by a prior Lookup/All call) or if enc.ID() is
// already registered.
func Register(enc Encoding) {
	mu.Lock()
	defer mu.Unlock()
	if frozen {
		panic(fmt.Sprintf("registry: Register(%q) after registry was frozen", enc.ID()))
	}
	if _, dup := byID[enc.ID()]; dup {
		panic(fmt.Sprintf("registry: duplicate encoding id %q", enc.ID()))
	}
	byID[enc.ID()] = enc
}

// Lookup returns the encoding registered under id, freezing the registry
// as a side effect.
func Lookup(id string) (Encoding, bool) {
	mu.Lock()
	defer mu.Unlock()
	frozen = true
	e, ok := byID[id]
	return e, ok
}

// All returns every registered encoding, ordered by id ascending (the
// planner's tie-break order), freezing the registry as a side effect.
func All() []Encoding {
	mu.Lock()
	defer mu.Unlock()
	frozen = true
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Encoding, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out
}
