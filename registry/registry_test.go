package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/array"
	_ "github.com/thomascherickal/vortex/encoding/alp"
	_ "github.com/thomascherickal/vortex/encoding/roaringbool"
	"github.com/thomascherickal/vortex/registry"
)

type fakeCompressor struct{ bytes int64 }

func (f fakeCompressor) EstimatedBytes() int64            { return f.bytes }
func (f fakeCompressor) Apply() (array.Array, error)       { return nil, nil }

type fakeEncoding struct{ id string }

func (f fakeEncoding) ID() string { return f.id }
func (f fakeEncoding) Compressor(a array.Array, opts registry.CompressOptions) (registry.Compressor, bool) {
	return fakeCompressor{bytes: 1}, true
}

func TestAllIncludesRealEncodings(t *testing.T) {
	all := registry.All()
	var ids []string
	for _, e := range all {
		ids = append(ids, e.ID())
	}
	assert.Contains(t, ids, "vortex.alp")
	assert.Contains(t, ids, "roaring.bool")
}

func TestAllIsSortedByID(t *testing.T) {
	all := registry.All()
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].ID(), all[i].ID())
	}
}

func TestLookupFindsRegistered(t *testing.T) {
	e, ok := registry.Lookup("vortex.alp")
	require.True(t, ok)
	assert.Equal(t, "vortex.alp", e.ID())
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	_, ok := registry.Lookup("no.such.encoding")
	assert.False(t, ok)
}

// By the time this runs, TestLookupFindsRegistered has already frozen the
// registry, so any further Register call panics -- whether the id is a
// duplicate or not. This matches spec.md's "append-only before first
// read, immutable after" contract.
func TestRegisterAfterFreezePanics(t *testing.T) {
	assert.Panics(t, func() {
		registry.Register(fakeEncoding{id: "test.fake.unique"})
	})
}
