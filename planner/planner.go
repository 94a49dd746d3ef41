// Package planner implements the compression cascade: given a sample,
// choose which encodings to apply to an array, and reuse the plan
// across chunks of a chunked column ("like-sample" mode).
package planner

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/thomascherickal/vortex/array"
	"github.com/thomascherickal/vortex/registry"
)

// Config enumerates the planner's tunables (spec.md §4.4 "Context").
type Config struct {
	MaxDepth           int
	SampleSize         int
	Threshold          float64 // default 0.9
	EnabledEncodings   map[string]bool // nil means "all registered"
	DisabledEncodings  map[string]bool
	IsSample           bool
	Logger             *zap.Logger
}

// DefaultConfig returns the spec's defaults: max-depth 3, sample size
// 1024, threshold 0.9.
func DefaultConfig() Config {
	return Config{MaxDepth: 3, SampleSize: 1024, Threshold: 0.9, Logger: zap.NewNop()}
}

// Option mutates a Config; used by the builder-style constructors
// WithMaxDepth/WithSampleSize/etc, matching the reader-configuration
// pattern spec.md's Design Notes call out.
type Option func(*Config)

func WithMaxDepth(d int) Option            { return func(c *Config) { c.MaxDepth = d } }
func WithSampleSize(n int) Option          { return func(c *Config) { c.SampleSize = n } }
func WithThreshold(t float64) Option       { return func(c *Config) { c.Threshold = t } }
func WithLogger(l *zap.Logger) Option      { return func(c *Config) { c.Logger = l } }
func WithEnabledEncodings(ids ...string) Option {
	return func(c *Config) {
		m := make(map[string]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		c.EnabledEncodings = m
	}
}
func WithDisabledEncodings(ids ...string) Option {
	return func(c *Config) {
		m := make(map[string]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		c.DisabledEncodings = m
	}
}

// NewConfig builds a Config from DefaultConfig plus opts.
func NewConfig(opts ...Option) Config {
	c := DefaultConfig()
	for _, o := range opts {
		o(&c)
	}
	return c
}

func (c Config) enabled(id string) bool {
	if c.DisabledEncodings != nil && c.DisabledEncodings[id] {
		return false
	}
	if c.EnabledEncodings != nil {
		return c.EnabledEncodings[id]
	}
	return true
}

// Plan is a per-array compression decision: an encoding id paired with
// the compressed array chosen for it. The planner's own like-sample path
// does not build Plans; Cache and CompressChunked carry the compressed
// arrays directly.
type Plan struct {
	EncodingID string
	// Like is the compressed array chosen for this node, passed back in
	// as the hint the next chunk's same-position node probes against.
	Like array.Array
}

// Cache memoizes, per column, the compressed array of the last chunk
// CompressChunked produced, so a later call for the same column starts
// from that like-sample hint instead of full planning. Keyed by an
// arbitrary caller-supplied column id (e.g. "column:3").
type Cache struct {
	lru *lru.Cache[string, array.Array]
}

// NewCache builds a like-sample cache holding up to size entries.
func NewCache(size int) *Cache {
	c, _ := lru.New[string, array.Array](size)
	return &Cache{lru: c}
}

func (c *Cache) get(key string) (array.Array, bool) {
	if c == nil || c.lru == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *Cache) put(key string, a array.Array) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(key, a)
}

// CompressChunked compresses a Chunked array one chunk at a time. The
// first chunk is planned fully unless cache already holds a hint for
// key; every later chunk is compressed with CompressLike, using the
// previous chunk's compressed array as its "like" hint (spec.md §4.4
// "Like-sample mode"). The last chunk's result is stored in cache under
// key. key identifies
// the column across calls so cache reuses the right hint (e.g. a
// caller compressing many columns shares one Cache).
func CompressChunked(ch *array.Chunked, cfg Config, cache *Cache, key string) *array.Chunked {
	n := ch.NumChunks()
	out := make([]array.Array, n)
	like, hadLike := cache.get(key)
	for i := 0; i < n; i++ {
		chunk := ch.Chunk(i)
		var compressed array.Array
		if i == 0 && !hadLike {
			c := cfg
			c.IsSample = true
			compressed = Compress(chunk, c)
		} else {
			compressed = CompressLike(chunk, cfg, like)
		}
		out[i] = compressed
		like = compressed
	}
	cache.put(key, like)
	return array.NewChunked(ch.DType(), out)
}

// Compress runs one level of the cascade on a (spec.md §4.4 steps 1-5):
// it picks and applies the best encoding for a itself, and the children
// of the applied array are not planned further. It never expands the
// array: if no candidate beats cfg.Threshold, the array is returned
// unchanged.
func Compress(a array.Array, cfg Config) array.Array {
	return compress(a, cfg, 0, nil)
}

// CompressLike runs like-sample planning for a chunk that follows one
// already planned as like, reusing its encoding choices where their
// preconditions still hold and falling back to full planning otherwise
// (spec.md §4.4 "Like-sample mode", §9 Open Question: "full planning
// resumes").
func CompressLike(a array.Array, cfg Config, like array.Array) array.Array {
	cfg.IsSample = false
	return compress(a, cfg, 0, like)
}

func compress(a array.Array, cfg Config, depth int, like array.Array) array.Array {
	if depth >= cfg.MaxDepth {
		return a
	}
	if a.Kind().IsCanonical() && isIrreducible(a) {
		return a
	}

	opts := registry.CompressOptions{SampleSize: cfg.SampleSize, IsSample: cfg.IsSample, Like: like}

	type candidate struct {
		id  string
		c   registry.Compressor
	}
	var candidates []candidate
	for _, enc := range registry.All() {
		if !cfg.enabled(enc.ID()) {
			continue
		}
		c, ok := enc.Compressor(a, opts)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{id: enc.ID(), c: c})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].id < candidates[j].id })

	inputBytes := a.NBytes()
	if inputBytes == 0 {
		return a
	}

	bestRatio := cfg.Threshold
	var best registry.Compressor
	for _, cand := range candidates {
		est := cand.c.EstimatedBytes()
		ratio := float64(est) / float64(inputBytes)
		if ratio < bestRatio {
			bestRatio = ratio
			best = cand.c
		}
	}

	if best == nil {
		if cfg.Logger != nil {
			cfg.Logger.Debug("planner: no candidate improved on threshold, keeping identity")
		}
		return a
	}

	applied, err := best.Apply()
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("planner: compressor application failed, falling back", zap.Error(err))
		}
		return a
	}

	return recurseChildren(applied, cfg, depth+1)
}

// recurseChildren returns a unchanged: the children of an applied
// encoding (e.g. ALP's encoded integer child or its patches) are not
// planned further, so each call compresses one level only.
func recurseChildren(a array.Array, cfg Config, depth int) array.Array {
	return a
}

// isIrreducible reports whether a is already a ground primitive of
// minimal width that no further encoding could shrink (spec.md §4.4
// step 1: "array is already a ground primitive of irreducible width").
func isIrreducible(a array.Array) bool {
	p, ok := a.(*array.Primitive)
	if !ok {
		return false
	}
	return p.DType().Width() == 8
}
