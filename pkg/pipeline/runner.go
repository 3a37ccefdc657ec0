package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matzehuels/mondrian/pkg/atlas"
	"github.com/matzehuels/mondrian/pkg/cache"
	"github.com/matzehuels/mondrian/pkg/observability"
	"github.com/matzehuels/mondrian/pkg/trace"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache TTLs when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, measures []trace.Measure, opts Options) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.execute",
		attribute.String("mondrian.viz_type", opts.VizType),
		attribute.StringSlice("mondrian.formats", opts.Formats))
	result, err := r.execute(ctx, measures, opts)
	observability.EndSpan(span, err)
	return result, err
}

func (r *Runner) execute(ctx context.Context, measures []trace.Measure, opts Options) (*Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	traceHash, err := HashTrace(measures)
	if err != nil {
		return nil, err
	}
	result := &Result{
		TraceHash: traceHash,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.MeasureCount = len(measures)

	// Stage 1: Layout
	layoutStart := time.Now()
	rs, layoutHit, err := r.LayoutWithCacheInfo(ctx, measures, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Renderable = rs
	result.Extents = trace.ComputeExtents(rs)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.LaneCount = trace.LaneCount(rs)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"measures", len(rs),
		"lanes", result.Stats.LaneCount,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, rs, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"viz", opts.VizType,
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo stacks measures into lanes with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, measures []trace.Measure, opts Options) ([]trace.Renderable, bool, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.layout", attribute.Int("mondrian.measures", len(measures)))
	rs, hit, err := r.layout(ctx, measures, opts)
	span.SetAttributes(
		attribute.Int("mondrian.lanes", trace.LaneCount(rs)),
		attribute.Bool("mondrian.cache_hit", hit))
	observability.EndSpan(span, err)
	return rs, hit, err
}

func (r *Runner) layout(ctx context.Context, measures []trace.Measure, opts Options) ([]trace.Renderable, bool, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(measures))
	start := time.Now()

	traceHash, err := HashTrace(measures)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(traceHash)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if rs, ok := r.getJSONRenderables(ctx, cacheKey); ok {
			hooks.OnLayoutComplete(ctx, trace.LaneCount(rs), time.Since(start), nil)
			return rs, true, nil
		}
	}

	rs, err := trace.Stack(measures)
	hooks.OnLayoutComplete(ctx, trace.LaneCount(rs), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	r.setJSON(ctx, "layout", cacheKey, rs, cache.TTLLayout)
	return rs, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, measures []trace.Measure, opts Options) ([]trace.Renderable, error) {
	rs, _, err := r.LayoutWithCacheInfo(ctx, measures, opts)
	return rs, err
}

// PackWithCacheInfo packs sources into atlas pages with caching and returns cache hit info.
// Only page manifests are cached.
func (r *Runner) PackWithCacheInfo(ctx context.Context, sources []atlas.Source, opts Options) ([]atlas.Page, bool, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.pack", attribute.Int("mondrian.images", len(sources)))
	pages, hit, err := r.pack(ctx, sources, opts)
	span.SetAttributes(
		attribute.Int("mondrian.pages", len(pages)),
		attribute.Bool("mondrian.cache_hit", hit))
	observability.EndSpan(span, err)
	return pages, hit, err
}

func (r *Runner) pack(ctx context.Context, sources []atlas.Source, opts Options) ([]atlas.Page, bool, error) {
	if err := opts.ValidateForPack(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnPackStart(ctx, len(sources), opts.Shards)
	start := time.Now()

	sourcesHash, err := HashSources(sources)
	if err != nil {
		hooks.OnPackComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}
	cacheKey := r.Keyer.AtlasKey(sourcesHash, opts.AtlasKeyOpts())

	if !opts.Refresh {
		var pages []atlas.Page
		if r.getJSON(ctx, "atlas", cacheKey, &pages) {
			hooks.OnPackComplete(ctx, len(pages), time.Since(start), nil)
			return pages, true, nil
		}
	}

	pages, err := atlas.PackSharded(ctx, sources, opts.PageWidth, opts.PageHeight, opts.Shards)
	hooks.OnPackComplete(ctx, len(pages), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	r.setJSON(ctx, "atlas", cacheKey, pages, cache.TTLAtlas)
	return pages, false, nil
}

// Pack is a convenience wrapper that calls PackWithCacheInfo and discards the cache hit info.
func (r *Runner) Pack(ctx context.Context, sources []atlas.Source, opts Options) ([]atlas.Page, error) {
	pages, _, err := r.PackWithCacheInfo(ctx, sources, opts)
	return pages, err
}

// BuildAtlas packs sources and blits them into page textures. Every source
// must carry its Image.
func (r *Runner) BuildAtlas(ctx context.Context, sources []atlas.Source, opts Options) (*AtlasResult, error) {
	if err := opts.ValidateForPack(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &AtlasResult{}
	result.Stats.ImageCount = len(sources)

	packStart := time.Now()
	pages, hit, err := r.PackWithCacheInfo(ctx, sources, opts)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	result.Pages = pages
	result.Stats.PageCount = len(pages)
	result.Stats.PackTime = time.Since(packStart)
	result.CacheInfo.PackHit = hit

	r.Logger.Info("packed atlas",
		"images", len(sources),
		"pages", len(pages),
		"shards", opts.Shards,
		"cached", hit,
		"duration", result.Stats.PackTime)

	buildStart := time.Now()
	textures, err := atlas.Build(pages, sources)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Textures = textures
	result.Stats.BuildTime = time.Since(buildStart)
	return result, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, rs []trace.Renderable, opts Options) (map[string][]byte, bool, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.render",
		attribute.String("mondrian.viz_type", opts.VizType),
		attribute.StringSlice("mondrian.formats", opts.Formats))
	artifacts, hit, err := r.render(ctx, rs, opts)
	span.SetAttributes(attribute.Bool("mondrian.cache_hit", hit))
	observability.EndSpan(span, err)
	return artifacts, hit, err
}

func (r *Runner) render(ctx context.Context, rs []trace.Renderable, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := json.Marshal(rs)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, ok := r.get(ctx, "artifact", key)
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, rs, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.set(ctx, "artifact", key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, rs []trace.Renderable, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, rs, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// HashTrace returns the content hash of measures.
func HashTrace(measures []trace.Measure) (string, error) {
	data, err := trace.MarshalTrace(measures)
	if err != nil {
		return "", fmt.Errorf("serialize trace for cache key: %w", err)
	}
	return cache.Hash(data), nil
}

// HashSources returns the content hash of the ids and sizes of sources.
// Pixel data does not take part: packing only depends on sizes.
func HashSources(sources []atlas.Source) (string, error) {
	data, err := json.Marshal(sources)
	if err != nil {
		return "", fmt.Errorf("serialize sources for cache key: %w", err)
	}
	return cache.Hash(data), nil
}

// =============================================================================
// Cache helpers
// =============================================================================

func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key_type", keyType, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) getJSON(ctx context.Context, keyType, key string, v any) bool {
	data, ok := r.get(ctx, keyType, key)
	if !ok {
		return false
	}
	// If deserialization fails, fall through to recompute
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		r.Logger.Debug("discarding corrupt cache entry", "key_type", keyType, "error", err)
		return false
	}
	return true
}

func (r *Runner) getJSONRenderables(ctx context.Context, key string) ([]trace.Renderable, bool) {
	var rs []trace.Renderable
	ok := r.getJSON(ctx, "layout", key, &rs)
	return rs, ok
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key_type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) setJSON(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.set(ctx, keyType, key, data, ttl)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
