// Package observability lets a binary observe the layout, pack, and render
// pipeline. The pipeline and server only emit events; the backends here
// (log lines, Prometheus metrics, OpenTelemetry spans) are chosen by the
// process entry point.
//
// Three hook sets exist: [PipelineHooks], [CacheHooks], and [HTTPHooks].
// Each defaults to a no-op. The entry point installs real implementations
// once, before work starts:
//
//	metrics, _ := observability.NewMetricsHooks(registry)
//	observability.InstallHooks(observability.Tee(metrics, observability.NewLogHooks(logger)))
//
// Spans go through [StartSpan] and [EndSpan] on the global OpenTelemetry
// provider, which [InitTracer] replaces when an OTLP endpoint is configured.
//
// Library code then emits events through the accessors:
//
//	observability.Pipeline().OnLayoutStart(ctx, len(measures))
//	observability.Pipeline().OnLayoutComplete(ctx, laneCount, elapsed, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives stage events. Durations cover the whole stage,
// cache lookups included.
type PipelineHooks interface {
	OnLayoutStart(ctx context.Context, measureCount int)
	OnLayoutComplete(ctx context.Context, laneCount int, duration time.Duration, err error)
	OnPackStart(ctx context.Context, imageCount, shards int)
	OnPackComplete(ctx context.Context, pageCount int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache events. keyType is the key's namespace
// ("layout", "atlas", "artifact"), never the full key.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives API server events. route is the matched chi pattern,
// e.g. "/v1/layouts/{id}".
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

// Hooks is implemented by backends that observe every event category,
// such as [LogHooks] and [MetricsHooks].
type Hooks interface {
	PipelineHooks
	CacheHooks
	HTTPHooks
}

// InstallHooks registers h for all three categories.
func InstallHooks(h Hooks) {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

type (
	NoopPipelineHooks struct{}
	NoopCacheHooks    struct{}
	NoopHTTPHooks     struct{}
)

func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnPackStart(context.Context, int, int)                            {}
func (NoopPipelineHooks) OnPackComplete(context.Context, int, time.Duration, error)        {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var hooks = registry{
	pipeline: NoopPipelineHooks{},
	cache:    NoopCacheHooks{},
	http:     NoopHTTPHooks{},
}

// set stores h in *slot under the write lock. A nil h is ignored.
func set[T comparable](slot *T, h T) {
	var zero T
	if h == zero {
		return
	}
	hooks.mu.Lock()
	*slot = h
	hooks.mu.Unlock()
}

func get[T any](slot *T) T {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return *slot
}

// SetPipelineHooks installs h. Call it before the first pipeline run.
func SetPipelineHooks(h PipelineHooks) { set(&hooks.pipeline, h) }

// SetCacheHooks installs h. Call it before the first cache is opened.
func SetCacheHooks(h CacheHooks) { set(&hooks.cache, h) }

// SetHTTPHooks installs h. Call it before the server starts.
func SetHTTPHooks(h HTTPHooks) { set(&hooks.http, h) }

func Pipeline() PipelineHooks { return get(&hooks.pipeline) }
func Cache() CacheHooks       { return get(&hooks.cache) }
func HTTP() HTTPHooks         { return get(&hooks.http) }

// Reset reinstalls the no-op hooks.
func Reset() {
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	hooks.pipeline = NoopPipelineHooks{}
	hooks.cache = NoopCacheHooks{}
	hooks.http = NoopHTTPHooks{}
}
