package observability

import (
	"context"
	"time"
)

// Tee returns hooks that forward every event to each of hs in order.
func Tee(hs ...Hooks) Hooks { return tee(hs) }

type tee []Hooks

func (t tee) OnLayoutStart(ctx context.Context, n int) {
	for _, h := range t {
		h.OnLayoutStart(ctx, n)
	}
}

func (t tee) OnLayoutComplete(ctx context.Context, lanes int, d time.Duration, err error) {
	for _, h := range t {
		h.OnLayoutComplete(ctx, lanes, d, err)
	}
}

func (t tee) OnPackStart(ctx context.Context, images, shards int) {
	for _, h := range t {
		h.OnPackStart(ctx, images, shards)
	}
}

func (t tee) OnPackComplete(ctx context.Context, pages int, d time.Duration, err error) {
	for _, h := range t {
		h.OnPackComplete(ctx, pages, d, err)
	}
}

func (t tee) OnRenderStart(ctx context.Context, formats []string) {
	for _, h := range t {
		h.OnRenderStart(ctx, formats)
	}
}

func (t tee) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	for _, h := range t {
		h.OnRenderComplete(ctx, formats, d, err)
	}
}

func (t tee) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range t {
		h.OnCacheHit(ctx, keyType)
	}
}

func (t tee) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range t {
		h.OnCacheMiss(ctx, keyType)
	}
}

func (t tee) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range t {
		h.OnCacheSet(ctx, keyType, size)
	}
}

func (t tee) OnRequest(ctx context.Context, method, route string) {
	for _, h := range t {
		h.OnRequest(ctx, method, route)
	}
}

func (t tee) OnResponse(ctx context.Context, method, route string, status int, d time.Duration) {
	for _, h := range t {
		h.OnResponse(ctx, method, route, status, d)
	}
}

func (t tee) OnError(ctx context.Context, method, route string, err error) {
	for _, h := range t {
		h.OnError(ctx, method, route, err)
	}
}
