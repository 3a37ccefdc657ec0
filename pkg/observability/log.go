package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// logger. The CLI installs it when run with --verbose.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Install registers h for pipeline, cache, and HTTP events.
func (h *LogHooks) Install() { InstallHooks(h) }

func (h *LogHooks) OnLayoutStart(_ context.Context, measureCount int) {
	h.Logger.Debug("layout start", "measures", measureCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, laneCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("layout failed", "duration", d, "error", err)
		return
	}
	h.Logger.Debug("layout done", "lanes", laneCount, "duration", d)
}

func (h *LogHooks) OnPackStart(_ context.Context, imageCount, shards int) {
	h.Logger.Debug("pack start", "images", imageCount, "shards", shards)
}

func (h *LogHooks) OnPackComplete(_ context.Context, pageCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("pack failed", "duration", d, "error", err)
		return
	}
	h.Logger.Debug("pack done", "pages", pageCount, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("render failed", "formats", formats, "duration", d, "error", err)
		return
	}
	h.Logger.Debug("render done", "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.Logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "route", route, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, route string, err error) {
	h.Logger.Warn("request failed", "method", method, "route", route, "error", err)
}

var _ Hooks = (*LogHooks)(nil)
