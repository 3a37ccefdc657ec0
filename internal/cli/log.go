// Package cli implements the mondrian command-line interface.
//
// This package provides commands for stacking trace measures into lanes,
// rendering the lanes as flame charts or call trees, packing images into
// texture atlases, and serving the same pipeline over HTTP. The CLI is built
// using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - layout: Assign every measure of a trace to a lane
//   - render: Generate SVG, PDF, PNG, or JSON views of a trace
//   - pack: Pack a directory of images into atlas pages
//   - serve: Run the HTTP API
//   - cache: Manage the layout and artifact cache
//
// # Configuration
//
// Defaults come from an optional TOML file (see package config). Flags
// override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs pipeline and cache events. Loggers are passed through
// context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes timestamped records at or above level to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs a stage's completion along with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs e.g. "Stacked 4210 measures (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
