// Package pipeline runs mondrian's trace → layout → render flow and the
// atlas pack flow with caching.
//
// The CLI and the HTTP server both go through a [Runner], so they share
// defaults, validation, and cache keys.
//
// # Stages
//
//  1. Layout: assign every measure of a trace to a lane ([trace.Stack])
//  2. Render: draw the lanes as a flame chart or a node-link call tree
//  3. Pack: place images on fixed-size atlas pages ([atlas.PackSharded])
//
// Layouts, page manifests, and rendered artifacts are cached. Atlas pixel
// data is never cached; it is cheap to rebuild from the manifest.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, measures, pipeline.Options{
//	    VizType: pipeline.VizTypeFlame,
//	    Formats: []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	rs, err := runner.Layout(ctx, measures, opts)
//	artifacts, err := runner.Render(ctx, rs, opts)
//	pages, err := runner.Pack(ctx, sources, opts)
package pipeline

import (
	"io"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mondrian/pkg/atlas"
	"github.com/matzehuels/mondrian/pkg/cache"
	"github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/trace"
)

const (
	// DefaultPageSize is the default atlas page width and height.
	DefaultPageSize = atlas.DefaultPageSize

	// DefaultPNGScale is the rsvg-convert zoom used for PNG output.
	DefaultPNGScale = 2.0
)

const (
	VizTypeFlame    = "flame"
	VizTypeNodelink = "nodelink"

	DefaultVizType = VizTypeFlame
)

const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json" // flame bars, see flame.RenderJSON
)

// Formats lists every output format.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// formatsByViz lists the formats each visualization can produce. Its keys
// are the valid viz types.
var formatsByViz = map[string][]string{
	VizTypeFlame:    Formats,
	VizTypeNodelink: {FormatSVG, FormatPNG, FormatPDF},
}

// IsFormat reports whether f names an output format.
func IsFormat(f string) bool { return slices.Contains(Formats, f) }

// Options configures every stage. The server decodes it from request
// fields; the CLI fills it from flags over the config file.
type Options struct {
	Refresh bool `json:"refresh,omitempty"` // skip cache reads

	PageWidth  int `json:"page_width,omitempty"`
	PageHeight int `json:"page_height,omitempty"`
	Shards     int `json:"shards,omitempty"` // 0 = one per CPU

	VizType  string             `json:"viz_type,omitempty"`
	Formats  []string           `json:"formats,omitempty"`
	Width    float64            `json:"width,omitempty"` // 0 = fit at Scale.PxPerMS
	Scale    trace.ScaleOptions `json:"scale"`
	NoLabels bool               `json:"no_labels,omitempty"`
	Detailed bool               `json:"detailed,omitempty"` // nodelink labels with timing
	PNGScale float64            `json:"png_scale,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a trace pipeline run.
type Result struct {
	// TraceHash is the content hash of the input measures.
	TraceHash string

	// Renderable holds every measure with its lane, in discovery order.
	Renderable []trace.Renderable

	// Extents bounds the layout in time and lanes.
	Extents trace.Extents

	// Artifacts maps each requested format to its bytes.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// AtlasResult contains the outputs of a pack run.
type AtlasResult struct {
	Pages     []atlas.Page
	Textures  []atlas.Texture
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats reports sizes and per-stage wall time.
type Stats struct {
	MeasureCount int
	LaneCount    int
	ImageCount   int
	PageCount    int
	LayoutTime   time.Duration
	PackTime     time.Duration
	BuildTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo records which stages were served from the cache. RenderHit is
// set only when every artifact was.
type CacheInfo struct {
	LayoutHit bool
	PackHit   bool
	RenderHit bool
}

// checkVizFormats returns INVALID_VIZ_TYPE for an unknown vizType and
// INVALID_FORMAT for a format the view cannot produce.
func checkVizFormats(vizType string, formats []string) error {
	supported, ok := formatsByViz[vizType]
	if !ok {
		return errors.New(errors.ErrCodeInvalidVizType, "invalid viz_type %q (want %s or %s)",
			vizType, VizTypeFlame, VizTypeNodelink)
	}
	for _, f := range formats {
		if !IsFormat(f) {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (want one of %s)",
				f, strings.Join(Formats, ", "))
		}
		if !slices.Contains(supported, f) {
			return errors.New(errors.ErrCodeInvalidFormat, "format %q is not available for the %s view", f, vizType)
		}
	}
	return nil
}

// SetPackDefaults fills the page size and resolves Shards == 0 to one shard
// per CPU.
func (o *Options) SetPackDefaults() {
	if o.PageWidth == 0 {
		o.PageWidth = DefaultPageSize
	}
	if o.PageHeight == 0 {
		o.PageHeight = DefaultPageSize
	}
	if o.Shards <= 0 {
		o.Shards = runtime.NumCPU()
	}
	o.setLoggerDefault()
}

// ValidateForPack applies pack defaults and checks the page size.
func (o *Options) ValidateForPack() error {
	o.SetPackDefaults()
	return errors.ValidateDimensions("page", o.PageWidth, o.PageHeight)
}

// SetRenderDefaults fills the view, formats, scale, and PNG zoom.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == (trace.ScaleOptions{}) {
		o.Scale = trace.DefaultScale()
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	o.setLoggerDefault()
}

// ValidateForRender applies render defaults and checks every field.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := checkVizFormats(o.VizType, o.Formats); err != nil {
		return err
	}
	for _, v := range []struct {
		what string
		val  float64
	}{
		{"px_per_ms", o.Scale.PxPerMS},
		{"bar_height", o.Scale.BarHeight},
		{"bar_x_gutter", o.Scale.BarXGutter},
		{"bar_y_gutter", o.Scale.BarYGutter},
		{"width", o.Width},
	} {
		if err := errors.ValidateFinite(v.what, v.val); err != nil {
			return err
		}
		if v.val < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative, got %v", v.what, v.val)
		}
	}
	if o.Scale.PxPerMS == 0 || o.Scale.BarHeight == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "px_per_ms and bar_height must be positive")
	}
	return nil
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) IsFlame() bool    { return o.VizType == "" || o.VizType == VizTypeFlame }
func (o *Options) IsNodelink() bool { return o.VizType == VizTypeNodelink }

// AtlasKeyOpts returns the pack settings that affect page manifests.
func (o *Options) AtlasKeyOpts() cache.AtlasKeyOpts {
	return cache.AtlasKeyOpts{
		PageWidth:  o.PageWidth,
		PageHeight: o.PageHeight,
		Shards:     o.Shards,
	}
}

// ArtifactKeyOpts returns the render settings that affect an artifact in
// format. PNG zoom only keys PNGs, and nodelink labels depend on Detailed.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		VizType:    o.VizType,
		Format:     format,
		Width:      o.Width,
		PxPerMS:    o.Scale.PxPerMS,
		BarHeight:  o.Scale.BarHeight,
		BarXGutter: o.Scale.BarXGutter,
		BarYGutter: o.Scale.BarYGutter,
		Labels:     !o.NoLabels,
	}
	if format == FormatPNG {
		opts.PNGScale = o.PNGScale
	}
	if o.IsNodelink() {
		opts.Labels = o.Detailed
	}
	return opts
}
