package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/render"
	"github.com/matzehuels/mondrian/pkg/render/flame"
	"github.com/matzehuels/mondrian/pkg/render/nodelink"
	"github.com/matzehuels/mondrian/pkg/trace"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, rs []trace.Renderable, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if opts.IsNodelink() {
		return renderNodelink(ctx, rs, opts)
	}
	return renderFlame(rs, opts)
}

// renderFlame generates flame outputs. The SVG is drawn once and shared by
// the raster formats.
func renderFlame(rs []trace.Renderable, opts Options) (map[string][]byte, error) {
	flameOpts := buildFlameOptions(opts)
	artifacts := make(map[string][]byte)

	var svg []byte
	svgOnce := func() []byte {
		if svg == nil {
			svg = flame.RenderSVG(rs, flameOpts...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgOnce()
		case FormatPNG:
			data, err = render.ToPNG(svgOnce(), opts.PNGScale)
		case FormatPDF:
			data, err = render.ToPDF(svgOnce())
		case FormatJSON:
			data, err = flame.RenderJSON(rs, flameOpts...)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported flame format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		opts.Logger.Debug("rendered", "viz", VizTypeFlame, "format", format, "bytes", len(data))
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderNodelink generates nodelink outputs from the call tree.
func renderNodelink(ctx context.Context, rs []trace.Renderable, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(rs, nodelink.Options{Detailed: opts.Detailed})
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.PNGScale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		opts.Logger.Debug("rendered", "viz", VizTypeNodelink, "format", format, "bytes", len(data))
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildFlameOptions builds flame rendering options.
func buildFlameOptions(opts Options) []flame.Option {
	flameOpts := []flame.Option{flame.WithScale(opts.Scale)}
	if opts.Width > 0 {
		flameOpts = append(flameOpts, flame.WithWidth(opts.Width))
	}
	if opts.NoLabels {
		flameOpts = append(flameOpts, flame.WithoutLabels())
	}
	return flameOpts
}
