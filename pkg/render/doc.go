// Package render turns laid-out traces into images.
//
// # Overview
//
// Two views are provided, each in its own subpackage:
//
//   - [flame]: the lane view, one bar per measure, drawn as SVG
//   - [nodelink]: the nesting tree of measures, drawn by Graphviz
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both views use them.
//
//	svg := flame.RenderSVG(renderables)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [flame]: github.com/matzehuels/mondrian/pkg/render/flame
// [nodelink]: github.com/matzehuels/mondrian/pkg/render/nodelink
package render
