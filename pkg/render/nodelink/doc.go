// Package nodelink draws the call tree of a trace with Graphviz.
//
// A measure in lane k is a child of the lane k-1 measure that was open when
// it started. For traces recorded from nested calls this recovers the call
// tree exactly. Lane-0 measures are roots.
//
// # Architecture
//
// Graphviz computes positions and draws in a single step, so the DOT text is
// the intermediate representation:
//
//	Renderables → ToDOT() → DOT → RenderSVG() → SVG
//
// The DOT text can be cached and re-rendered without the original trace.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG go through [render.ToPDF] and [render.ToPNG].
package nodelink
