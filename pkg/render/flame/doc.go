// Package flame draws a laid-out trace as an SVG lane chart.
//
// Every measure becomes one bar. The horizontal axis is time and the
// vertical axis is the lane computed by [trace.Stack]. Bars use the same
// geometry as the interactive viewer ([trace.BarGeometry]), so an exported
// SVG matches what the viewer would show for the same viewport.
//
// Labels are drawn only on bars at least [MinLabelWidth] pixels wide and are
// shortened in the middle with [trace.FitText] until they fit inside the bar.
// Text is measured with a fixed-advance face from golang.org/x/image, which is
// close to the 11px sans-serif font the SVG asks for.
//
// Colors are derived from the measure name, so a function keeps its color
// across exports.
//
// # Usage
//
//	rs, _ := trace.Stack(measures)
//	svg := flame.RenderSVG(rs, flame.WithWidth(1200))
//	data, _ := flame.RenderJSON(rs, flame.WithWidth(1200))
package flame
