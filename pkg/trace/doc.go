// Package trace models a performance trace as a list of timed measures and
// computes the geometry needed to draw it as a flame chart.
//
// # Reading traces
//
// [ReadTrace] accepts two JSON shapes:
//
//	[{"name": "load", "startTime": 0, "duration": 12.5}]
//
// and the Chrome trace-event format:
//
//	{"traceEvents": [{"name": "load", "ph": "X", "ts": 0, "dur": 12500}]}
//
// Chrome timestamps are microseconds; they are converted to milliseconds so
// both shapes share one unit. Complete ("X") events and matched begin/end
// ("B"/"E") pairs become measures; every other phase is ignored.
//
// # Layout
//
// [Stack] assigns each measure a lane with [lanes.Layout]. [BarGeometry]
// then maps a lane and a time range onto viewport pixels:
//
//	x     = (start - center) * pxPerMS * zoom + width/2
//	y     = lane * (barHeight + barYGutter) + startY
//	width = max(duration * pxPerMS * zoom - barXGutter, 0)
//
// A bar is in view unless it lies entirely left or right of the viewport.
package trace
