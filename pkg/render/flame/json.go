package flame

import (
	"encoding/json"

	"github.com/matzehuels/mondrian/pkg/trace"
)

// Export is the JSON form of a rendered lane chart.
type Export struct {
	Extents  trace.Extents  `json:"extents"`
	Viewport trace.Viewport `json:"viewport"`
	Height   float64        `json:"height"`
	Bars     []ExportBar    `json:"bars"`
}

// ExportBar is one drawn measure.
type ExportBar struct {
	trace.Bar
	Lane      int     `json:"lane"`
	Name      string  `json:"name"`
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
	Color     string  `json:"color"`
	Label     string  `json:"label,omitempty"`
}

// Build computes the export without encoding it. Bars outside the viewport
// are kept with InView=false.
func Build(rs []trace.Renderable, opts ...Option) Export {
	r := newRenderer(opts...)
	f := r.frame(rs)
	out := Export{
		Extents:  f.extents,
		Viewport: f.viewport,
		Height:   f.height,
		Bars:     make([]ExportBar, 0, len(rs)),
	}
	for _, rr := range rs {
		b := trace.BarGeometry(f.viewport, rr, 0, r.scale)
		eb := ExportBar{
			Bar:       b,
			Lane:      rr.Lane,
			Name:      rr.Measure.Name,
			StartTime: rr.Measure.StartTime,
			Duration:  rr.Measure.Duration,
			Color:     Color(rr.Measure.Name),
		}
		if r.labels {
			eb.Label = Label(rr.Measure.Name, b.Width)
		}
		out.Bars = append(out.Bars, eb)
	}
	return out
}

// RenderJSON encodes [Build] as indented JSON.
func RenderJSON(rs []trace.Renderable, opts ...Option) ([]byte, error) {
	return json.MarshalIndent(Build(rs, opts...), "", "  ")
}
