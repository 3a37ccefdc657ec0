package flame

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/mondrian/pkg/trace"
)

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	scale  trace.ScaleOptions
	width  float64
	labels bool
	title  string
}

// WithScale sets the bar scale. The default is [trace.DefaultScale].
func WithScale(s trace.ScaleOptions) Option { return func(r *renderer) { r.scale = s } }

// WithWidth sets the image width. The whole trace is zoomed to fit it.
// Zero means one pixel per scaled millisecond.
func WithWidth(w float64) Option { return func(r *renderer) { r.width = w } }

// WithoutLabels disables bar labels.
func WithoutLabels() Option { return func(r *renderer) { r.labels = false } }

// WithTitle adds a <title> element to the document.
func WithTitle(t string) Option { return func(r *renderer) { r.title = t } }

func newRenderer(opts ...Option) renderer {
	r := renderer{scale: trace.DefaultScale(), labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// frame is the shared geometry of one export.
type frame struct {
	extents  trace.Extents
	viewport trace.Viewport
	height   float64
}

func (r renderer) frame(rs []trace.Renderable) frame {
	ext := trace.ComputeExtents(rs)
	width := r.width
	if width <= 0 {
		width = max(ext.Span()*r.scale.PxPerMS, 1)
	}
	lanes := 0
	if len(rs) > 0 {
		lanes = ext.MaxLane + 1
	}
	height := max(float64(lanes)*r.scale.RowHeight(), r.scale.RowHeight())
	return frame{
		extents:  ext,
		viewport: trace.FitViewport(ext, width, height, r.scale),
		height:   height,
	}
}

// RenderSVG draws rs as an SVG document.
func RenderSVG(rs []trace.Renderable, opts ...Option) []byte {
	r := newRenderer(opts...)
	f := r.frame(rs)
	vp := f.viewport

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		vp.Width, f.height, vp.Width, f.height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	fmt.Fprintf(&buf, `  <g font-family="'Lucida Grande', sans-serif" font-size="%d">`+"\n", labelFontSize)

	for _, rr := range rs {
		b := trace.BarGeometry(vp, rr, 0, r.scale)
		if !b.InView || b.Width <= 0 {
			continue
		}
		renderBar(&buf, rr, b, r.labels)
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderBar(buf *bytes.Buffer, rr trace.Renderable, b trace.Bar, labels bool) {
	m := rr.Measure
	fmt.Fprintf(buf, `    <g class="measure" data-lane="%d">`, rr.Lane)
	fmt.Fprintf(buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s">`,
		b.X, b.Y, b.Width, b.Height, Color(m.Name))
	fmt.Fprintf(buf, `<title>%s (%.3fms)</title></rect>`, escapeXML(m.Name), m.Duration)
	if labels {
		if text := Label(m.Name, b.Width); text != "" {
			fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" dominant-baseline="middle">%s</text>`,
				b.X+LabelPadding, b.Y+b.Height/2, escapeXML(text))
		}
	}
	buf.WriteString("</g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
