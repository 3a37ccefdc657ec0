package trace

import "github.com/matzehuels/mondrian/pkg/geom"

// Zoom limits applied by [Viewport.Clamp].
const (
	MinZoom = 0.2
	MaxZoom = 100
)

// ScaleOptions controls how milliseconds and lanes map to pixels.
type ScaleOptions struct {
	PxPerMS    float64 `json:"px_per_ms" toml:"px_per_ms"`
	BarXGutter float64 `json:"bar_x_gutter" toml:"bar_x_gutter"`
	BarYGutter float64 `json:"bar_y_gutter" toml:"bar_y_gutter"`
	BarHeight  float64 `json:"bar_height" toml:"bar_height"`
}

// DefaultScale returns the viewer's default scale: 1px per ms, 1px gutters,
// 16px bars.
func DefaultScale() ScaleOptions {
	return ScaleOptions{PxPerMS: 1, BarXGutter: 1, BarYGutter: 1, BarHeight: 16}
}

// RowHeight returns the vertical distance between lanes.
func (s ScaleOptions) RowHeight() float64 { return s.BarHeight + s.BarYGutter }

// Viewport is the visible window onto a trace. Center is a time in ms.
type Viewport struct {
	Center float64 `json:"center"`
	Zoom   float64 `json:"zoom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp returns v with Zoom limited to [MinZoom, MaxZoom].
func (v Viewport) Clamp() Viewport {
	v.Zoom = min(max(v.Zoom, MinZoom), MaxZoom)
	return v
}

// FitViewport centers ext in a viewport of the given size, zoomed so the
// whole time range spans the width. Empty extents give zoom 1 at time 0.
func FitViewport(ext Extents, width, height float64, s ScaleOptions) Viewport {
	vp := Viewport{Zoom: 1, Width: width, Height: height}
	if ext.Empty() {
		return vp
	}
	vp.Center = (ext.StartTime + ext.EndTime) / 2
	if span := ext.Span(); span > 0 && s.PxPerMS > 0 {
		vp.Zoom = width / (span * s.PxPerMS)
	}
	return vp.Clamp()
}

// Bar is the on-screen box for one renderable measure.
type Bar struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	InView bool    `json:"in_view"`
}

// Rect returns the bar as a geom.Rect.
func (b Bar) Rect() geom.Rect { return geom.R(b.X, b.Y, b.Width, b.Height) }

// BarGeometry places r inside vp. startY offsets every lane vertically.
func BarGeometry(vp Viewport, r Renderable, startY float64, s ScaleOptions) Bar {
	width := max(r.Measure.Duration*s.PxPerMS*vp.Zoom-s.BarXGutter, 0)
	x := (r.Measure.StartTime-vp.Center)*s.PxPerMS*vp.Zoom + vp.Width/2
	y := float64(r.Lane)*s.RowHeight() + startY
	return Bar{
		X:      x,
		Y:      y,
		Width:  width,
		Height: s.BarHeight,
		InView: !(x+width < 0 || vp.Width < x),
	}
}

// HitTest returns the first renderable whose bar strictly contains p.
func HitTest(vp Viewport, rs []Renderable, p geom.Vec2, startY float64, s ScaleOptions) (Renderable, bool) {
	for _, r := range rs {
		b := BarGeometry(vp, r, startY, s)
		if b.InView && b.Rect().ContainsPoint(p) {
			return r, true
		}
	}
	return Renderable{}, false
}

// Visible returns the renderables whose bars intersect the viewport, closed
// edges included.
func Visible(vp Viewport, rs []Renderable, startY float64, s ScaleOptions) []Renderable {
	screen := geom.R(0, 0, vp.Width, vp.Height)
	var out []Renderable
	for _, r := range rs {
		if b := BarGeometry(vp, r, startY, s); b.InView && b.Rect().Intersects(screen) {
			out = append(out, r)
		}
	}
	return out
}
