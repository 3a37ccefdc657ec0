package geom

import "fmt"

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Position Vec2 `json:"position"`
	Size     Vec2 `json:"size"`
}

// R builds a Rect from its origin and size.
func R(x, y, w, h float64) Rect {
	return Rect{Position: Vec2{X: x, Y: y}, Size: Vec2{X: w, Y: h}}
}

// FromAABB builds a Rect spanning min to max.
func FromAABB(min, max Vec2) Rect {
	return Rect{Position: min, Size: max.Sub(min)}
}

// Min returns the top-left corner.
func (r Rect) Min() Vec2 { return r.Position }

// Max returns the bottom-right corner.
func (r Rect) Max() Vec2 { return r.Position.Add(r.Size) }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Position.X + r.Size.X }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Position.Y + r.Size.Y }

// Area returns width times height.
func (r Rect) Area() float64 { return r.Size.X * r.Size.Y }

// ContainsPoint reports whether p lies strictly inside r.
// Points on an edge are outside.
func (r Rect) ContainsPoint(p Vec2) bool {
	return p.X > r.Position.X && p.Y > r.Position.Y &&
		p.X < r.Right() && p.Y < r.Bottom()
}

// Intersects reports whether r and o share any point, edges included.
func (r Rect) Intersects(o Rect) bool {
	return !(r.Position.X > o.Right() || o.Position.X > r.Right() ||
		r.Position.Y > o.Bottom() || o.Position.Y > r.Bottom())
}

// Overlaps reports whether the interiors of r and o intersect.
// Rectangles that only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Position.X < o.Right() && o.Position.X < r.Right() &&
		r.Position.Y < o.Bottom() && o.Position.Y < r.Bottom()
}

// Within reports whether r lies inside [0,w) x [0,h).
func (r Rect) Within(w, h float64) bool {
	return r.Position.X >= 0 && r.Position.Y >= 0 &&
		r.Right() <= w && r.Bottom() <= h
}

// String formats r as "WxH@(X,Y)".
func (r Rect) String() string {
	return fmt.Sprintf("%gx%g@(%g,%g)", r.Size.X, r.Size.Y, r.Position.X, r.Position.Y)
}
