package geom

import "math"

// Vec2 is a 2D point or vector.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mul multiplies component-wise.
func (v Vec2) Mul(o Vec2) Vec2 {
	return Vec2{X: v.X * o.X, Y: v.Y * o.Y}
}

// Div divides component-wise. Division by a zero component yields ±Inf or NaN.
func (v Vec2) Div(o Vec2) Vec2 {
	return Vec2{X: v.X / o.X, Y: v.Y / o.Y}
}

// Scale multiplies both components by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vec2) DistanceTo(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}
