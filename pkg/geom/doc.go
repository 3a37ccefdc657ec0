// Package geom provides the small set of 2D primitives shared by the lane
// layout, the atlas packer, and the renderers.
//
// Two rectangle tests are deliberately distinct:
//
//   - [Rect.Intersects] treats edges as closed, so rectangles that merely
//     touch are reported as intersecting. This is the hit test used by the
//     trace viewer for culling.
//   - [Rect.Overlaps] treats interiors as open, so adjacent shelf placements
//     (one ending at x=100, the next starting at x=100) do not overlap.
package geom
