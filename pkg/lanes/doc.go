// Package lanes assigns time intervals to non-overlapping horizontal lanes.
//
// # Overview
//
// A trace is a flat list of measures, each with a start time and a duration.
// Drawn as a flame chart, measures that overlap in time must sit in different
// rows. [Layout] runs a sweep line over the start and end edges of every
// interval and gives each one the lowest lane past every lane still open.
//
// # Ordering
//
// Edges are sorted by time. At equal times:
//
//  1. End edges come before Start edges, so a lane freed at t can be reused
//     by an interval starting at t.
//  2. Tied End edges close the most recently started interval first.
//  3. Tied Start edges open the interval that ends latest first, so the
//     enclosing interval takes the lower lane.
//
// The result is deterministic for a given input order. For properly nested
// intervals (call stacks) the lane count equals the maximum nesting depth.
//
// # Zero-length intervals
//
// Intervals with a zero duration never occupy a lane and are left out of
// the result. Negative durations and non-finite values are rejected by
// [Validate] before any work is done.
package lanes
