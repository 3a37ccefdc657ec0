package trace

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/mondrian/pkg/lanes"
)

// Measure is one timed span of a trace. Times are in milliseconds.
type Measure struct {
	Name      string         `json:"name"`
	StartTime float64        `json:"startTime"`
	Duration  float64        `json:"duration"`
	Group     string         `json:"group,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
}

// End returns StartTime + Duration.
func (m Measure) End() float64 { return m.StartTime + m.Duration }

// Renderable is a measure with its lane resolved.
type Renderable struct {
	Lane    int     `json:"lane"`
	Measure Measure `json:"measure"`
}

// measureInterval adapts Measure to lanes.Interval.
type measureInterval struct{ m Measure }

func (mi measureInterval) Start() float64    { return mi.m.StartTime }
func (mi measureInterval) Duration() float64 { return mi.m.Duration }

// Stack lays out measures into lanes. Zero-length measures are dropped.
func Stack(measures []Measure) ([]Renderable, error) {
	in := make([]measureInterval, len(measures))
	for i, m := range measures {
		in[i] = measureInterval{m}
	}
	out, err := lanes.Layout(in)
	if err != nil {
		return nil, err
	}
	rs := make([]Renderable, len(out))
	for i, a := range out {
		rs[i] = Renderable{Lane: a.Lane, Measure: a.Item.m}
	}
	return rs, nil
}

// LaneCount returns the number of lanes rs occupies: the highest lane + 1,
// or 0 for an empty layout.
func LaneCount(rs []Renderable) int {
	n := 0
	for _, r := range rs {
		n = max(n, r.Lane+1)
	}
	return n
}

// Extents bounds a laid-out trace in time and lanes.
type Extents struct {
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	MaxLane   int     `json:"maxLane"`
}

// Empty reports whether the extents came from an empty trace.
func (e Extents) Empty() bool { return e.EndTime < e.StartTime }

// Span returns EndTime - StartTime, or 0 when empty.
func (e Extents) Span() float64 {
	if e.Empty() {
		return 0
	}
	return e.EndTime - e.StartTime
}

// ComputeExtents scans rs. An empty input gives StartTime=+Inf, EndTime=-Inf
// and MaxLane=0.
func ComputeExtents(rs []Renderable) Extents {
	ext := Extents{StartTime: math.Inf(1), EndTime: math.Inf(-1)}
	for _, r := range rs {
		ext.MaxLane = max(ext.MaxLane, r.Lane)
		ext.StartTime = math.Min(ext.StartTime, r.Measure.StartTime)
		ext.EndTime = math.Max(ext.EndTime, r.Measure.End())
	}
	return ext
}

// MarshalJSON encodes the bounds of an empty trace as null, since JSON has no
// representation for infinities.
func (e Extents) MarshalJSON() ([]byte, error) {
	type wire struct {
		StartTime *float64 `json:"startTime"`
		EndTime   *float64 `json:"endTime"`
		MaxLane   int      `json:"maxLane"`
	}
	w := wire{MaxLane: e.MaxLane}
	if !e.Empty() {
		w.StartTime, w.EndTime = &e.StartTime, &e.EndTime
	}
	return json.Marshal(w)
}
