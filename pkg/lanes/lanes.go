package lanes

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/mondrian/pkg/errors"
)

// Interval is anything with a start time and a duration, both in the same unit.
type Interval interface {
	Start() float64
	Duration() float64
}

// Assignment pairs an interval with the lane it was given.
type Assignment[T Interval] struct {
	Lane int `json:"lane"`
	Item T   `json:"item"`
}

type edgeKind uint8

const (
	edgeEnd edgeKind = iota
	edgeStart
)

type edge struct {
	time float64
	kind edgeKind
	idx  int // index into the intervals slice
}

// Validate checks that every interval has a finite start and a finite,
// non-negative duration.
func Validate[T Interval](intervals []T) error {
	for i, iv := range intervals {
		if err := errors.ValidateFinite(fmt.Sprintf("interval %d start", i), iv.Start()); err != nil {
			return err
		}
		d := iv.Duration()
		if err := errors.ValidateFinite(fmt.Sprintf("interval %d duration", i), d); err != nil {
			return err
		}
		if d < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "interval %d has negative duration %v", i, d)
		}
	}
	return nil
}

// Layout assigns a lane to every interval with a positive duration.
//
// Assignments are returned in the order the sweep opened them, which is not
// the input order. The input slice is not modified.
func Layout[T Interval](intervals []T) ([]Assignment[T], error) {
	if err := Validate(intervals); err != nil {
		return nil, err
	}

	edges := buildEdges(intervals)
	slices.SortStableFunc(edges, func(a, b edge) int {
		return compareEdges(intervals, a, b)
	})

	out := make([]Assignment[T], 0, len(edges)/2)
	var open openTable
	laneOf := make([]int, len(intervals))
	for i := range laneOf {
		laneOf[i] = -1
	}

	for _, e := range edges {
		switch e.kind {
		case edgeStart:
			lane := open.claim(e.idx)
			laneOf[e.idx] = lane
			out = append(out, Assignment[T]{Lane: lane, Item: intervals[e.idx]})
		case edgeEnd:
			lane := laneOf[e.idx]
			if lane < 0 {
				return nil, errors.New(errors.ErrCodeInvariantViolation,
					"interval %d closed without an open lane", e.idx)
			}
			open.release(lane)
		}
	}
	return out, nil
}

// LaneCount returns one past the highest lane in assignments.
func LaneCount[T Interval](assignments []Assignment[T]) int {
	n := 0
	for _, a := range assignments {
		n = max(n, a.Lane+1)
	}
	return n
}

func buildEdges[T Interval](intervals []T) []edge {
	edges := make([]edge, 0, 2*len(intervals))
	for i, iv := range intervals {
		if iv.Duration() <= 0 {
			continue
		}
		start := iv.Start()
		edges = append(edges,
			edge{time: start, kind: edgeStart, idx: i},
			edge{time: start + iv.Duration(), kind: edgeEnd, idx: i},
		)
	}
	return edges
}

func compareEdges[T Interval](intervals []T, a, b edge) int {
	if c := cmp.Compare(a.time, b.time); c != 0 {
		return c
	}
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	ia, ib := intervals[a.idx], intervals[b.idx]
	if a.kind == edgeEnd {
		// innermost closes first
		return cmp.Compare(ib.Start(), ia.Start())
	}
	// outermost opens first
	return cmp.Compare(ib.Start()+ib.Duration(), ia.Start()+ia.Duration())
}
