package nodelink

import (
	"cmp"
	"slices"

	"github.com/matzehuels/mondrian/pkg/trace"
)

// Parents returns, for every renderable, the index of its parent in rs or -1
// for roots. The parent of a measure on lane k is the lane k-1 measure that
// is open at its start time.
func Parents(rs []trace.Renderable) []int {
	byLane := make(map[int][]int)
	for i, r := range rs {
		byLane[r.Lane] = append(byLane[r.Lane], i)
	}
	for _, idx := range byLane {
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(rs[a].Measure.StartTime, rs[b].Measure.StartTime)
		})
	}

	parents := make([]int, len(rs))
	for i, r := range rs {
		parents[i] = -1
		if r.Lane == 0 {
			continue
		}
		above := byLane[r.Lane-1]
		start := r.Measure.StartTime
		// above[n] is the first measure that starts after us
		n, _ := slices.BinarySearchFunc(above, start, func(j int, t float64) int {
			if rs[j].Measure.StartTime <= t {
				return -1
			}
			return 1
		})
		if n > 0 && rs[above[n-1]].Measure.End() > start {
			parents[i] = above[n-1]
		}
	}
	return parents
}
