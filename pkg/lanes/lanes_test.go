package lanes

import (
	"math"
	"math/rand"
	"testing"

	"github.com/matzehuels/mondrian/pkg/errors"
)

type span struct {
	name     string
	start    float64
	duration float64
}

func (s span) Start() float64    { return s.start }
func (s span) Duration() float64 { return s.duration }

func lanesByName(t *testing.T, in []span) map[string]int {
	t.Helper()
	out, err := Layout(in)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	got := make(map[string]int, len(out))
	for _, a := range out {
		got[a.Item.name] = a.Lane
	}
	return got
}

func TestLayoutEmpty(t *testing.T) {
	out, err := Layout([]span(nil))
	if err != nil {
		t.Fatalf("Layout(nil) error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Layout(nil) = %v, want empty", out)
	}
}

func TestLayoutTieBreaks(t *testing.T) {
	tests := []struct {
		name string
		in   []span
		want map[string]int
	}{
		{
			name: "longer interval opens first",
			in:   []span{{"B", 0, 5}, {"A", 0, 10}},
			want: map[string]int{"A": 0, "B": 1},
		},
		{
			name: "end before start at same instant",
			in:   []span{{"A", 0, 5}, {"B", 5, 5}},
			want: map[string]int{"A": 0, "B": 0},
		},
		{
			name: "nested call stack",
			in: []span{
				{"main", 0, 100},
				{"parse", 0, 40},
				{"lex", 0, 10},
				{"render", 40, 60},
				{"paint", 50, 10},
			},
			want: map[string]int{"main": 0, "parse": 1, "lex": 2, "render": 1, "paint": 2},
		},
		{
			name: "inner closes first then sibling reuses lane",
			in:   []span{{"outer", 0, 10}, {"inner", 2, 8}, {"next", 10, 3}},
			want: map[string]int{"outer": 0, "inner": 1, "next": 0},
		},
		{
			name: "hole below an open lane is not reused",
			in:   []span{{"A", 0, 10}, {"B", 1, 2}, {"C", 2, 18}, {"D", 4, 1}},
			want: map[string]int{"A": 0, "B": 1, "C": 2, "D": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lanesByName(t, tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d assignments, want %d", len(got), len(tt.want))
			}
			for name, lane := range tt.want {
				if got[name] != lane {
					t.Errorf("%s lane = %d, want %d", name, got[name], lane)
				}
			}
		})
	}
}

func TestLayoutDiscoveryOrder(t *testing.T) {
	in := []span{{"late", 20, 5}, {"early", 0, 5}, {"mid", 10, 5}}
	out, err := Layout(in)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	want := []string{"early", "mid", "late"}
	for i, a := range out {
		if a.Item.name != want[i] {
			t.Errorf("out[%d] = %s, want %s", i, a.Item.name, want[i])
		}
	}
}

func TestLayoutSkipsZeroDuration(t *testing.T) {
	in := []span{{"A", 0, 10}, {"zero", 5, 0}, {"B", 2, 3}}
	out, err := Layout(in)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	for _, a := range out {
		if a.Item.name == "zero" {
			t.Error("zero-duration interval was assigned a lane")
		}
	}
}

func TestLayoutDoesNotMutateInput(t *testing.T) {
	in := []span{{"B", 0, 5}, {"A", 0, 10}}
	if _, err := Layout(in); err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if in[0].name != "B" || in[1].name != "A" {
		t.Errorf("input reordered: %v", in)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      []span
		wantErr bool
	}{
		{"ok", []span{{"A", 0, 1}}, false},
		{"zero duration", []span{{"A", 0, 0}}, false},
		{"negative duration", []span{{"A", 0, -1}}, true},
		{"nan start", []span{{"A", math.NaN(), 1}}, true},
		{"inf duration", []span{{"A", 0, math.Inf(1)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
			if _, lerr := Layout(tt.in); (lerr != nil) != tt.wantErr {
				t.Errorf("Layout() error = %v, wantErr %v", lerr, tt.wantErr)
			}
		})
	}
}

func TestLayoutNoOverlapRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		in := make([]span, 200)
		for i := range in {
			in[i] = span{start: float64(rng.Intn(1000)), duration: float64(rng.Intn(50))}
		}
		out, err := Layout(in)
		if err != nil {
			t.Fatalf("round %d: Layout() error: %v", round, err)
		}
		byLane := make(map[int][]span)
		for _, a := range out {
			byLane[a.Lane] = append(byLane[a.Lane], a.Item)
		}
		for lane, items := range byLane {
			for i := range items {
				for j := i + 1; j < len(items); j++ {
					a, b := items[i], items[j]
					if a.start < b.start+b.duration && b.start < a.start+a.duration {
						t.Fatalf("round %d: lane %d has overlapping %v and %v", round, lane, a, b)
					}
				}
			}
		}
	}
}

// nestedTrace builds a random call tree where children lie inside their parent
// and siblings do not overlap.
func nestedTrace(rng *rand.Rand, start, end float64, depth int, out *[]span) {
	*out = append(*out, span{start: start, duration: end - start})
	if depth == 0 || end-start < 4 {
		return
	}
	cursor := start
	for cursor < end {
		gap := float64(rng.Intn(3))
		width := float64(1 + rng.Intn(int(end-start)/2+1))
		s := cursor + gap
		e := min(s+width, end)
		if s >= e {
			break
		}
		nestedTrace(rng, s, e, depth-1, out)
		cursor = e
	}
}

func maxOverlap(in []span) int {
	best := 0
	for _, p := range in {
		if p.duration <= 0 {
			continue
		}
		n := 0
		for _, q := range in {
			if q.duration > 0 && q.start <= p.start && p.start < q.start+q.duration {
				n++
			}
		}
		best = max(best, n)
	}
	return best
}

func TestLayoutMinimalOnNestedTraces(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 30; round++ {
		var in []span
		nestedTrace(rng, 0, 200, 6, &in)
		rng.Shuffle(len(in), func(i, j int) { in[i], in[j] = in[j], in[i] })

		out, err := Layout(in)
		if err != nil {
			t.Fatalf("round %d: Layout() error: %v", round, err)
		}
		if got, want := LaneCount(out), maxOverlap(in); got != want {
			t.Errorf("round %d: LaneCount = %d, want max overlap %d", round, got, want)
		}
	}
}

func TestOpenTableTrimsTrailingHoles(t *testing.T) {
	var tab openTable
	for i := 0; i < 3; i++ {
		tab.claim(i)
	}
	tab.release(1)
	if tab.len() != 3 {
		t.Errorf("len after releasing middle = %d, want 3", tab.len())
	}
	tab.release(2)
	if tab.len() != 1 {
		t.Errorf("len after releasing top = %d, want 1", tab.len())
	}
	if lane := tab.claim(9); lane != 1 {
		t.Errorf("claim after trim = %d, want 1", lane)
	}
}
