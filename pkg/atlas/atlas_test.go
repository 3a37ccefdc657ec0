package atlas

import (
	"math/rand"
	"testing"

	"github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/geom"
)

func src(id string, w, h int) Source {
	return Source{ID: id, Width: w, Height: h}
}

func TestPackEmpty(t *testing.T) {
	pages, err := Pack(nil, 100, 100)
	if err != nil {
		t.Fatalf("Pack(nil) error: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("Pack(nil) = %d pages, want 0", len(pages))
	}
}

func TestPackShelfWrap(t *testing.T) {
	pages, err := Pack([]Source{src("A", 100, 50), src("B", 150, 50), src("C", 50, 50)}, 200, 100)
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	want := map[string]geom.Rect{
		"A": geom.R(0, 0, 100, 50),
		"B": geom.R(0, 50, 150, 50),
		"C": geom.R(150, 50, 50, 50),
	}
	for id, r := range want {
		if got := pages[0].Placements[id]; got != r {
			t.Errorf("%s = %v, want %v", id, got, r)
		}
	}
	if got := pages[0].Order; len(got) != 3 || got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Errorf("Order = %v, want [A B C]", got)
	}
}

func TestPackPageOverflow(t *testing.T) {
	tests := []struct {
		name      string
		images    []Source
		w, h      int
		wantPages []map[string]geom.Rect
	}{
		{
			name:   "each square needs its own page",
			images: []Source{src("a", 60, 60), src("b", 60, 60), src("c", 60, 60)},
			w:      100, h: 100,
			wantPages: []map[string]geom.Rect{
				{"a": geom.R(0, 0, 60, 60)},
				{"b": geom.R(0, 0, 60, 60)},
				{"c": geom.R(0, 0, 60, 60)},
			},
		},
		{
			name:   "two rows then new page",
			images: []Source{src("a", 50, 50), src("b", 50, 50), src("c", 50, 50), src("d", 50, 50), src("e", 50, 50)},
			w:      100, h: 100,
			wantPages: []map[string]geom.Rect{
				{
					"a": geom.R(0, 0, 50, 50),
					"b": geom.R(50, 0, 50, 50),
					"c": geom.R(0, 50, 50, 50),
					"d": geom.R(50, 50, 50, 50),
				},
				{"e": geom.R(0, 0, 50, 50)},
			},
		},
		{
			name:   "row height is tallest image",
			images: []Source{src("short", 40, 10), src("tall", 40, 30), src("next", 40, 10)},
			w:      80, h: 100,
			wantPages: []map[string]geom.Rect{
				{
					"short": geom.R(0, 0, 40, 10),
					"tall":  geom.R(40, 0, 40, 30),
					"next":  geom.R(0, 30, 40, 10),
				},
			},
		},
		{
			name:   "exact fit",
			images: []Source{src("full", 100, 100)},
			w:      100, h: 100,
			wantPages: []map[string]geom.Rect{
				{"full": geom.R(0, 0, 100, 100)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := Pack(tt.images, tt.w, tt.h)
			if err != nil {
				t.Fatalf("Pack() error: %v", err)
			}
			if len(pages) != len(tt.wantPages) {
				t.Fatalf("got %d pages, want %d", len(pages), len(tt.wantPages))
			}
			for i, want := range tt.wantPages {
				if len(pages[i].Placements) != len(want) {
					t.Errorf("page %d has %d placements, want %d", i, len(pages[i].Placements), len(want))
				}
				for id, r := range want {
					if got := pages[i].Placements[id]; got != r {
						t.Errorf("page %d %s = %v, want %v", i, id, got, r)
					}
				}
			}
		})
	}
}

func TestPackErrors(t *testing.T) {
	tests := []struct {
		name   string
		images []Source
		w, h   int
		code   errors.Code
	}{
		{"too wide", []Source{src("ok", 10, 10), src("wide", 101, 10)}, 100, 100, errors.ErrCodeOversizedInput},
		{"too tall", []Source{src("tall", 10, 101)}, 100, 100, errors.ErrCodeOversizedInput},
		{"zero page", []Source{src("a", 1, 1)}, 0, 100, errors.ErrCodeInvalidConfig},
		{"negative page", nil, 100, -1, errors.ErrCodeInvalidConfig},
		{"zero image", []Source{src("a", 0, 5)}, 100, 100, errors.ErrCodeInvalidConfig},
		{"negative image", []Source{src("a", 5, -5)}, 100, 100, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := Pack(tt.images, tt.w, tt.h)
			if err == nil {
				t.Fatal("Pack() error = nil, want error")
			}
			if pages != nil {
				t.Errorf("Pack() returned %d pages alongside an error", len(pages))
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Pack() code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestPackDuplicateIDLastWins(t *testing.T) {
	pages, err := Pack([]Source{src("x", 10, 10), src("x", 20, 20)}, 100, 100)
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	if got := pages[0].Placements["x"]; got != geom.R(10, 0, 20, 20) {
		t.Errorf("x = %v, want the second placement", got)
	}
	if len(pages[0].Order) != 1 {
		t.Errorf("Order = %v, want a single entry", pages[0].Order)
	}
}

func TestPackPropertiesRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const pw, ph = 256, 128
	for round := 0; round < 40; round++ {
		images := make([]Source, 150)
		for i := range images {
			images[i] = src(string(rune('a'+i%26))+string(rune('0'+i/26)), 1+rng.Intn(pw), 1+rng.Intn(ph/2))
		}
		pages, err := Pack(images, pw, ph)
		if err != nil {
			t.Fatalf("round %d: Pack() error: %v", round, err)
		}

		seen := make(map[string]int)
		for pi, p := range pages {
			if p.Width != pw || p.Height != ph {
				t.Fatalf("round %d: page %d is %dx%d", round, pi, p.Width, p.Height)
			}
			rects := make([]geom.Rect, 0, len(p.Order))
			for _, id := range p.Order {
				seen[id]++
				r := p.Placements[id]
				if !r.Within(pw, ph) {
					t.Errorf("round %d: %s at %v is outside the page", round, id, r)
				}
				rects = append(rects, r)
			}
			for i := range rects {
				for j := i + 1; j < len(rects); j++ {
					if rects[i].Overlaps(rects[j]) {
						t.Errorf("round %d page %d: %v overlaps %v", round, pi, rects[i], rects[j])
					}
				}
			}
		}

		for _, img := range images {
			if seen[img.ID] != 1 {
				t.Errorf("round %d: %s placed %d times, want 1", round, img.ID, seen[img.ID])
			}
			_, r, ok := Locate(pages, img.ID)
			if !ok || int(r.Size.X) != img.Width || int(r.Size.Y) != img.Height {
				t.Errorf("round %d: %s placement %v does not match %dx%d", round, img.ID, r, img.Width, img.Height)
			}
		}
	}
}

func TestPageUtilization(t *testing.T) {
	pages, err := Pack([]Source{src("a", 50, 50), src("b", 50, 50)}, 100, 100)
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	if got := pages[0].Utilization(); got != 0.5 {
		t.Errorf("Utilization() = %v, want 0.5", got)
	}
}
