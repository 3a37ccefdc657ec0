package storage

import (
	"context"
	"testing"

	"github.com/matzehuels/mondrian/pkg/atlas"
	"github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/geom"
	"github.com/matzehuels/mondrian/pkg/trace"
)

func TestMemoryStoreLayout(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	doc := &LayoutDoc{
		TraceHash: "abc",
		Lanes: []trace.Renderable{
			{Lane: 0, Measure: trace.Measure{Name: "main", StartTime: 0, Duration: 10}},
		},
		LaneCount: 1,
	}
	if err := s.SaveLayout(ctx, doc); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	if err := errors.ValidateDocumentID(doc.ID); err != nil {
		t.Errorf("assigned id %q: %v", doc.ID, err)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	got, err := s.GetLayout(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetLayout: %v", err)
	}
	if got.TraceHash != "abc" || len(got.Lanes) != 1 || got.Lanes[0].Measure.Name != "main" {
		t.Errorf("GetLayout = %+v", got)
	}
}

func TestMemoryStoreKeepsExplicitID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	doc := &AtlasDoc{ID: "fixed", PageWidth: 64, PageHeight: 64}
	if err := s.SaveAtlas(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if doc.ID != "fixed" {
		t.Errorf("ID = %q, want fixed", doc.ID)
	}
}

func TestMemoryStoreAtlas(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	page := atlas.Page{
		Width:      100,
		Height:     100,
		Placements: map[string]geom.Rect{"a": geom.R(0, 0, 10, 10)},
		Order:      []string{"a"},
	}
	doc := &AtlasDoc{PageWidth: 100, PageHeight: 100, Pages: []atlas.Page{page}}
	if err := s.SaveAtlas(ctx, doc); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetAtlas(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if r, ok := got.Pages[0].Placement("a"); !ok || r != geom.R(0, 0, 10, 10) {
		t.Errorf("placement a = %v, %v", r, ok)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tests := []struct {
		name string
		get  func() error
	}{
		{"layout", func() error { _, err := s.GetLayout(ctx, "missing"); return err }},
		{"atlas", func() error { _, err := s.GetAtlas(ctx, "missing"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.get()
			if !errors.Is(err, errors.ErrCodeNotFound) {
				t.Errorf("err = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	doc := &LayoutDoc{TraceHash: "h"}
	_ = s.SaveLayout(ctx, doc)
	doc.TraceHash = "changed"

	got, _ := s.GetLayout(ctx, doc.ID)
	if got.TraceHash != "h" {
		t.Errorf("stored doc mutated through caller pointer: %q", got.TraceHash)
	}
}
