package atlas

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/mondrian/pkg/errors"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func TestBuildCopiesPixels(t *testing.T) {
	sources := []Source{
		SourceFromImage("red", solid(4, 2, red)),
		SourceFromImage("blue", solid(3, 3, blue)),
	}
	pages, err := Pack(sources, 8, 8)
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	textures, err := Build(pages, sources)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(textures) != 1 {
		t.Fatalf("got %d textures, want 1", len(textures))
	}
	img := textures[0].Image
	if got := img.RGBAAt(0, 0); got != red {
		t.Errorf("pixel (0,0) = %v, want red", got)
	}
	if got := img.RGBAAt(4, 2); got != blue {
		t.Errorf("pixel (4,2) = %v, want blue", got)
	}
	if got := img.RGBAAt(7, 7); got.A != 0 {
		t.Errorf("pixel (7,7) = %v, want transparent", got)
	}
}

func TestBuildScalesMismatchedSource(t *testing.T) {
	s := Source{ID: "big", Width: 2, Height: 2, Image: solid(6, 6, blue)}
	pages, err := Pack([]Source{s}, 4, 4)
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	textures, err := Build(pages, []Source{s})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := textures[0].Image.RGBAAt(1, 1); got != blue {
		t.Errorf("pixel (1,1) = %v, want blue", got)
	}
	if got := textures[0].Image.RGBAAt(2, 2); got.A != 0 {
		t.Errorf("pixel (2,2) = %v, want transparent", got)
	}
}

func TestBuildMissingSource(t *testing.T) {
	pages, err := Pack([]Source{src("ghost", 2, 2)}, 4, 4)
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	_, err = Build(pages, nil)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Build() error = %v, want NOT_FOUND", err)
	}
}

func TestTextureRegion(t *testing.T) {
	pages, err := Pack([]Source{src("a", 100, 50), src("b", 150, 50)}, 200, 100)
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	textures, err := Build(pages, []Source{src("a", 100, 50), src("b", 150, 50)})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	r, ok := textures[0].Region("b")
	if !ok {
		t.Fatal("Region(b) not found")
	}
	if r.U0 != 0 || r.V0 != 0.5 || r.U1 != 0.75 || r.V1 != 1 {
		t.Errorf("Region(b) UV = (%v,%v)-(%v,%v), want (0,0.5)-(0.75,1)", r.U0, r.V0, r.U1, r.V1)
	}
	if _, ok := textures[0].Region("missing"); ok {
		t.Error("Region(missing) found, want not found")
	}
}

func TestPartition(t *testing.T) {
	tests := []struct {
		n, shards int
		want      []int
	}{
		{10, 3, []int{4, 4, 2}},
		{9, 3, []int{3, 3, 3}},
		{2, 5, []int{1, 1}},
		{0, 4, nil},
	}
	for _, tt := range tests {
		items := make([]int, tt.n)
		chunks := Partition(items, tt.shards)
		if len(chunks) != len(tt.want) {
			t.Errorf("Partition(%d, %d) = %d chunks, want %d", tt.n, tt.shards, len(chunks), len(tt.want))
			continue
		}
		for i, c := range chunks {
			if len(c) != tt.want[i] {
				t.Errorf("Partition(%d, %d)[%d] has %d items, want %d", tt.n, tt.shards, i, len(c), tt.want[i])
			}
		}
	}
}

func TestPackShardedConcatenatesInOrder(t *testing.T) {
	var images []Source
	for i := 0; i < 9; i++ {
		images = append(images, src(string(rune('a'+i)), 40, 40))
	}

	pages, err := PackSharded(context.Background(), images, 100, 100, 3)
	if err != nil {
		t.Fatalf("PackSharded() error: %v", err)
	}

	var want []Page
	for _, chunk := range Partition(images, 3) {
		p, err := Pack(chunk, 100, 100)
		if err != nil {
			t.Fatalf("Pack() error: %v", err)
		}
		want = append(want, p...)
	}
	if len(pages) != len(want) {
		t.Fatalf("got %d pages, want %d", len(pages), len(want))
	}
	for i := range want {
		if len(pages[i].Order) != len(want[i].Order) || pages[i].Order[0] != want[i].Order[0] {
			t.Errorf("page %d order = %v, want %v", i, pages[i].Order, want[i].Order)
		}
	}
}

func TestPackShardedError(t *testing.T) {
	images := []Source{src("a", 10, 10), src("b", 10, 10), src("huge", 500, 10)}
	pages, err := PackSharded(context.Background(), images, 100, 100, 3)
	if !errors.Is(err, errors.ErrCodeOversizedInput) {
		t.Errorf("PackSharded() error = %v, want OVERSIZED_INPUT", err)
	}
	if pages != nil {
		t.Errorf("PackSharded() returned pages alongside an error")
	}
}

func TestPackShardedCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PackSharded(ctx, []Source{src("a", 1, 1), src("b", 1, 1)}, 10, 10, 2)
	if err == nil {
		t.Error("PackSharded() with canceled context returned nil error")
	}
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, img image.Image) {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
	}
	write("zeta.png", solid(3, 2, red))
	write("alpha.png", solid(5, 4, blue))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	sources, err := LoadSources(dir)
	if err != nil {
		t.Fatalf("LoadSources() error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if sources[0].ID != "alpha" || sources[0].Width != 5 || sources[0].Height != 4 {
		t.Errorf("sources[0] = %s %dx%d, want alpha 5x4", sources[0].ID, sources[0].Width, sources[0].Height)
	}
	if sources[1].ID != "zeta" {
		t.Errorf("sources[1].ID = %s, want zeta", sources[1].ID)
	}
}

func TestLoadSourcesBadImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadSources(dir)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("LoadSources() error = %v, want INVALID_FORMAT", err)
	}
}

func TestLoadSourcesMissingDir(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadSources() error = %v, want FILE_NOT_FOUND", err)
	}
}
