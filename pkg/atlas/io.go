package atlas

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/mondrian/pkg/errors"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// DecodeSource decodes one image from r. The format is sniffed from the
// data, not the id.
func DecodeSource(id string, r io.Reader) (Source, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Source{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode image %q", id)
	}
	return SourceFromImage(id, img), nil
}

// LoadSources decodes every image file directly inside dir. The id of each
// source is its file name without extension. Sources are returned sorted by
// file name; subdirectories and files with other extensions are skipped.
func LoadSources(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	sources := make([]Source, 0, len(names))
	for _, name := range names {
		src, err := loadSource(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func loadSource(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return DecodeSource(id, f)
}

// WritePNG encodes a texture's pixels as PNG.
func WritePNG(w io.Writer, t Texture) error {
	if err := png.Encode(w, t.Image); err != nil {
		return fmt.Errorf("encode page %d: %w", t.Index, err)
	}
	return nil
}

// ExportPNG writes a texture to a PNG file at path.
func ExportPNG(t Texture, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WritePNG(f, t)
}

// Manifest is the serializable result of a pack: page placements without
// pixel data.
type Manifest struct {
	PageWidth  int    `json:"page_width"`
	PageHeight int    `json:"page_height"`
	Pages      []Page `json:"pages"`
}

// WriteManifest encodes m as indented JSON.
func WriteManifest(w io.Writer, m Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadManifest decodes a manifest written by [WriteManifest].
func ReadManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode manifest")
	}
	return m, nil
}
