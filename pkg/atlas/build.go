package atlas

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/geom"
)

// Texture is a packed page together with its pixels.
type Texture struct {
	Index int
	Page  Page
	Image *image.RGBA
}

// Region locates one source inside a texture, in pixels and in normalized
// texture coordinates.
type Region struct {
	Page int       `json:"page"`
	Rect geom.Rect `json:"rect"`
	U0   float64   `json:"u0"`
	V0   float64   `json:"v0"`
	U1   float64   `json:"u1"`
	V1   float64   `json:"v1"`
}

// Build copies every placed source into a fresh RGBA image per page.
//
// Sources without pixel data leave their region transparent. A source whose
// bounds differ from its declared size is scaled into the placement with
// nearest-neighbor sampling. A placement with no matching source is an
// error.
func Build(pages []Page, sources []Source) ([]Texture, error) {
	byID := make(map[string]Source, len(sources))
	for _, s := range sources {
		byID[s.ID] = s
	}

	textures := make([]Texture, 0, len(pages))
	for i, p := range pages {
		dst := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
		for _, id := range p.Order {
			src, ok := byID[id]
			if !ok {
				return nil, errors.New(errors.ErrCodeNotFound, "no source for placed image %q", id)
			}
			if src.Image == nil {
				continue
			}
			blit(dst, p.Placements[id], src.Image)
		}
		textures = append(textures, Texture{Index: i, Page: p, Image: dst})
	}
	return textures, nil
}

func blit(dst *image.RGBA, at geom.Rect, src image.Image) {
	dr := image.Rect(int(at.Position.X), int(at.Position.Y), int(at.Right()), int(at.Bottom()))
	sb := src.Bounds()
	if sb.Dx() == dr.Dx() && sb.Dy() == dr.Dy() {
		draw.Copy(dst, dr.Min, src, sb, draw.Src, nil)
		return
	}
	draw.NearestNeighbor.Scale(dst, dr, src, sb, draw.Src, nil)
}

// Region returns where id sits in t.
func (t Texture) Region(id string) (Region, bool) {
	r, ok := t.Page.Placements[id]
	if !ok {
		return Region{}, false
	}
	w, h := float64(t.Page.Width), float64(t.Page.Height)
	return Region{
		Page: t.Index,
		Rect: r,
		U0:   r.Position.X / w,
		V0:   r.Position.Y / h,
		U1:   r.Right() / w,
		V1:   r.Bottom() / h,
	}, true
}
