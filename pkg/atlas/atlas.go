package atlas

import (
	"fmt"
	"image"

	"github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/geom"
)

// DefaultPageSize is the default width and height of an atlas page, in pixels.
const DefaultPageSize = 2048

// Source is one image to be packed. Image may be nil when only placements
// are needed.
type Source struct {
	ID     string      `json:"id"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Image  image.Image `json:"-"`
}

// SourceFromImage builds a Source sized to img's bounds.
func SourceFromImage(id string, img image.Image) Source {
	b := img.Bounds()
	return Source{ID: id, Width: b.Dx(), Height: b.Dy(), Image: img}
}

// Page is one packed atlas page.
type Page struct {
	Width      int                  `json:"width"`
	Height     int                  `json:"height"`
	Placements map[string]geom.Rect `json:"placements"`
	Order      []string             `json:"order"` // ids in placement order
}

// Len returns the number of placements on the page.
func (p Page) Len() int { return len(p.Order) }

// Placement returns the rectangle for id on this page.
func (p Page) Placement(id string) (geom.Rect, bool) {
	r, ok := p.Placements[id]
	return r, ok
}

// Utilization returns the fraction of the page area covered by placements.
func (p Page) Utilization() float64 {
	if p.Width <= 0 || p.Height <= 0 {
		return 0
	}
	var used float64
	for _, r := range p.Placements {
		used += r.Area()
	}
	return used / float64(p.Width*p.Height)
}

func newPage(w, h int) Page {
	return Page{Width: w, Height: h, Placements: make(map[string]geom.Rect)}
}

// shelf is the insertion cursor of the page being filled.
type shelf struct {
	x, y, rowHeight int
}

// Validate checks the page size and every image size.
func Validate(images []Source, pageWidth, pageHeight int) error {
	if err := errors.ValidateDimensions("page", pageWidth, pageHeight); err != nil {
		return err
	}
	for _, img := range images {
		if err := errors.ValidateDimensions(fmt.Sprintf("image %q", img.ID), img.Width, img.Height); err != nil {
			return err
		}
	}
	return nil
}

// Pack places images onto pages of pageWidth x pageHeight.
//
// An empty input yields no pages. Duplicate ids are not detected; a later
// image with the same id replaces the earlier entry in its page's map.
func Pack(images []Source, pageWidth, pageHeight int) ([]Page, error) {
	if err := Validate(images, pageWidth, pageHeight); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, nil
	}

	var pages []Page
	page := newPage(pageWidth, pageHeight)
	var cur shelf

	for _, img := range images {
		if img.Width > pageWidth || img.Height > pageHeight {
			return nil, errors.New(errors.ErrCodeOversizedInput,
				"image %q is %dx%d, larger than the %dx%d page", img.ID, img.Width, img.Height, pageWidth, pageHeight)
		}
		for {
			if cur.x+img.Width > pageWidth {
				cur.y += cur.rowHeight
				cur.x = 0
				cur.rowHeight = 0
			}
			if cur.y+img.Height > pageHeight {
				pages = append(pages, page)
				page = newPage(pageWidth, pageHeight)
				cur = shelf{}
				continue
			}
			break
		}

		if _, dup := page.Placements[img.ID]; !dup {
			page.Order = append(page.Order, img.ID)
		}
		page.Placements[img.ID] = geom.R(float64(cur.x), float64(cur.y), float64(img.Width), float64(img.Height))
		cur.x += img.Width
		cur.rowHeight = max(cur.rowHeight, img.Height)
	}
	return append(pages, page), nil
}

// Locate returns the index of the page holding id and its placement.
func Locate(pages []Page, id string) (int, geom.Rect, bool) {
	for i, p := range pages {
		if r, ok := p.Placements[id]; ok {
			return i, r, true
		}
	}
	return -1, geom.Rect{}, false
}
