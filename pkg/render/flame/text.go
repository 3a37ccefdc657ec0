package flame

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/mondrian/pkg/trace"
)

// Label placement, in pixels.
const (
	MinLabelWidth = 35
	LabelPadding  = 2
	labelFontSize = 11
)

var labelFace font.Face = basicfont.Face7x13

// TextWidth returns the advance of s in pixels for the label font.
func TextWidth(s string) float64 {
	adv := font.MeasureString(labelFace, s)
	// basicfont is 13px; the SVG asks for 11px.
	return float64(adv) / 64 * labelFontSize / 13
}

// Label returns the text to draw inside a bar of the given width, or "" when
// no label should be drawn.
func Label(name string, barWidth float64) string {
	if barWidth < MinLabelWidth {
		return ""
	}
	return trace.FitText(TextWidth, name, barWidth-2*LabelPadding)
}
