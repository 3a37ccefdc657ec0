package flame

import (
	"fmt"
	"hash/fnv"
)

// Channel ranges of bar colors. Each channel is picked inside its range so
// bars stay light enough for dark text.
var (
	redRange   = [2]float64{0.5, 1}
	greenRange = [2]float64{0.3, 1}
	blueRange  = [2]float64{0.7, 1}
)

// Color returns the fill color for a measure name as "#rrggbb".
func Color(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	sum := h.Sum32()

	r := channel(redRange, byte(sum))
	g := channel(greenRange, byte(sum>>8))
	b := channel(blueRange, byte(sum>>16))
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func channel(rng [2]float64, v byte) uint8 {
	f := rng[0] + (rng[1]-rng[0])*float64(v)/255
	return uint8(f*255 + 0.5)
}
