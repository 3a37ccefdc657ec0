package trace

import "strings"

// Ellipsis is inserted by [FitText] in place of removed characters.
const Ellipsis = "…"

// FitText shortens label so that measure(label) <= width, keeping as many
// characters as possible from both ends around an ellipsis. It returns label
// unchanged if it already fits and "" if not even the ellipsis fits.
//
// measure is assumed to be monotonic in the number of kept characters.
func FitText(measure func(string) float64, label string, width float64) string {
	if measure(label) <= width {
		return label
	}
	runes := []rune(label)
	// keep k runes on each side; k = len/2 would not shorten anything
	lo, hi := 0, (len(runes)-1)/2
	if measure(truncateMiddle(runes, 0)) > width {
		return ""
	}
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if measure(truncateMiddle(runes, mid)) <= width {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return truncateMiddle(runes, lo)
}

func truncateMiddle(runes []rune, keep int) string {
	var b strings.Builder
	b.WriteString(string(runes[:keep]))
	b.WriteString(Ellipsis)
	b.WriteString(string(runes[len(runes)-keep:]))
	return b.String()
}
