package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mondrian/pkg/atlas"
	"github.com/matzehuels/mondrian/pkg/trace"
)

// Palette. Numbers are ANSI 256 colors.
var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	StyleLink  = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// statusIcon is a one-glyph prefix for status lines.
type statusIcon struct {
	glyph string
	style lipgloss.Style
}

var (
	iconOK   = statusIcon{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	iconFail = statusIcon{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	iconWarn = statusIcon{"!", lipgloss.NewStyle().Foreground(colorAmber)}
	iconNote = statusIcon{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func (ic statusIcon) println(msg string) {
	fmt.Println(ic.style.Render(ic.glyph) + " " + msg)
}

func printSuccess(format string, args ...any) { iconOK.println(fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { iconFail.println(fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { iconNote.println(fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	iconWarn.println(iconWarn.style.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written output file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints counts and cache status on a single dim line.
// Zero counts are omitted.
func printStats(cached bool, stats ...stat) {
	fmt.Println(statsLine(cached, stats...))
}

// stat is one "<n> <unit>" entry of a stats line.
type stat struct {
	n    int
	unit string
}

func statsLine(cached bool, stats ...stat) string {
	var parts []string
	for _, c := range stats {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.unit))
		}
	}

	status := lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
	if cached {
		status = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}
	for i := range parts {
		parts[i] = StyleDim.Render(parts[i])
	}
	return "  " + strings.Join(append(parts, status), StyleDim.Render(" · "))
}

// maxPreviewRows caps the number of rows a preview table shows.
const maxPreviewRows = 12

var headerStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorTeal)
			}
			return lipgloss.NewStyle()
		})
}

// laneTable summarizes a layout: per lane, how many measures it holds and
// the time it covers.
func laneTable(rs []trace.Renderable) string {
	type laneSummary struct {
		count      int
		start, end float64
	}
	var lanes []laneSummary
	for _, r := range rs {
		for len(lanes) <= r.Lane {
			lanes = append(lanes, laneSummary{})
		}
		l := &lanes[r.Lane]
		if l.count == 0 || r.Measure.StartTime < l.start {
			l.start = r.Measure.StartTime
		}
		if l.count == 0 || r.Measure.End() > l.end {
			l.end = r.Measure.End()
		}
		l.count++
	}

	t := newTable("Lane", "Measures", "From (ms)", "To (ms)")
	for i, l := range lanes {
		if i == maxPreviewRows {
			t.Row("…", fmt.Sprintf("+%d lanes", len(lanes)-i), "", "")
			break
		}
		t.Row(strconv.Itoa(i), strconv.Itoa(l.count), formatMS(l.start), formatMS(l.end))
	}
	return t.Render()
}

// pageTable summarizes packed atlas pages.
func pageTable(pages []atlas.Page) string {
	t := newTable("Page", "Images", "Size", "Used")
	for i, p := range pages {
		if i == maxPreviewRows {
			t.Row("…", fmt.Sprintf("+%d pages", len(pages)-i), "", "")
			break
		}
		t.Row(
			strconv.Itoa(i),
			strconv.Itoa(p.Len()),
			fmt.Sprintf("%dx%d", p.Width, p.Height),
			fmt.Sprintf("%.0f%%", p.Utilization()*100),
		)
	}
	return t.Render()
}

func formatMS(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }
