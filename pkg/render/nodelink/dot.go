package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mondrian/pkg/render"
	"github.com/matzehuels/mondrian/pkg/render/flame"
	"github.com/matzehuels/mondrian/pkg/trace"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds start time and duration to node labels.
	Detailed bool
}

var graphAttrs = []string{
	`rankdir=TB`,
	`bgcolor="transparent"`,
	`ranksep=0.5`,
	`nodesep=0.3`,
	`node [shape=box, style="rounded,filled", fontsize=14, margin="0.2,0.1"]`,
}

// ToDOT writes the nesting tree of rs as a Graphviz digraph. Measures on the
// same lane share a rank, and nodes are filled with their flame color.
func ToDOT(rs []trace.Renderable, opts Options) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	for _, a := range graphAttrs {
		fmt.Fprintf(&b, "  %s;\n", a)
	}

	lanes := make(map[int][]string)
	for i, r := range rs {
		id := nodeID(i)
		lanes[r.Lane] = append(lanes[r.Lane], id)
		fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q];\n", id, label(r.Measure, opts.Detailed), flame.Color(r.Measure.Name))
	}
	for _, lane := range slices.Sorted(maps.Keys(lanes)) {
		if ids := lanes[lane]; len(ids) > 1 {
			fmt.Fprintf(&b, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
		}
	}
	for child, parent := range Parents(rs) {
		if parent >= 0 {
			fmt.Fprintf(&b, "  %s -> %s;\n", nodeID(parent), nodeID(child))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func nodeID(i int) string { return "m" + strconv.Itoa(i) }

func label(m trace.Measure, detailed bool) string {
	if !detailed {
		return m.Name
	}
	return fmt.Sprintf("%s\nstart: %gms\nduration: %gms", m.Name, m.StartTime, m.Duration)
}

// RenderSVG lays out dot with the embedded Graphviz and returns SVG sized
// in pixels.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render DOT: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgOpenTag = regexp.MustCompile(`<svg[^>]*>`)
	viewBox    = regexp.MustCompile(`viewBox="[0-9.]+\s+[0-9.]+\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with one
// whose width and height are the viewBox size in pixels.
func normalizeViewBox(svg []byte) []byte {
	m := viewBox.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[1]), 64)
	h, _ := strconv.ParseFloat(string(m[2]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgOpenTag.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders dot to SVG and converts it with rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders dot to SVG and rasterizes it at scale with rsvg-convert.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
