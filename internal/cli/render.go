package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
// Geometry flags only override the config file when set explicitly.
type renderFlags struct {
	output   string  // output file (single format) or base path
	vizType  string  // "flame" or "nodelink"
	formats  string  // comma-separated output formats
	width    float64 // viewport width in pixels
	pxPerMS  float64 // horizontal scale
	barH     float64 // bar height in pixels
	pngScale float64 // rsvg-convert zoom for PNG
	noLabels bool    // omit flame bar labels
	detailed bool    // nodelink labels with start and duration
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command for generating trace views.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [trace.json]",
		Short: "Render a trace as a flame chart or call tree",
		Long: `Render a trace as a flame chart or call tree.

The flame view (-t flame, default) draws one row per lane with time on the
x-axis and supports svg, png, pdf, and json. The nodelink view (-t nodelink)
draws each measure as a node under the measure that encloses it and supports
svg, png, and pdf.

PNG and PDF output of the flame view requires rsvg-convert on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.renderOptions(cmd, f)
			return c.runRender(withLogger(cmd.Context(), c.Logger), args[0], f, opts)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.vizType, "type", "t", pipeline.DefaultVizType, "visualization type: flame, nodelink")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "viewport width in pixels (default: fit the trace)")
	cmd.Flags().Float64Var(&f.pxPerMS, "px-per-ms", 0, "pixels per millisecond")
	cmd.Flags().Float64Var(&f.barH, "bar-height", 0, "bar height in pixels")
	cmd.Flags().Float64Var(&f.pngScale, "png-scale", pipeline.DefaultPNGScale, "zoom factor for PNG output")
	cmd.Flags().BoolVar(&f.noLabels, "no-labels", false, "omit bar labels (flame)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show start and duration on nodes (nodelink)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

// renderOptions merges explicitly set flags over the config-seeded options.
func (c *CLI) renderOptions(cmd *cobra.Command, f renderFlags) pipeline.Options {
	opts := c.baseOptions()
	opts.VizType = f.vizType
	opts.Formats = parseFormats(f.formats)
	opts.PNGScale = f.pngScale
	opts.NoLabels = f.noLabels
	opts.Detailed = f.detailed
	opts.Refresh = f.refresh

	changed := cmd.Flags().Changed
	if changed("width") {
		opts.Width = f.width
	}
	if changed("px-per-ms") {
		opts.Scale.PxPerMS = f.pxPerMS
	}
	if changed("bar-height") {
		opts.Scale.BarHeight = f.barH
	}
	return opts
}

// runRender loads the trace, runs the pipeline, and writes one file per
// requested format.
func (c *CLI) runRender(ctx context.Context, input string, f renderFlags, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)

	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	measures, err := readTrace(input)
	if err != nil {
		return fmt.Errorf("load trace %s: %w", input, err)
	}
	logger.Debugf("Loaded %d measures from %s", len(measures), input)

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, fmt.Sprintf("Rendering %s view...", opts.VizType))
	spin.start()

	result, err := runner.Execute(ctx, measures, opts)
	if err != nil {
		spin.fail("Render failed")
		if errors.Is(err, errors.ErrCodeUnsupported) {
			printDetail("PNG and PDF output need rsvg-convert (librsvg) on PATH")
		}
		return err
	}
	spin.stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(ctx, result.Artifacts, opts.Formats, input, f.output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s view", opts.VizType)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
		stat{result.Stats.MeasureCount, "measures"},
		stat{result.Stats.LaneCount, "lanes"},
	)
	return nil
}

// writeArtifacts writes artifacts in format order and returns the paths
// written. A single format goes to output as given; several formats share
// the base path derived from output or input.
func writeArtifacts(ctx context.Context, artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	logger := loggerFromContext(ctx)

	var paths []string
	base := basePath(output, input)
	for i, format := range formats {
		if slices.Contains(formats[:i], format) {
			continue
		}
		data, ok := artifacts[format]
		if !ok {
			return paths, errors.New(errors.ErrCodeInternal, "renderer produced no %s output", format)
		}
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := writeFile(path, data); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debugf("Wrote %s: %d bytes", path, len(data))
		paths = append(paths, path)
	}
	return paths, nil
}
