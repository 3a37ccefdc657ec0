package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mondrian/pkg/pipeline"
	"github.com/matzehuels/mondrian/pkg/trace"
)

// layoutCommand creates the layout command for stacking a trace into lanes.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		preview bool
	)

	cmd := &cobra.Command{
		Use:   "layout [trace.json]",
		Short: "Assign every measure of a trace to a lane",
		Long: `Assign every measure of a trace to a lane.

The input is either a JSON array of measures ({"name", "startTime", "duration"},
times in milliseconds) or a Chrome trace with "X" or "B"/"E" events. Use "-"
to read from stdin.

The output is a JSON array of {"lane", "measure"} entries in input order.
Measures nested inside another measure land one lane below it.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			opts.Refresh = refresh
			return c.runLayout(withLogger(cmd.Context(), c.Logger), args[0], output, opts, noCache, preview)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&preview, "preview", true, "print a per-lane summary")

	return cmd
}

// runLayout reads the trace, stacks it, and writes the lanes.
func (c *CLI) runLayout(ctx context.Context, input, output string, opts pipeline.Options, noCache, preview bool) error {
	logger := loggerFromContext(ctx)

	measures, err := readTrace(input)
	if err != nil {
		return fmt.Errorf("load trace %s: %w", input, err)
	}
	logger.Debugf("Loaded %d measures from %s", len(measures), input)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	spin := newSpinner(ctx, fmt.Sprintf("Stacking %d measures...", len(measures)))
	spin.start()

	rs, cacheHit, err := runner.LayoutWithCacheInfo(ctx, measures, opts)
	if err != nil {
		spin.fail("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spin.stop()
	prog.done(fmt.Sprintf("Stacked %d measures", len(rs)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := writeJSONFile(outputPath, rs); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	lanes := trace.LaneCount(rs)
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(cacheHit, stat{len(rs), "measures"}, stat{lanes, "lanes"})
	if preview && len(rs) > 0 {
		fmt.Println(laneTable(rs))
	}
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}
