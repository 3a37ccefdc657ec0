package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mondrian/pkg/atlas"
	"github.com/matzehuels/mondrian/pkg/errors"
	"github.com/matzehuels/mondrian/pkg/pipeline"
)

// manifestName is the file the pack command writes page placements to.
const manifestName = "manifest.json"

// packCommand creates the pack command for building texture atlases.
func (c *CLI) packCommand() *cobra.Command {
	var (
		output     string
		pageWidth  int
		pageHeight int
		shards     int
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "pack [images-dir | sizes.json]",
		Short: "Pack images into fixed-size atlas pages",
		Long: `Pack images into fixed-size atlas pages.

Given a directory, every png, jpeg, bmp, tiff, or webp file directly inside it
is packed and each page is written as atlas-<n>.png next to a manifest.json
listing every placement. Image ids are file names without extension.

Given a JSON file of [{"id", "width", "height"}], only the manifest is written.

Images are placed on shelves in input order. An image larger than a page is
an error. With --shards > 1 the input is split into contiguous runs packed
in parallel; each run starts on a fresh page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			opts.Refresh = refresh
			changed := cmd.Flags().Changed
			if changed("page-width") {
				opts.PageWidth = pageWidth
			}
			if changed("page-height") {
				opts.PageHeight = pageHeight
			}
			if changed("shards") {
				opts.Shards = shards
			}
			return c.runPack(withLogger(cmd.Context(), c.Logger), args[0], output, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "atlas", "output directory")
	cmd.Flags().IntVar(&pageWidth, "page-width", pipeline.DefaultPageSize, "page width in pixels")
	cmd.Flags().IntVar(&pageHeight, "page-height", pipeline.DefaultPageSize, "page height in pixels")
	cmd.Flags().IntVar(&shards, "shards", 0, "number of contiguous runs packed in parallel (0: one per CPU)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "repack even if cached")

	return cmd
}

// runPack loads the sources, packs them, and writes pages and manifest.
func (c *CLI) runPack(ctx context.Context, input, outDir string, opts pipeline.Options, noCache bool) error {
	logger := loggerFromContext(ctx)

	if err := opts.ValidateForPack(); err != nil {
		return err
	}

	info, err := os.Stat(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "stat %s", input)
	}
	withPixels := info.IsDir()

	var sources []atlas.Source
	if withPixels {
		sources, err = atlas.LoadSources(input)
	} else {
		sources, err = readSizes(input)
	}
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %d images from %s", len(sources), input)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, fmt.Sprintf("Packing %d images...", len(sources)))
	spin.start()

	var (
		pages    []atlas.Page
		textures []atlas.Texture
		cached   bool
	)
	if withPixels {
		var result *pipeline.AtlasResult
		result, err = runner.BuildAtlas(ctx, sources, opts)
		if result != nil {
			pages, textures, cached = result.Pages, result.Textures, result.CacheInfo.PackHit
		}
	} else {
		pages, cached, err = runner.PackWithCacheInfo(ctx, sources, opts)
	}
	if err != nil {
		spin.fail("Pack failed")
		if errors.Is(err, errors.ErrCodeOversizedInput) {
			printDetail("Raise --page-width/--page-height to at least the largest image")
		}
		return err
	}
	spin.stop()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}

	var paths []string
	for _, t := range textures {
		path := filepath.Join(outDir, fmt.Sprintf("atlas-%d.png", t.Index))
		if err := atlas.ExportPNG(t, path); err != nil {
			return err
		}
		paths = append(paths, path)
	}

	manifestPath := filepath.Join(outDir, manifestName)
	manifest := atlas.Manifest{PageWidth: opts.PageWidth, PageHeight: opts.PageHeight, Pages: pages}
	if err := writeJSONFile(manifestPath, manifest); err != nil {
		return fmt.Errorf("write %s: %w", manifestPath, err)
	}
	paths = append(paths, manifestPath)

	printSuccess("Packed %d images", len(sources))
	for _, p := range paths {
		printFile(p)
	}
	printStats(cached, stat{len(sources), "images"}, stat{len(pages), "pages"})
	if len(pages) > 0 {
		fmt.Println(pageTable(pages))
	}
	return nil
}

// readSizes reads a JSON array of {"id", "width", "height"} objects.
func readSizes(path string) ([]atlas.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	var sources []atlas.Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	for _, s := range sources {
		if err := errors.ValidateLabelID(s.ID); err != nil {
			return nil, err
		}
	}
	return sources, nil
}
