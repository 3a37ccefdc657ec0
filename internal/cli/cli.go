// Package cli implements the mondrian command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mondrian/pkg/buildinfo"
	"github.com/matzehuels/mondrian/pkg/cache"
	"github.com/matzehuels/mondrian/pkg/config"
	"github.com/matzehuels/mondrian/pkg/observability"
	"github.com/matzehuels/mondrian/pkg/pipeline"
	"github.com/matzehuels/mondrian/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "mondrian"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     config.Config
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The config file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level pipeline, cache,
// and HTTP events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Mondrian stacks trace measures into lanes and packs images into atlases",
		Long: `Mondrian lays out performance trace measures as a flame chart, one lane per
nesting depth, and packs images onto fixed-size texture atlas pages.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/mondrian/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.packCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, keyer, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(ch, keyer, c.Logger)
	runner.TTL = c.config.Cache.TTL.Duration
	return runner, nil
}

// newCache opens the cache backend named in the config. The keyer is nil
// unless keys need a prefix.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, cache.Keyer, error) {
	cfg := c.config.Cache
	if noCache || cfg.Backend == config.BackendNone {
		return cache.NewNullCache(), nil, nil
	}

	if cfg.Backend == config.BackendRedis {
		rc := cache.DefaultRedisConfig()
		rc.Addr = cfg.RedisAddr
		rc.DB = cfg.RedisDB
		rc.Password = os.Getenv("MONDRIAN_REDIS_PASSWORD")
		return cache.NewRedisCache(ctx, rc, c.Logger), cache.NewScopedKeyer(nil, cfg.Prefix), nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil, nil
	}
	ch, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return ch, nil, nil
}

// newStore opens MongoDB when a URI is configured and falls back to memory.
func (c *CLI) newStore(ctx context.Context) (storage.Store, error) {
	cfg := c.config.Store
	if cfg.MongoURI == "" {
		return storage.NewMemoryStore(), nil
	}
	return storage.NewMongoStore(ctx, cfg.MongoURI, cfg.Database, c.Logger)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns cache.dir from the config or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/mondrian/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options seeded from the config file.
// Command flags are bound on top of the result.
func (c *CLI) baseOptions() pipeline.Options {
	cfg := c.config
	opts := pipeline.Options{
		PageWidth:  cfg.Atlas.PageWidth,
		PageHeight: cfg.Atlas.PageHeight,
		Shards:     cfg.Atlas.Shards,
		Width:      cfg.Render.Width,
		Logger:     c.Logger,
	}
	opts.Scale.PxPerMS = cfg.Render.PxPerMS
	opts.Scale.BarHeight = cfg.Render.BarHeight
	opts.Scale.BarXGutter = cfg.Render.BarXGutter
	opts.Scale.BarYGutter = cfg.Render.BarYGutter
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
