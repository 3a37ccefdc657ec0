package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mondrian/internal/server"
	"github.com/matzehuels/mondrian/pkg/buildinfo"
	"github.com/matzehuels/mondrian/pkg/events"
	"github.com/matzehuels/mondrian/pkg/observability"
)

// envNATSToken holds the NATS auth token; it is never read from the config file.
const envNATSToken = "MONDRIAN_NATS_TOKEN"

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		maxBody int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Layouts and atlases are stored in MongoDB when store.mongo_uri is set in the
config file, and in memory otherwise. Saved documents are announced on NATS
when events.nats_url is set. Prometheus metrics are served on /metrics unless
telemetry.metrics is false, and traces are exported over OTLP when
telemetry.otlp_endpoint is set. The server shuts down gracefully on SIGINT
or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache, maxBody)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body in bytes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool, maxBody int64) error {
	tel := c.config.Telemetry
	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    appName,
		ServiceVersion: buildinfo.Version,
		OTLPEndpoint:   tel.OTLPEndpoint,
		SampleRate:     tel.SampleRate,
	}, c.Logger)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			c.Logger.Warn("shutdown tracing", "error", err)
		}
	}()

	opts := []server.Option{
		server.WithDefaults(c.baseOptions()),
		server.WithMaxBodyBytes(maxBody),
	}
	if tel.Metrics {
		reg, err := c.installMetrics()
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, server.WithMetrics(reg))
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	pub, err := c.newPublisher()
	if err != nil {
		return fmt.Errorf("connect event bus: %w", err)
	}
	opts = append(opts, server.WithPublisher(pub))

	store, err := c.newStore(ctx)
	if err != nil {
		_ = pub.Close()
		return fmt.Errorf("open store: %w", err)
	}

	srv := server.New(addr, runner, store, c.Logger, opts...)

	printInfo("Serving on %s", StyleLink.Render(addr))
	printKeyValue("cache", c.cacheBackend(noCache))
	printKeyValue("store", c.storeBackend())
	printKeyValue("events", c.eventsBackend())
	printKeyValue("tracing", c.tracingBackend())

	err = srv.ListenAndServe(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// installMetrics registers process and pipeline collectors on a fresh
// registry and installs the metrics hooks. Log hooks stay active at debug
// level.
func (c *CLI) installMetrics() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := observability.NewMetricsHooks(reg)
	if err != nil {
		return nil, err
	}
	if c.Logger.GetLevel() <= log.DebugLevel {
		observability.InstallHooks(observability.Tee(m, observability.NewLogHooks(c.Logger)))
	} else {
		m.Install()
	}
	return reg, nil
}

// newPublisher connects to NATS when events.nats_url is set.
func (c *CLI) newPublisher() (events.Publisher, error) {
	cfg := c.config.Events
	if cfg.NATSURL == "" {
		return events.Nop{}, nil
	}
	nc := events.DefaultNATSConfig()
	nc.URL = cfg.NATSURL
	nc.SubjectPrefix = cfg.SubjectPrefix
	nc.Token = os.Getenv(envNATSToken)
	return events.NewNATSPublisher(nc, c.Logger)
}

func (c *CLI) cacheBackend(noCache bool) string {
	if noCache {
		return "none"
	}
	return c.config.Cache.Backend
}

func (c *CLI) storeBackend() string {
	if c.config.Store.MongoURI != "" {
		return "mongodb/" + c.config.Store.Database
	}
	return "memory"
}

func (c *CLI) eventsBackend() string {
	if c.config.Events.NATSURL != "" {
		return "nats " + c.config.Events.NATSURL
	}
	return "off"
}

func (c *CLI) tracingBackend() string {
	if c.config.Telemetry.OTLPEndpoint != "" {
		return "otlp " + c.config.Telemetry.OTLPEndpoint
	}
	return "off"
}
