// Package server exposes the layout and atlas pipelines over HTTP.
//
// Routes:
//
//	GET  /healthz
//	POST /v1/layout           trace body → lanes, stored
//	GET  /v1/layouts/{id}
//	POST /v1/render           trace body → rendered artifact
//	POST /v1/pack             image sizes → atlas pages, stored
//	GET  /v1/atlases/{id}
//	GET  /metrics             with WithMetrics
//
// Errors are JSON objects {"code", "message"} with the status given by
// errors.HTTPStatus. Every request runs in an OpenTelemetry server span
// named after its route; saved layouts and atlases are announced through
// the configured events.Publisher.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/matzehuels/mondrian/pkg/events"
	"github.com/matzehuels/mondrian/pkg/pipeline"
	"github.com/matzehuels/mondrian/pkg/storage"
)

// DefaultMaxBodyBytes limits request bodies.
const DefaultMaxBodyBytes = 32 << 20

// Server is the HTTP API.
type Server struct {
	runner     *pipeline.Runner
	store      storage.Store
	publisher  events.Publisher
	gatherer   prometheus.Gatherer
	logger     *log.Logger
	defaults   pipeline.Options
	maxBody    int64
	router     chi.Router
	handler    http.Handler
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithDefaults sets the pipeline options requests start from.
func WithDefaults(opts pipeline.Options) Option { return func(s *Server) { s.defaults = opts } }

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option { return func(s *Server) { s.maxBody = n } }

// WithPublisher announces saved documents on p. The server closes p on
// shutdown.
func WithPublisher(p events.Publisher) Option { return func(s *Server) { s.publisher = p } }

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }

// New builds a server listening on addr. A nil store keeps documents in memory.
func New(addr string, runner *pipeline.Runner, store storage.Store, logger *log.Logger, opts ...Option) *Server {
	if store == nil {
		store = storage.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	srv := &Server{
		runner:  runner,
		store:     store,
		publisher: events.Nop{},
		logger:    logger.With("component", "server"),
		maxBody:   DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(srv)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(srv.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	srv.router = router
	srv.configureRoutes()
	srv.handler = otelhttp.NewHandler(router, "http.server")

	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/layouts/{id}", s.handleGetLayout)
		r.Post("/render", s.handleRender)
		r.Post("/pack", s.handlePack)
		r.Get("/atlases/{id}", s.handleGetAtlas)
	})
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn("close publisher", "error", err)
	}
	return s.store.Close(shutdownCtx)
}
