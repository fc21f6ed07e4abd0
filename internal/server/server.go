// Package server exposes the poster pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz            liveness probe
//	GET  /config             default poster configuration as JSON
//	GET  /poster.{format}    render a poster from query parameters
//	POST /poster.{format}    render a poster from a JSON pipeline.Options body
//
// Every response carries an X-Request-ID header. Poster responses carry
// X-Poster-Seed and a Content-Disposition attachment named
// poster-<seed>.<ext>, so the seed that reproduces a download is never lost.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/wobble/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when none is given.
	DefaultAddr = ":8080"

	// shutdownTimeout bounds graceful shutdown after the context ends.
	shutdownTimeout = 10 * time.Second

	// requestTimeout bounds one render request.
	requestTimeout = 60 * time.Second

	// maxBodyBytes bounds POST bodies.
	maxBodyBytes = 1 << 20
)

// Config holds server settings.
type Config struct {
	Addr string

	// AllowedOrigins lists CORS origins; empty allows any origin.
	AllowedOrigins []string

	// MaxDPI caps the raster resolution a request may ask for.
	MaxDPI float64
}

// Server renders posters on request.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server backed by runner. A nil logger discards output.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxDPI == 0 {
		cfg.MaxDPI = pipeline.DefaultDPI
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{cfg: cfg, runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(s.corsOptions()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/config", s.handleConfig)
	timeout := middleware.Timeout(requestTimeout)
	r.With(timeout).Get("/poster.{format}", s.handlePosterQuery)
	r.With(timeout).Post("/poster.{format}", s.handlePosterJSON)
	return r
}

func (s *Server) corsOptions() cors.Options {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", headerRequestID},
		ExposedHeaders: []string{headerRequestID, headerSeed, "Content-Disposition"},
		MaxAge:         300,
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
