// Package server exposes a Generator over HTTP.
//
// Routes:
//
//	POST /pdf-generator/generate/{template}          JSON payload in, PDF attachment out
//	GET  /pdf-generator/preview/{template}           template source as text/plain
//	GET  /pdf-generator/templates                    registered template names
//	GET  /pdf-generator/templates/{template}/schema  OpenAPI schema of the payload
//	GET  /healthz                                    engine state
//	GET  /metrics                                    Prometheus exposition, when configured
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	tmpl2pdf "github.com/alnah/go-tmpl2pdf"
	"github.com/alnah/go-tmpl2pdf/internal/logging"
)

// Generator is the part of *tmpl2pdf.Generator the server uses.
type Generator interface {
	Generate(ctx context.Context, name string, raw []byte) ([]byte, error)
	Templates() []string
	TemplateSource(name string) (string, error)
	Schema(name string) (*openapi3.Schema, error)
	EngineState() tmpl2pdf.State
}

var _ Generator = (*tmpl2pdf.Generator)(nil)

// Defaults.
const (
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 15 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

// DownloadFilename is the attachment name of generated documents.
const DownloadFilename = "lebenslauf_generated.pdf"

// Server routes HTTP requests to a Generator.
type Server struct {
	gen             Generator
	log             *slog.Logger
	metrics         http.Handler
	maxBodyBytes    int64
	shutdownTimeout time.Duration
	router          chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the access and error logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxBodyBytes bounds request payloads.
// Panics if n <= 0.
func WithMaxBodyBytes(n int64) Option {
	if n <= 0 {
		panic("server: WithMaxBodyBytes must be positive")
	}
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// WithShutdownTimeout bounds graceful shutdown in Serve.
// Panics if d <= 0.
func WithShutdownTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("server: WithShutdownTimeout must be positive")
	}
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// New creates a Server for gen.
func New(gen Generator, opts ...Option) *Server {
	s := &Server{
		gen:             gen,
		log:             logging.NewNop(),
		maxBodyBytes:    DefaultMaxBodyBytes,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Route("/pdf-generator", func(r chi.Router) {
		r.Post("/generate/", s.handleGenerate)
		r.Post("/generate/{template}", s.handleGenerate)
		r.Get("/preview/", s.handlePreview)
		r.Get("/preview/{template}", s.handlePreview)
		r.Get("/templates", s.handleTemplates)
		r.Get("/templates/{template}/schema", s.handleSchema)
	})
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
