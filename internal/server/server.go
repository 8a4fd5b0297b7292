// Package server exposes a site over HTTP as JSON view models.
package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/flatsite/internal/eventstore"
	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/metrics"
	"git.home.luguber.info/inful/flatsite/internal/server/middleware"
	"git.home.luguber.info/inful/flatsite/internal/site"
)

// IndexesPrefix is the route prefix of the index listing endpoint.
const IndexesPrefix = "/_indexes"

// Options configures the HTTP host.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	HealthPath   string
	// MetricsPath is served only when Gatherer is set.
	MetricsPath string
	Gatherer    prom.Gatherer
	// History, when set, is served under /_history.
	History *eventstore.HistoryProjection
	Version string
	Logger  *slog.Logger
}

// Server hosts one site.
type Server struct {
	site    *site.Site
	opts    Options
	router  *chi.Mux
	server  *http.Server
	adapter *errors.HTTPErrorAdapter
}

// New creates a server for s.
func New(s *site.Site, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HealthPath == "" {
		opts.HealthPath = "/health"
	}
	srv := &Server{
		site:    s,
		opts:    opts,
		router:  chi.NewRouter(),
		adapter: errors.NewHTTPErrorAdapter(opts.Logger),
	}
	srv.setupRoutes()
	srv.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           srv.router,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *Server) setupRoutes() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Chain(s.opts.Logger, s.adapter))

	s.router.Get(s.opts.HealthPath, s.handleHealth)
	if s.opts.Gatherer != nil && s.opts.MetricsPath != "" {
		s.router.Method(http.MethodGet, s.opts.MetricsPath, metrics.HTTPHandler(s.opts.Gatherer))
	}
	s.router.Get(IndexesPrefix, s.handleIndexNames)
	s.router.Get(IndexesPrefix+"/{name}", s.handleIndex)
	if s.opts.History != nil {
		s.router.Get("/_history", s.handleHistory)
	}
	s.router.Get("/*", s.handlePage)
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down within
// shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.NetworkError("failed to listen").WithCause(err).WithContext("addr", s.opts.Addr).Build()
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", logfields.URL("http://"+ln.Addr().String()))
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return errors.RuntimeError("HTTP shutdown failed").WithCause(err).Build()
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
