package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentviz/agentviz/pkg/jobs"
	"github.com/agentviz/agentviz/pkg/observability"
	"github.com/agentviz/agentviz/pkg/storage"
	"github.com/agentviz/agentviz/pkg/transport"
)

// Server wraps an http.Server with the visualization adapter and
// manages the full lifecycle including startup and graceful shutdown.
type Server struct {
	httpServer *http.Server
	adapter    *Adapter
	config     ServerConfig
	logger     *slog.Logger

	httpMiddleware []func(http.Handler) http.Handler
}

// ServerConfig holds configuration for the transport server.
type ServerConfig struct {
	Addr            string
	UploadDir       string
	MaxBodySize     int64
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		UploadDir:       "./uploads",
		MaxBodySize:     50 << 20,
		ShutdownTimeout: 30 * time.Second,
		Logger:          slog.Default(),
	}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) ServerOption {
	return func(s *Server) { s.config.Addr = addr }
}

// WithUploadDir sets the directory for uploaded datasets.
func WithUploadDir(dir string) ServerOption {
	return func(s *Server) { s.config.UploadDir = dir }
}

// WithMaxBodySize sets the maximum request body size.
func WithMaxBodySize(n int64) ServerOption {
	return func(s *Server) { s.config.MaxBodySize = n }
}

// WithShutdownTimeout sets the graceful shutdown deadline.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.config.ShutdownTimeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.config.Logger = l; s.logger = l }
}

// WithHTTPMiddleware adds HTTP-level middleware (authentication, metrics)
// wrapped around the whole API in the given order.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(s *Server) { s.httpMiddleware = append(s.httpMiddleware, mw...) }
}

// NewServer creates a transport server for the given engine. The
// suggester, catalog, and store are optional. Default runner middleware
// (recovery, request ID, logging) is applied automatically, and the
// Prometheus registry is exposed at /metrics.
func NewServer(runner transport.Runner, suggester transport.Suggester, catalog Catalog, registry *jobs.Registry, activity *jobs.ActivityLog, store storage.JobStore, opts ...ServerOption) *Server {
	s := &Server{
		config: DefaultServerConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	adapterCfg := Config{
		UploadDir:   s.config.UploadDir,
		MaxBodySize: s.config.MaxBodySize,
	}

	defaultMW := []transport.Middleware{
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(s.logger),
	}

	s.adapter = NewAdapter(runner, suggester, catalog, registry, activity, store, adapterCfg, defaultMW...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", s.adapter.Handler())

	var handler http.Handler = mux
	handler = observability.MetricsMiddleware(handler)
	for i := len(s.httpMiddleware) - 1; i >= 0; i-- {
		handler = s.httpMiddleware[i](handler)
	}

	s.httpServer = &http.Server{
		Addr:    s.config.Addr,
		Handler: handler,
	}

	return s
}

// Adapter returns the underlying adapter, mainly so callers can preload
// a dataset before serving.
func (s *Server) Adapter() *Adapter {
	return s.adapter
}

// Handler returns the fully assembled HTTP handler. Used for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the server and blocks until a shutdown signal
// (SIGINT or SIGTERM) is received. It then gracefully shuts down,
// waiting for in-flight requests to complete within the configured timeout.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.listenAndServeWithContext(ctx)
}

func (s *Server) listenAndServeWithContext(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", slog.String("addr", s.config.Addr))
		err := s.httpServer.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	return s.shutdown()
}

// ServeOn starts the server on the given listener. Used for testing.
func (s *Server) ServeOn(ln net.Listener) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(ln)
		if err == http.ErrServerClosed {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down gracefully", slog.Duration("timeout", s.config.ShutdownTimeout))
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Shutdown gracefully shuts down the server with the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
