// Package server exposes the adder over HTTP: single additions on an
// in-process world, the strategy list, health and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/bigadd/internal/addition"
	"github.com/agbru/bigadd/internal/config"
	apperrors "github.com/agbru/bigadd/internal/errors"
	"github.com/agbru/bigadd/internal/logging"
	"github.com/agbru/bigadd/internal/service"
)

// Server is the HTTP front end of the adder. It wraps http.Server with the
// middleware chain and graceful shutdown.
type Server struct {
	registry       *addition.Registry
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
}

// NewServer creates a server for the built-in strategies.
//
// Parameters:
//   - cfg: The application configuration (port, default process count).
//   - opts: Optional functional options (e.g., WithLogger, WithService).
//
// Returns:
//   - *Server: A pointer to the initialized Server.
func NewServer(cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		registry:       addition.NewRegistry(),
		cfg:            cfg,
		logger:         logging.NewDefaultLogger(),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		s.service = service.NewAdderService(s.registry, s.logger, s.securityConfig.MaxDigits, s.securityConfig.MaxProcesses)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	mux := http.NewServeMux()

	// Security -> RateLimit -> Logging -> Metrics -> Handler
	mux.HandleFunc("/add", s.wrapWithMiddleware(s.handleAdd))
	mux.HandleFunc("/health", s.wrapWithMiddleware(s.handleHealth))
	mux.HandleFunc("/strategies", s.wrapWithMiddleware(s.handleStrategies))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware(s.handleMetrics))

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}

	return s
}

// Handler returns the routed handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) wrapWithMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return wrapped
}

// Start listens on the configured port until SIGINT or SIGTERM, then shuts
// down gracefully.
//
// Returns:
//   - error: An error if the server fails to start or to shut down.
func (s *Server) Start() error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting server",
			logging.String("addr", s.httpServer.Addr),
			logging.Int("default_processes", s.cfg.Processes),
			logging.Int("max_digits", s.securityConfig.MaxDigits))
		s.logger.Println("Available endpoints:")
		s.logger.Println("  GET /add?a=<digits>&b=<digits>&strategy=<name>&np=<ranks>")
		s.logger.Println("  GET /add?n1=<count>&n2=<count>&seed=<seed>&strategy=<name>&np=<ranks>")
		s.logger.Println("  GET /strategies")
		s.logger.Println("  GET /health")
		s.logger.Println("  GET /metrics")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.shutdownSignal:
		s.logger.Println("Shutdown signal received, initiating graceful shutdown...")
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}
	s.rateLimiter.Stop()

	s.logger.Println("Server stopped gracefully")
	return nil
}
