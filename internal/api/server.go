package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/nerrad567/babylog/internal/auth"
	"github.com/nerrad567/babylog/internal/infrastructure/config"
	"github.com/nerrad567/babylog/internal/infrastructure/logging"
	"github.com/nerrad567/babylog/internal/logbook"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by infrastructure components reported on /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Auth    *auth.Service
	Bottles *logbook.BottleService
	Diapers *logbook.DiaperService
	// Checks are run by /health, keyed by component name. A failing
	// check marks the service degraded.
	Checks map[string]HealthChecker
	// OptionalChecks are reported by /health but never degrade it.
	OptionalChecks map[string]HealthChecker
	Version        string

	// TracerProvider records server spans. Nil uses the global provider.
	TracerProvider trace.TracerProvider
}

// Server is the babylog HTTP API server.
//
// The server is created with New and started with Start.
type Server struct {
	cfg     config.APIConfig
	logger  *logging.Logger
	auth    *auth.Service
	bottles *logbook.BottleService
	diapers *logbook.DiaperService
	checks   map[string]HealthChecker
	optional map[string]HealthChecker
	version  string

	tracerProvider trace.TracerProvider

	handler http.Handler
	server  *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Bottles == nil || deps.Diapers == nil {
		return nil, fmt.Errorf("bottle and diaper services are required")
	}

	s := &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		auth:    deps.Auth,
		bottles: deps.Bottles,
		diapers: deps.Diapers,
		checks:   deps.Checks,
		optional: deps.OptionalChecks,
		version:  deps.Version,

		tracerProvider: deps.TracerProvider,
	}
	s.handler = s.buildRouter()

	return s, nil
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listen address and serves in a background goroutine.
// A bind failure is returned directly; later serve errors are logged.
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}

	s.logger.Info("API server listening", "address", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close waits up to gracefulShutdownTimeout for in-flight requests and
// then stops the listener.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
