package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// healthCheckTimeout bounds the checks behind /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.routeSpanMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	// Public routes
	r.Get("/health", s.handleHealth)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/users", s.handleRegister)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/users/{id}", s.handleGetUser)

		r.Route("/bottles", newLogHandlers(s, "bottles", s.bottles).routes)
		r.Route("/diapers", newLogHandlers(s, "diapers", s.diapers).routes)
	})

	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method
		}),
	}
	if s.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(s.tracerProvider))
	}
	return otelhttp.NewHandler(r, "babylog.http", opts...)
}

// routeSpanMiddleware renames the server span to the matched route pattern,
// e.g. "GET /bottles/{id}", once chi has routed the request. Unmatched
// requests keep the per-method name.
func (s *Server) routeSpanMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if pattern := chi.RouteContext(r.Context()).RoutePattern(); pattern != "" {
			trace.SpanFromContext(r.Context()).SetName(r.Method + " " + pattern)
		}
	})
}

// handleHealth reports the version and the state of each registered
// component. Only required components can make the service degraded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	checks := make(map[string]string, len(s.checks)+len(s.optional))
	for name, c := range s.checks {
		if !s.runCheck(ctx, name, c, checks) {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	for name, c := range s.optional {
		s.runCheck(ctx, name, c, checks)
	}

	body := map[string]any{
		"status":  status,
		"version": s.version,
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	writeJSON(w, code, body)
}

// runCheck runs one health check and records its outcome in results.
func (s *Server) runCheck(ctx context.Context, name string, c HealthChecker, results map[string]string) bool {
	if err := c.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", "component", name, "error", err)
		results[name] = "unavailable"
		return false
	}
	results[name] = "ok"
	return true
}
