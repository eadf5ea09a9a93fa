// Package core provides the HTTP chassis of the bot: a chi router with the
// cross-cutting middleware (panic recovery, request IDs, logging, CORS and
// metrics) applied before requests reach the webhook and status handlers.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"smokebuddy/internal/config"
)

// MetricsCollector records API telemetry. The CloudWatch implementation emits
// types.MetricAPILatency and types.MetricAPIRequestCount.
type MetricsCollector interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// RouteRegistrar mounts handler routes on a router. Handler packages provide
// registrars so core never imports them.
type RouteRegistrar func(r chi.Router)

// Server holds the router and everything the middleware chain needs.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator
	Metrics   MetricsCollector

	// HealthProbes are run concurrently by GET /health.
	HealthProbes []HealthProbe

	// RouteRegistrars mount at the root (the LINE webhook); V1RouteRegistrars
	// mount under /v1.
	RouteRegistrars   []RouteRegistrar
	V1RouteRegistrars []RouteRegistrar

	// OnShutdown hooks run in order during Shutdown (closing pools, stopping
	// the scheduler).
	OnShutdown []func(context.Context) error

	router *chi.Mux
}

// NewServer validates the mandatory dependencies and prepares an empty
// router. Callers add probes and registrars, then call MountRoutes.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// HTTPServer builds the *http.Server listening on the configured port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              ":" + s.Config.Server.Port,
		Handler:           s.router,
		ReadTimeout:       s.Config.Server.ReadTimeout,
		ReadHeaderTimeout: s.Config.Server.ReadTimeout,
		WriteTimeout:      s.Config.Server.WriteTimeout,
	}
}

// Shutdown runs every OnShutdown hook, even after a failure, and returns the
// joined errors.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	var errs []error
	for _, hook := range s.OnShutdown {
		if err := hook(ctx); err != nil {
			s.Logger.Error("shutdown hook failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %w", errors.Join(errs...))
	}
	s.Logger.Info("server shutdown complete")
	return nil
}
