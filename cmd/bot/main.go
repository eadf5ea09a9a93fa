// Package main is the entry point for the SmokeBuddy bot server.
//
// It loads the configuration, wires the counter, the LINE client and the
// optional weather and metrics integrations, mounts the LINE webhook and the
// read-only /v1 API on the core chassis, starts the in-process daily-job
// scheduler and serves HTTP until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	// Embedded zoneinfo so TIMEZONE resolves in minimal containers.
	_ "time/tzdata"

	"smokebuddy/internal/api/handlers"
	"smokebuddy/internal/app"
	"smokebuddy/internal/config"
	"smokebuddy/internal/core"
	"smokebuddy/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig(secretProvider())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("smokebuddy bot starting",
		"environment", cfg.Environment,
		"build", cfg.Build.String(),
		"port", cfg.Server.Port,
		"state_backend", cfg.State.Backend,
		"timezone", cfg.Timezone,
	)

	ctx := context.Background()
	comps, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("building components: %w", err)
	}
	defer comps.Close()

	srv, cron, err := buildServer(cfg, comps, logger)
	if err != nil {
		return err
	}

	cron.Start()
	for _, s := range app.Schedules(cfg) {
		logger.Info("daily job scheduled", "task", s.Task, "spec", s.Spec, "next", cron.Next(s.Task))
	}

	return runHTTPServer(srv, cfg, logger)
}

// secretProvider returns the SSM provider for deployed environments and nil
// for local runs, where *_SSM_PARAM resolution is skipped.
func secretProvider() config.SecretProvider {
	env := os.Getenv("APP_ENV")
	if env == "" || env == "local" {
		return nil
	}
	return config.NewSSMProvider(os.Getenv("AWS_REGION"), os.Getenv("AWS_ENDPOINT_URL"))
}

// buildServer mounts every route on a new core.Server and prepares the cron
// runner. The runner is registered as a shutdown hook but not started.
func buildServer(cfg *config.Config, comps *app.Components, logger *slog.Logger) (*core.Server, *scheduler.CronRunner, error) {
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = comps.MetricsCollector()
	srv.HealthProbes = append(srv.HealthProbes, comps.Store)

	webhook := handlers.NewWebhookHandler(comps.NewDispatcher(logger), comps.Line, srv.Validator, logger)
	srv.RouteRegistrars = append(srv.RouteRegistrars, webhook.RegisterRoutes)

	counter := handlers.NewCounterHandler(comps.Tracker, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, counter.RegisterRoutes)

	cron, err := scheduler.NewCronRunner(comps.Jobs, cfg.Location(), app.Schedules(cfg), logger.With("component", "cron"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating scheduler: %w", err)
	}
	srv.OnShutdown = append(srv.OnShutdown, cron.Stop)

	srv.MountRoutes()
	return srv, cron, nil
}

// runHTTPServer serves until a shutdown signal or a listener error, then
// drains in-flight requests and runs the server's shutdown hooks.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	httpServer := srv.HTTPServer()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown", "timeout", cfg.Server.ShutdownTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a JSON slog.Logger for the given level. Unknown levels
// fall back to info.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
