// Package main is the entrypoint for the daily-jobs Lambda function.
//
// EventBridge rules invoke it with a scheduler.JobPayload naming one task:
// the end-of-day summary, the midnight rollover or the morning weather
// report. It is the serverless alternative to the in-process cron of cmd/bot;
// both run the same scheduler.DailyJobs.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	// Embedded zoneinfo for the provided.al2023 runtime.
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"smokebuddy/internal/app"
	"smokebuddy/internal/config"
	"smokebuddy/internal/scheduler"
)

// Handler holds the dependencies for the Lambda handler function.
type Handler struct {
	Jobs scheduler.JobRunner
	// WorkerID identifies this Lambda instance in logs.
	WorkerID string
	Logger   *slog.Logger
}

// Handle validates the payload's task and runs it.
func (h *Handler) Handle(ctx context.Context, payload scheduler.JobPayload) (string, error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{"task", string(payload.Task), "worker_id", h.WorkerID}
	if payload.ReferenceTime != nil {
		attrs = append(attrs, "reference_time", payload.ReferenceTime.UTC().Format(time.RFC3339))
	}
	logger.InfoContext(ctx, "daily-jobs handler invoked", attrs...)

	task, err := scheduler.ParseTaskType(string(payload.Task))
	if err != nil {
		logger.ErrorContext(ctx, "rejected job payload", "error", err)
		return "", err
	}

	// A failed run is logged, not returned: an error would make the async
	// invocation retry and re-run the non-repeatable part of the job.
	start := time.Now()
	result, err := h.Jobs.Run(ctx, task)
	if err != nil {
		logger.ErrorContext(ctx, "task execution failed",
			"task", string(task),
			"duration", time.Since(start),
			"error", err,
		)
		return "failed: " + err.Error(), nil
	}

	logger.InfoContext(ctx, "task complete",
		"task", string(task),
		"duration", time.Since(start),
		"result", result,
	)
	return result, nil
}

// parseLevel maps LOG_LEVEL onto a slog level. Unknown values fall back to
// info.
func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	logger.Info("daily-jobs Lambda initializing (cold start)")

	var provider config.SecretProvider
	if env := os.Getenv("APP_ENV"); env != "" && env != "local" {
		provider = config.NewSSMProvider(os.Getenv("AWS_REGION"), os.Getenv("AWS_ENDPOINT_URL"))
	}
	cfg, err := config.LoadConfig(provider)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	level.Set(parseLevel(cfg.LogLevel))

	comps, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build components", "error", err)
		os.Exit(1)
	}

	handler := &Handler{
		Jobs:     comps.Jobs,
		WorkerID: uuid.NewString(),
		Logger:   logger,
	}

	logger.Info("daily-jobs Lambda initialized",
		"worker_id", handler.WorkerID,
		"state_backend", cfg.State.Backend,
		"build", cfg.Build.String(),
	)

	lambda.Start(handler.Handle)
}
