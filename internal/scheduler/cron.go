package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"smokebuddy/internal/types"
)

// defaultJobTimeout bounds a single cron-triggered run.
const defaultJobTimeout = 2 * time.Minute

// Schedule binds a task to a standard five-field cron expression.
type Schedule struct {
	Task TaskType
	Spec string
}

// JobRunner executes one task. *DailyJobs satisfies it.
type JobRunner interface {
	Run(ctx context.Context, task TaskType) (string, error)
}

// CronRunner fires the daily jobs in-process. A failing or panicking job is
// logged and the next run still fires.
type CronRunner struct {
	cron    *cron.Cron
	jobs    JobRunner
	logger  *slog.Logger
	timeout time.Duration
	entries map[TaskType]cron.EntryID
}

// NewCronRunner registers schedules in loc. Schedules with an empty Spec are
// skipped.
func NewCronRunner(jobs JobRunner, loc *time.Location, schedules []Schedule, logger *slog.Logger) (*CronRunner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{logger: logger}
	r := &CronRunner{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		jobs:    jobs,
		logger:  logger,
		timeout: defaultJobTimeout,
		entries: make(map[TaskType]cron.EntryID, len(schedules)),
	}

	for _, s := range schedules {
		if s.Spec == "" {
			continue
		}
		task := s.Task
		id, err := r.cron.AddFunc(s.Spec, func() { r.runTask(task) })
		if err != nil {
			return nil, fmt.Errorf("invalid schedule %q for %s: %w", s.Spec, task, err)
		}
		r.entries[task] = id
		logger.Info("scheduled daily job", "task", string(task), "spec", s.Spec, "timezone", loc.String())
	}

	return r, nil
}

// Start begins firing jobs in a background goroutine.
func (r *CronRunner) Start() {
	r.cron.Start()
}

// Stop stops the scheduler and waits for running jobs until ctx is done.
func (r *CronRunner) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next activation time of task, or the zero time when the
// task is not scheduled or the runner has not started.
func (r *CronRunner) Next(task TaskType) time.Time {
	id, ok := r.entries[task]
	if !ok {
		return time.Time{}
	}
	return r.cron.Entry(id).Next
}

// runTask executes a single task with a timeout. Errors are logged and
// swallowed.
func (r *CronRunner) runTask(task TaskType) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	runID := uuid.NewString()
	logger := r.logger.With("task", string(task), "run_id", runID)
	ctx = types.WithRequestID(ctx, runID)
	ctx = types.WithLogger(ctx, logger)

	start := time.Now()
	result, err := r.jobs.Run(ctx, task)
	if err != nil {
		logger.ErrorContext(ctx, "daily job failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	logger.InfoContext(ctx, "daily job finished",
		"result", result,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
