package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smokebuddy/internal/responder"
	"smokebuddy/internal/types"
)

// Counter is the subset of tracker.Service the jobs use.
type Counter interface {
	EvaluateDay(ctx context.Context) (*types.CounterRecord, *types.RewardTier, error)
	Rollover(ctx context.Context) (*types.CounterRecord, bool, error)
}

// Weather renders the report text. *forecasts.Service satisfies it.
type Weather interface {
	Describe(ctx context.Context) string
}

// JobRecorder records job outcomes. *telemetry.CloudWatchMetrics satisfies it.
type JobRecorder interface {
	RecordJob(ctx context.Context, task string, success bool, duration time.Duration)
}

// DailyJobsConfig holds the dependencies for DailyJobs.
type DailyJobsConfig struct {
	Counter Counter
	Pusher  types.Pusher
	PushTo  string  // empty disables pushes
	Weather Weather // nil disables the weather report
	Metrics JobRecorder
	Logger  *slog.Logger
}

// DailyJobs executes the scheduled tasks.
type DailyJobs struct {
	counter Counter
	pusher  types.Pusher
	pushTo  string
	weather Weather
	metrics JobRecorder
	logger  *slog.Logger
}

// NewDailyJobs creates a DailyJobs.
func NewDailyJobs(cfg DailyJobsConfig) *DailyJobs {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &DailyJobs{
		counter: cfg.Counter,
		pusher:  cfg.Pusher,
		pushTo:  cfg.PushTo,
		weather: cfg.Weather,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// Run executes task and returns a short human-readable result.
func (j *DailyJobs) Run(ctx context.Context, task TaskType) (string, error) {
	start := time.Now()

	var (
		result string
		err    error
	)
	switch task {
	case TaskSummarizeDay:
		result, err = j.summarizeDay(ctx)
	case TaskResetDaily:
		result, err = j.resetDaily(ctx)
	case TaskWeatherReport:
		result, err = j.weatherReport(ctx)
	default:
		_, err = ParseTaskType(string(task))
	}

	if j.metrics != nil {
		j.metrics.RecordJob(ctx, string(task), err == nil, time.Since(start))
	}
	if err != nil {
		return "", fmt.Errorf("task %s failed: %w", task, err)
	}
	return result, nil
}

// summarizeDay evaluates the streak and pushes the summary, followed by the
// reward image and text when one was earned.
func (j *DailyJobs) summarizeDay(ctx context.Context) (string, error) {
	rec, reward, err := j.counter.EvaluateDay(ctx)
	if err != nil {
		return "", err
	}

	messages := []types.Message{types.TextMessage(responder.DaySummaryText(*rec))}
	if reward != nil {
		messages = append(messages,
			types.ImageMessage(reward.Image),
			types.TextMessage(reward.Text),
		)
	}
	if err := j.push(ctx, TaskSummarizeDay, messages...); err != nil {
		return "", err
	}
	return fmt.Sprintf("day %s summarized: streak %d, rewarded %t", rec.Date, rec.Streak, reward != nil), nil
}

func (j *DailyJobs) resetDaily(ctx context.Context) (string, error) {
	rec, rolled, err := j.counter.Rollover(ctx)
	if err != nil {
		return "", err
	}
	if !rolled {
		return fmt.Sprintf("day %s already current", rec.Date), nil
	}
	return fmt.Sprintf("rolled over to %s", rec.Date), nil
}

func (j *DailyJobs) weatherReport(ctx context.Context) (string, error) {
	if j.weather == nil {
		j.logger.InfoContext(ctx, "weather report disabled, skipping")
		return "weather disabled", nil
	}
	if err := j.push(ctx, TaskWeatherReport, types.TextMessage(j.weather.Describe(ctx))); err != nil {
		return "", err
	}
	return "weather report sent", nil
}

func (j *DailyJobs) push(ctx context.Context, task TaskType, messages ...types.Message) error {
	if j.pusher == nil || j.pushTo == "" {
		j.logger.InfoContext(ctx, "no push destination configured, skipping push", "task", string(task))
		return nil
	}
	return j.pusher.Push(ctx, j.pushTo, messages...)
}
