// Package app assembles the bot's components from a loaded Config. Both the
// long-running bot and the daily-jobs Lambda build on it so the two
// entrypoints wire storage, LINE, weather and metrics identically.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	"smokebuddy/internal/bot"
	"smokebuddy/internal/config"
	"smokebuddy/internal/core"
	"smokebuddy/internal/external"
	"smokebuddy/internal/forecasts"
	"smokebuddy/internal/responder"
	"smokebuddy/internal/scheduler"
	"smokebuddy/internal/store"
	"smokebuddy/internal/telemetry"
	"smokebuddy/internal/tracker"
	"smokebuddy/internal/types"
)

// StateStore is a counter repository that can report its own health.
type StateStore interface {
	types.CounterRepository
	core.HealthProbe
}

// Components is the wired object graph.
type Components struct {
	Store   StateStore
	Tracker *tracker.Service
	Line    *external.LineClient
	// Weather is nil when WEATHER_ENABLED is false.
	Weather *forecasts.Service
	// Metrics is nil when METRICS_ENABLED is false.
	Metrics *telemetry.CloudWatchMetrics
	Jobs    *scheduler.DailyJobs

	closers []func()
}

// Build wires every component from cfg. Close must be called on the result.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	c := &Components{}

	needAWS := cfg.State.Backend == config.BackendS3 || cfg.Observability.MetricsEnabled
	var awsCfg aws.Config
	if needAWS {
		var err error
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
	}

	st, err := c.buildStore(ctx, cfg, awsCfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = st

	catalog, err := tracker.LoadRewardCatalog(cfg.Rewards.CatalogPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("loading reward catalog: %w", err)
	}

	c.Tracker = tracker.NewService(tracker.ServiceConfig{
		Repo:     st,
		Catalog:  catalog,
		Location: cfg.Location(),
		Logger:   logger.With("component", "tracker"),
	})

	c.Line = external.NewLineClient(
		&http.Client{Timeout: cfg.Line.HTTPTimeout},
		external.LineClientConfig{
			ChannelAccessToken: cfg.Line.ChannelAccessToken,
			BaseURL:            cfg.Line.APIBaseURL,
			Logger:             logger.With("component", "line"),
		},
	)

	if cfg.Weather.Enabled {
		client := external.NewWeatherClient(
			&http.Client{Timeout: cfg.Weather.HTTPTimeout},
			external.WeatherClientConfig{
				Latitude:      cfg.Weather.Latitude,
				Longitude:     cfg.Weather.Longitude,
				Timezone:      cfg.Timezone,
				ForecastURL:   cfg.Weather.ForecastURL,
				AirQualityURL: cfg.Weather.AirQualityURL,
				Logger:        logger.With("component", "weather"),
			},
		)
		c.Weather = forecasts.NewService(client, cfg.Weather.LocationName, logger.With("component", "forecasts"))
	}

	if cfg.Observability.MetricsEnabled {
		cw := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		c.Metrics = telemetry.NewCloudWatchMetrics(cw, cfg.Observability.MetricNamespace, logger.With("component", "metrics"))
	}

	jobsCfg := scheduler.DailyJobsConfig{
		Counter: c.Tracker,
		Pusher:  c.Line,
		PushTo:  cfg.Line.PushTo,
		Logger:  logger.With("component", "scheduler"),
	}
	// Typed nils must not leak into the interfaces.
	if c.Weather != nil {
		jobsCfg.Weather = c.Weather
	}
	if c.Metrics != nil {
		jobsCfg.Metrics = c.Metrics
	}
	c.Jobs = scheduler.NewDailyJobs(jobsCfg)

	return c, nil
}

func (c *Components) buildStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config, logger *slog.Logger) (StateStore, error) {
	switch cfg.State.Backend {
	case config.BackendS3:
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
				o.UsePathStyle = true
			}
		})
		logger.Info("using S3 state store", "bucket", cfg.State.S3Bucket, "key", cfg.State.S3Key)
		return store.NewS3Store(client, cfg.State.S3Bucket, cfg.State.S3Key), nil

	case config.BackendPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.State.DatabaseURL.Unmask())
		if err != nil {
			return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
		}
		poolCfg.MaxConns = cfg.State.MaxConns
		poolCfg.ConnConfig.ConnectTimeout = cfg.State.ConnTimeout

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("creating database pool: %w", err)
		}
		c.closers = append(c.closers, pool.Close)

		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensuring schema: %w", err)
		}
		logger.Info("using Postgres state store", "max_conns", poolCfg.MaxConns)
		return pg, nil

	default:
		fileStore := store.NewFileStore(cfg.State.FilePath)
		if err := fileStore.EnsureDir(); err != nil {
			return nil, fmt.Errorf("preparing state directory: %w", err)
		}
		logger.Info("using file state store", "path", cfg.State.FilePath)
		return fileStore, nil
	}
}

// NewDispatcher builds the message dispatcher over the wired components.
func (c *Components) NewDispatcher(logger *slog.Logger) *bot.Dispatcher {
	cfg := bot.Config{
		Counter:  c.Tracker,
		Composer: responder.NewComposer(nil),
		Logger:   logger.With("component", "dispatcher"),
	}
	if c.Weather != nil {
		cfg.Weather = c.Weather
	}
	if c.Metrics != nil {
		cfg.Metrics = c.Metrics
	}
	return bot.NewDispatcher(cfg)
}

// MetricsCollector returns the request metrics sink, or nil when metrics are
// disabled.
func (c *Components) MetricsCollector() core.MetricsCollector {
	if c.Metrics == nil {
		return nil
	}
	return c.Metrics
}

// Schedules returns the cron schedules from cfg. The weather report is only
// scheduled when weather is enabled.
func Schedules(cfg *config.Config) []scheduler.Schedule {
	schedules := []scheduler.Schedule{
		{Task: scheduler.TaskSummarizeDay, Spec: cfg.Schedule.SummaryCron},
		{Task: scheduler.TaskResetDaily, Spec: cfg.Schedule.ResetCron},
	}
	if cfg.Weather.Enabled {
		schedules = append(schedules, scheduler.Schedule{Task: scheduler.TaskWeatherReport, Spec: cfg.Schedule.WeatherCron})
	}
	return schedules
}

// Close releases pooled resources. It is safe to call more than once.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
