package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smokebuddy/internal/config"
	"smokebuddy/internal/scheduler"
	"smokebuddy/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "local",
		Timezone:    "Asia/Taipei",
		State: config.StateConfig{
			Backend:  config.BackendFile,
			FilePath: filepath.Join(t.TempDir(), "counter.json"),
		},
		Line: config.LineConfig{
			ChannelAccessToken: "token",
			APIBaseURL:         "http://127.0.0.1:1",
			HTTPTimeout:        time.Second,
		},
		Schedule: config.ScheduleConfig{
			SummaryCron: "55 23 * * *",
			ResetCron:   "0 0 * * *",
			WeatherCron: "30 7 * * *",
		},
		Weather: config.WeatherConfig{
			LocationName:  "台北",
			ForecastURL:   "http://127.0.0.1:1/forecast",
			AirQualityURL: "http://127.0.0.1:1/air",
			HTTPTimeout:   time.Second,
		},
	}
}

func TestBuild_FileBackend(t *testing.T) {
	cfg := fileConfig(t)

	c, err := Build(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	fs, ok := c.Store.(*store.FileStore)
	require.True(t, ok, "expected a file store, got %T", c.Store)
	assert.Equal(t, cfg.State.FilePath, fs.Path())
	assert.Equal(t, "state_file", c.Store.Name())

	assert.NotNil(t, c.Tracker)
	assert.NotNil(t, c.Line)
	assert.NotNil(t, c.Jobs)
	assert.Nil(t, c.Weather)
	assert.Nil(t, c.Metrics)
	assert.Nil(t, c.MetricsCollector())
	assert.NotNil(t, c.NewDispatcher(testLogger()))

	rec, err := c.Tracker.AdjustCount(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Today)
}

func TestBuild_FileBackendCreatesStateDir(t *testing.T) {
	cfg := fileConfig(t)
	cfg.State.FilePath = filepath.Join(t.TempDir(), "data", "counter.json")

	c, err := Build(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.NoError(t, c.Store.Check(context.Background()))
	assert.DirExists(t, filepath.Dir(cfg.State.FilePath))
}

func TestBuild_WeatherEnabled(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Weather.Enabled = true

	c, err := Build(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.NotNil(t, c.Weather)
}

func TestBuild_BadRewardCatalog(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Rewards.CatalogPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := Build(context.Background(), cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reward catalog")
}

func TestBuild_PostgresBadURL(t *testing.T) {
	cfg := fileConfig(t)
	cfg.State.Backend = config.BackendPostgres
	cfg.State.DatabaseURL = "postgres://%zz"

	_, err := Build(context.Background(), cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestSchedules(t *testing.T) {
	cfg := fileConfig(t)

	got := Schedules(cfg)
	require.Len(t, got, 2)
	assert.Equal(t, scheduler.TaskSummarizeDay, got[0].Task)
	assert.Equal(t, "55 23 * * *", got[0].Spec)
	assert.Equal(t, scheduler.TaskResetDaily, got[1].Task)

	cfg.Weather.Enabled = true
	got = Schedules(cfg)
	require.Len(t, got, 3)
	assert.Equal(t, scheduler.TaskWeatherReport, got[2].Task)
	assert.Equal(t, "30 7 * * *", got[2].Spec)
}

func TestClose_Idempotent(t *testing.T) {
	calls := 0
	c := &Components{closers: []func(){func() { calls++ }}}
	c.Close()
	c.Close()
	assert.Equal(t, 1, calls)
}
