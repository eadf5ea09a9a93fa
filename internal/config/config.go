// Package config defines the configuration of the smokebuddy binaries.
// Configuration is loaded once at process start and is immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Any missing required value or invalid format aborts startup.
package config

import (
	"time"

	"smokebuddy/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// State backends accepted by STATE_BACKEND.
const (
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// Config is the top-level configuration struct. Sub-components receive only
// the subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	// Timezone defines where a counting day starts and ends.
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Taipei" validate:"required,timezone"`

	// Domain Configurations
	Server        ServerConfig
	State         StateConfig
	Line          LineConfig
	Rewards       RewardConfig
	Schedule      ScheduleConfig
	Weather       WeatherConfig
	AWS           AWSConfig
	Observability ObservabilityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// Location resolves Timezone. Validation guarantees it loads; UTC is returned
// only for configs that bypassed LoadConfig.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8080"`
	ReadTimeout        time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout       time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout    time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// StateConfig selects and configures the counter store.
type StateConfig struct {
	Backend  string `envconfig:"STATE_BACKEND" default:"file" validate:"oneof=file s3 postgres"`
	FilePath string `envconfig:"STATE_FILE_PATH" default:"data/counter.json" validate:"required_if=Backend file"`
	S3Bucket string `envconfig:"STATE_S3_BUCKET" validate:"required_if=Backend s3"`
	S3Key    string `envconfig:"STATE_S3_KEY" default:"smokebuddy/counter.json" validate:"required_if=Backend s3"`
	// DatabaseURL is resolved from SSM or Env.
	DatabaseURL SecretString  `envconfig:"DATABASE_URL" validate:"required_if=Backend postgres"`
	MaxConns    int32         `envconfig:"DB_MAX_CONNS" default:"4"`
	ConnTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
}

// LineConfig holds the LINE Messaging API credentials.
type LineConfig struct {
	ChannelAccessToken SecretString `envconfig:"LINE_CHANNEL_ACCESS_TOKEN" validate:"required"`
	APIBaseURL         string       `envconfig:"LINE_API_BASE_URL" default:"https://api.line.me" validate:"required,url"`
	// PushTo is the user, group or room that receives scheduled pushes.
	// Empty disables scheduled pushes.
	PushTo      string        `envconfig:"LINE_PUSH_TO"`
	HTTPTimeout time.Duration `envconfig:"LINE_HTTP_TIMEOUT" default:"10s"`
}

// RewardConfig locates the streak reward catalog.
type RewardConfig struct {
	// CatalogPath points to a JSON catalog; empty uses the built-in one.
	CatalogPath string `envconfig:"REWARD_CATALOG_PATH" validate:"omitempty,file"`
}

// ScheduleConfig holds the cron expressions of the daily jobs, evaluated in
// Config.Timezone. An empty expression disables the job.
type ScheduleConfig struct {
	SummaryCron string `envconfig:"SCHEDULE_SUMMARY" default:"55 23 * * *" validate:"omitempty,cron"`
	ResetCron   string `envconfig:"SCHEDULE_RESET" default:"0 0 * * *" validate:"omitempty,cron"`
	WeatherCron string `envconfig:"SCHEDULE_WEATHER" default:"30 7 * * *" validate:"omitempty,cron"`
}

// WeatherConfig configures the optional Open-Meteo report.
type WeatherConfig struct {
	Enabled       bool          `envconfig:"WEATHER_ENABLED" default:"false"`
	Latitude      float64       `envconfig:"WEATHER_LATITUDE" default:"25.0375" validate:"min=-90,max=90"`
	Longitude     float64       `envconfig:"WEATHER_LONGITUDE" default:"121.5637" validate:"min=-180,max=180"`
	LocationName  string        `envconfig:"WEATHER_LOCATION_NAME" default:"台北"`
	ForecastURL   string        `envconfig:"WEATHER_FORECAST_URL" default:"https://api.open-meteo.com/v1/forecast" validate:"url"`
	AirQualityURL string        `envconfig:"WEATHER_AIR_QUALITY_URL" default:"https://air-quality-api.open-meteo.com/v1/air-quality" validate:"url"`
	HTTPTimeout   time.Duration `envconfig:"WEATHER_HTTP_TIMEOUT" default:"10s"`
}

// AWSConfig holds regional configuration shared by the SDK clients.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"ap-northeast-1"`
	// LocalStack/MinIO Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricsEnabled  bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"SmokeBuddy"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
