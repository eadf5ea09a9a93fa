package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"smokebuddy/internal/types"
)

// Default Open-Meteo endpoints.
const (
	openMeteoForecastURL   = "https://api.open-meteo.com/v1/forecast"
	openMeteoAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
)

// WeatherClientConfig holds the configuration for creating a WeatherClient.
type WeatherClientConfig struct {
	Latitude      float64
	Longitude     float64
	Timezone      string
	ForecastURL   string
	AirQualityURL string
	Logger        *slog.Logger
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
	} `json:"current"`
	Daily struct {
		TemperatureMax           []float64 `json:"temperature_2m_max"`
		TemperatureMin           []float64 `json:"temperature_2m_min"`
		PrecipitationProbability []int     `json:"precipitation_probability_max"`
	} `json:"daily"`
}

type airQualityResponse struct {
	Current struct {
		PM25 float64 `json:"pm2_5"`
		AQI  int     `json:"us_aqi"`
	} `json:"current"`
}

// WeatherClient fetches current conditions for one location from Open-Meteo.
type WeatherClient struct {
	base          *BaseClient
	cfg           WeatherClientConfig
	forecastURL   string
	airQualityURL string
	logger        *slog.Logger
}

// NewWeatherClient creates a WeatherClient with its own circuit breaker.
func NewWeatherClient(httpClient *http.Client, cfg WeatherClientConfig, opts ...BaseClientOption) *WeatherClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := NewBaseClient(
		httpClient,
		"open-meteo",
		types.ErrCodeUpstreamWeather,
		DefaultRetryPolicy(),
		append([]BaseClientOption{WithLogger(logger)}, opts...)...,
	)

	forecastURL := cfg.ForecastURL
	if forecastURL == "" {
		forecastURL = openMeteoForecastURL
	}
	airQualityURL := cfg.AirQualityURL
	if airQualityURL == "" {
		airQualityURL = openMeteoAirQualityURL
	}

	return &WeatherClient{
		base:          base,
		cfg:           cfg,
		forecastURL:   forecastURL,
		airQualityURL: airQualityURL,
		logger:        logger,
	}
}

// Fetch queries the forecast and air-quality endpoints concurrently and
// merges them. Any failure fails the whole fetch.
func (c *WeatherClient) Fetch(ctx context.Context) (*types.WeatherConditions, error) {
	var (
		fc forecastResponse
		aq airQualityResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(gctx, "forecast", c.forecastURL, url.Values{
			"current":       {"temperature_2m"},
			"daily":         {"temperature_2m_max,temperature_2m_min,precipitation_probability_max"},
			"forecast_days": {"1"},
		}, &fc)
	})
	g.Go(func() error {
		return c.getJSON(gctx, "air_quality", c.airQualityURL, url.Values{
			"current": {"pm2_5,us_aqi"},
		}, &aq)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(fc.Daily.TemperatureMax) == 0 || len(fc.Daily.TemperatureMin) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamBadResponse,
			"forecast response has no daily values",
			nil,
		)
	}

	out := &types.WeatherConditions{
		Temperature:    fc.Current.Temperature,
		TemperatureMax: fc.Daily.TemperatureMax[0],
		TemperatureMin: fc.Daily.TemperatureMin[0],
		PM25:           aq.Current.PM25,
		AQI:            aq.Current.AQI,
	}
	if len(fc.Daily.PrecipitationProbability) > 0 {
		out.PrecipitationProbability = fc.Daily.PrecipitationProbability[0]
	}
	return out, nil
}

func (c *WeatherClient) getJSON(ctx context.Context, operation, endpoint string, query url.Values, dst any) error {
	query.Set("latitude", strconv.FormatFloat(c.cfg.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(c.cfg.Longitude, 'f', -1, 64))
	if c.cfg.Timezone != "" {
		query.Set("timezone", c.cfg.Timezone)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create Open-Meteo request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyStr := readErrorBody(resp)
		c.logger.ErrorContext(ctx, "Open-Meteo API error",
			"operation", operation,
			"status_code", resp.StatusCode,
			"response_body", bodyStr,
		)
		return types.NewAppError(
			types.ErrCodeUpstreamWeather,
			fmt.Sprintf("Open-Meteo %s returned %d", operation, resp.StatusCode),
			nil,
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamBadResponse,
			fmt.Sprintf("failed to decode Open-Meteo %s response", operation),
			err,
		)
	}
	return nil
}
