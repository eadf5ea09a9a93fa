package forecasts

import (
	"context"
	"log/slog"

	"smokebuddy/internal/types"
)

// ConditionsSource fetches current conditions for the configured location.
// *external.WeatherClient satisfies it.
type ConditionsSource interface {
	Fetch(ctx context.Context) (*types.WeatherConditions, error)
}

// Service produces report text for the bot and the scheduled push.
type Service struct {
	source   ConditionsSource
	location string
	logger   *slog.Logger
}

// NewService creates a Service. location is the display name used in the
// report header.
func NewService(source ConditionsSource, location string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, location: location, logger: logger}
}

// Report fetches conditions and returns the structured report.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	c, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{Location: s.location, Conditions: *c}, nil
}

// Describe returns the formatted report, or WeatherFailureText when the
// fetch fails. Fetch errors are logged and never returned.
func (s *Service) Describe(ctx context.Context) string {
	r, err := s.Report(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "weather fetch failed", "error", err)
		return WeatherFailureText
	}
	return FormatReport(*r)
}
