package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"smokebuddy/internal/types"
)

// ServiceConfig holds the dependencies for Service.
type ServiceConfig struct {
	Repo     types.CounterRepository
	Catalog  RewardCatalog
	Location *time.Location // timezone that defines a "day"; UTC when nil
	Clock    types.Clock    // wall clock when nil
	Logger   *slog.Logger
}

// Service runs each counter operation as one load -> rollover -> mutate ->
// save cycle. There is no locking: concurrent requests race and the last
// write wins, which is acceptable for a single-user bot.
type Service struct {
	repo    types.CounterRepository
	catalog RewardCatalog
	loc     *time.Location
	clock   types.Clock
	logger  *slog.Logger

	mu        sync.Mutex
	evaluated *dayEvaluation
}

// dayEvaluation remembers the last evaluated day so a retried summary job
// re-sends the same reward instead of extending the streak again.
type dayEvaluation struct {
	date   string
	reward *types.RewardTier
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		repo:    cfg.Repo,
		catalog: cfg.Catalog,
		loc:     cfg.Location,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
	}
}

// CurrentDate returns today's date in the service timezone.
func (s *Service) CurrentDate() string {
	return types.FormatDate(s.clock.Now(), s.loc)
}

// Current returns the record after a lazy rollover. The rollover is persisted
// only when it changed something.
func (s *Service) Current(ctx context.Context) (*types.CounterRecord, error) {
	return s.mutate(ctx, "current", nil)
}

// AdjustCount applies delta to today's count and persists the result.
func (s *Service) AdjustCount(ctx context.Context, delta int) (*types.CounterRecord, error) {
	rec, err := s.mutate(ctx, "adjust", func(r types.CounterRecord) types.CounterRecord {
		return Adjust(r, delta)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "count adjusted",
		"delta", delta,
		"today", rec.Today,
		"yesterday", rec.Yesterday,
	)
	return rec, nil
}

// ResetToday zeroes today's count.
func (s *Service) ResetToday(ctx context.Context) (*types.CounterRecord, error) {
	rec, err := s.mutate(ctx, "reset", ResetToday)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "today reset", "yesterday", rec.Yesterday, "streak", rec.Streak)
	return rec, nil
}

// Rollover is the scheduled daily reset. It reports whether a rollover took
// place; after a lazy rollover earlier in the day it is a no-op.
func (s *Service) Rollover(ctx context.Context) (*types.CounterRecord, bool, error) {
	date := s.CurrentDate()
	rec, err := s.repo.Load(ctx, date)
	if err != nil {
		return nil, false, err
	}
	next := ApplyRolloverIfNeeded(*rec, date)
	if next == *rec {
		return rec, false, nil
	}
	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, false, err
	}
	s.logger.InfoContext(ctx, "daily rollover applied",
		"date", next.Date,
		"yesterday", next.Yesterday,
	)
	return &next, true, nil
}

// EvaluateDay updates the streak for the current day and returns the earned
// reward, if any. It must run before the day's rollover: after midnight the
// lazy rollover would compare an empty day against the finished one. A second
// call on the same day leaves the streak alone and returns the first result's
// reward.
func (s *Service) EvaluateDay(ctx context.Context) (*types.CounterRecord, *types.RewardTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := s.CurrentDate()
	if s.evaluated != nil && s.evaluated.date == date {
		rec, err := s.mutate(ctx, "evaluate", nil)
		if err != nil {
			return nil, nil, err
		}
		s.logger.InfoContext(ctx, "day already evaluated, streak unchanged", "date", date, "streak", rec.Streak)
		return rec, s.evaluated.reward, nil
	}

	var reward *types.RewardTier
	rec, err := s.mutate(ctx, "evaluate", func(r types.CounterRecord) types.CounterRecord {
		next, tier := EvaluateDay(r, s.catalog)
		reward = tier
		return next
	})
	if err != nil {
		return nil, nil, err
	}
	s.evaluated = &dayEvaluation{date: date, reward: reward}
	s.logger.InfoContext(ctx, "day evaluated",
		"today", rec.Today,
		"yesterday", rec.Yesterday,
		"streak", rec.Streak,
		"rewarded", reward != nil,
	)
	return rec, reward, nil
}

// mutate loads the record, applies the lazy rollover and fn, and saves when
// the record changed.
func (s *Service) mutate(ctx context.Context, op string, fn func(types.CounterRecord) types.CounterRecord) (*types.CounterRecord, error) {
	date := s.CurrentDate()
	rec, err := s.repo.Load(ctx, date)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load counter record", "op", op, "error", err)
		return nil, err
	}

	next := ApplyRolloverIfNeeded(*rec, date)
	if fn != nil {
		next = fn(next)
	}
	if next == *rec {
		return rec, nil
	}

	if err := s.repo.Save(ctx, &next); err != nil {
		s.logger.ErrorContext(ctx, "failed to save counter record", "op", op, "error", err)
		return nil, err
	}
	return &next, nil
}
